package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrWeightsSumInvalid = errors.New("quality weights must sum to 1.0")
	ErrWeightNegative    = errors.New("quality weights must not be negative")
	ErrWeightOutOfRange  = errors.New("quality weight must be within [0, 1]")
)

// weightSumTolerance 浮点求和容差
const weightSumTolerance = 0.001

// DefaultComplianceMinimum 默认合规最低总分
const DefaultComplianceMinimum = 70.0

// QualityWeights 六个维度的评分权重，总和必须为 1.0
type QualityWeights struct {
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Consistency  float64 `json:"consistency"`
	Timeliness   float64 `json:"timeliness"`
	Uniqueness   float64 `json:"uniqueness"`
	Validity     float64 `json:"validity"`
}

// NewQualityWeights 构造并校验权重
func NewQualityWeights(completeness, accuracy, consistency, timeliness, uniqueness, validity float64) (QualityWeights, error) {
	w := QualityWeights{
		Completeness: completeness,
		Accuracy:     accuracy,
		Consistency:  consistency,
		Timeliness:   timeliness,
		Uniqueness:   uniqueness,
		Validity:     validity,
	}
	if err := w.Validate(); err != nil {
		return QualityWeights{}, err
	}
	return w, nil
}

// DefaultWeights 监管评估默认权重
func DefaultWeights() QualityWeights {
	return QualityWeights{
		Completeness: 0.25,
		Accuracy:     0.25,
		Consistency:  0.20,
		Timeliness:   0.15,
		Uniqueness:   0.10,
		Validity:     0.05,
	}
}

// EqualWeights 六个维度等权
func EqualWeights() QualityWeights {
	eq := 1.0 / 6.0
	return QualityWeights{
		Completeness: eq,
		Accuracy:     eq,
		Consistency:  eq,
		Timeliness:   eq,
		Uniqueness:   eq,
		Validity:     eq,
	}
}

// Validate 校验非负且总和为 1.0（容差内）
func (w QualityWeights) Validate() error {
	for _, v := range w.asList() {
		if v < 0 {
			return ErrWeightNegative
		}
	}
	sum := 0.0
	for _, v := range w.asList() {
		sum += v
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: sum is %.4f", ErrWeightsSumInvalid, sum)
	}
	return nil
}

// Weight 返回指定维度的权重
func (w QualityWeights) Weight(dim QualityDimension) float64 {
	switch dim {
	case DimensionCompleteness:
		return w.Completeness
	case DimensionAccuracy:
		return w.Accuracy
	case DimensionConsistency:
		return w.Consistency
	case DimensionTimeliness:
		return w.Timeliness
	case DimensionUniqueness:
		return w.Uniqueness
	case DimensionValidity:
		return w.Validity
	default:
		return 0
	}
}

// WithWeight 调整单个维度权重，其余维度按比例缩放使总和保持 1.0
func (w QualityWeights) WithWeight(dim QualityDimension, weight float64) (QualityWeights, error) {
	if weight < 0 || weight > 1 {
		return QualityWeights{}, fmt.Errorf("%w: %.4f", ErrWeightOutOfRange, weight)
	}

	remainingOld := 1.0 - w.Weight(dim)
	remainingNew := 1.0 - weight

	scale := 0.0
	if remainingOld > 0 {
		scale = remainingNew / remainingOld
	}

	scaled := func(d QualityDimension, v float64) float64 {
		if d == dim {
			return weight
		}
		return v * scale
	}

	return QualityWeights{
		Completeness: scaled(DimensionCompleteness, w.Completeness),
		Accuracy:     scaled(DimensionAccuracy, w.Accuracy),
		Consistency:  scaled(DimensionConsistency, w.Consistency),
		Timeliness:   scaled(DimensionTimeliness, w.Timeliness),
		Uniqueness:   scaled(DimensionUniqueness, w.Uniqueness),
		Validity:     scaled(DimensionValidity, w.Validity),
	}, nil
}

func (w QualityWeights) asList() []float64 {
	return []float64{w.Completeness, w.Accuracy, w.Consistency, w.Timeliness, w.Uniqueness, w.Validity}
}

type QualityGrade string

const (
	GradeExcellent  QualityGrade = "EXCELLENT"
	GradeVeryGood   QualityGrade = "VERY_GOOD"
	GradeGood       QualityGrade = "GOOD"
	GradeAcceptable QualityGrade = "ACCEPTABLE"
	GradePoor       QualityGrade = "POOR"
)

// GradeFromScore 按总分划定等级
func GradeFromScore(score float64) QualityGrade {
	switch {
	case score >= 95.0:
		return GradeExcellent
	case score >= 90.0:
		return GradeVeryGood
	case score >= 80.0:
		return GradeGood
	case score >= 70.0:
		return GradeAcceptable
	default:
		return GradePoor
	}
}

// IsCompliant 合规等级为 ACCEPTABLE 及以上
func (g QualityGrade) IsCompliant() bool {
	return g != GradePoor
}

// RequiresAttention 低于 GOOD 的等级需要人工关注
func (g QualityGrade) RequiresAttention() bool {
	return g == GradeAcceptable || g == GradePoor
}

// QualityScores 批次质量评分结果
type QualityScores struct {
	Dimensions map[QualityDimension]float64 `json:"dimensions"`
	Overall    float64                      `json:"overall"`
	Grade      QualityGrade                 `json:"grade"`
	Compliant  bool                         `json:"compliant"`
}

// CalculateQualityScores 加权汇总各维度得分
// 权重集必须先通过校验，非法权重直接报错而不是悄悄归一化。
// 总分裁剪到 [0, 100]，合规判定为总分不低于 complianceMinimum
func CalculateQualityScores(dimensions map[QualityDimension]float64, weights QualityWeights, complianceMinimum float64) (QualityScores, error) {
	if err := weights.Validate(); err != nil {
		return QualityScores{}, err
	}
	if complianceMinimum <= 0 {
		complianceMinimum = DefaultComplianceMinimum
	}

	overall := 0.0
	dims := make(map[QualityDimension]float64, len(dimensions))
	for _, dim := range AllDimensions() {
		score := clampScore(dimensions[dim])
		dims[dim] = score
		overall += score * weights.Weight(dim)
	}
	overall = clampScore(overall)

	return QualityScores{
		Dimensions: dims,
		Overall:    overall,
		Grade:      GradeFromScore(overall),
		Compliant:  overall >= complianceMinimum,
	}, nil
}

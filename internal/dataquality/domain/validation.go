package domain

import "sort"

type QualityDimension string

const (
	DimensionCompleteness QualityDimension = "COMPLETENESS"
	DimensionAccuracy     QualityDimension = "ACCURACY"
	DimensionConsistency  QualityDimension = "CONSISTENCY"
	DimensionTimeliness   QualityDimension = "TIMELINESS"
	DimensionUniqueness   QualityDimension = "UNIQUENESS"
	DimensionValidity     QualityDimension = "VALIDITY"
)

// AllDimensions 固定顺序的全部质量维度
func AllDimensions() []QualityDimension {
	return []QualityDimension{
		DimensionCompleteness,
		DimensionAccuracy,
		DimensionConsistency,
		DimensionTimeliness,
		DimensionUniqueness,
		DimensionValidity,
	}
}

type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "LOW"
	SeverityMedium   ErrorSeverity = "MEDIUM"
	SeverityCritical ErrorSeverity = "CRITICAL"
)

// ValidationError 单条校验错误
// ExposureID 为空表示批次级错误
type ValidationError struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	Field      string           `json:"field,omitempty"`
	Dimension  QualityDimension `json:"dimension"`
	ExposureID string           `json:"exposure_id,omitempty"`
	Severity   ErrorSeverity    `json:"severity"`
}

// IsBatchLevel 是否为批次级错误（不归属单条敞口）
func (e ValidationError) IsBatchLevel() bool {
	return e.ExposureID == ""
}

// ValidationSummary 批次校验汇总
type ValidationSummary struct {
	TotalExposures    int                      `json:"total_exposures"`
	ValidExposures    int                      `json:"valid_exposures"`
	TotalErrors       int                      `json:"total_errors"`
	ErrorsByDimension map[QualityDimension]int `json:"errors_by_dimension"`
	ErrorsBySeverity  map[ErrorSeverity]int    `json:"errors_by_severity"`
	ErrorsByCode      map[string]int           `json:"errors_by_code"`
}

// ValidationResult 整批校验结果
type ValidationResult struct {
	BatchID   string            `json:"batch_id"`
	Errors    []ValidationError `json:"errors"`
	Summary   ValidationSummary `json:"summary"`
	Exposures int               `json:"exposures"`
}

// BuildValidationResult 汇总错误列表并计算统计摘要
func BuildValidationResult(batchID string, totalExposures int, errs []ValidationError) ValidationResult {
	summary := ValidationSummary{
		TotalExposures:    totalExposures,
		TotalErrors:       len(errs),
		ErrorsByDimension: make(map[QualityDimension]int),
		ErrorsBySeverity:  make(map[ErrorSeverity]int),
		ErrorsByCode:      make(map[string]int),
	}

	exposuresWithErrors := make(map[string]struct{})
	for _, e := range errs {
		summary.ErrorsByDimension[e.Dimension]++
		summary.ErrorsBySeverity[e.Severity]++
		summary.ErrorsByCode[e.Code]++
		if e.ExposureID != "" {
			exposuresWithErrors[e.ExposureID] = struct{}{}
		}
	}
	summary.ValidExposures = totalExposures - len(exposuresWithErrors)
	if summary.ValidExposures < 0 {
		summary.ValidExposures = 0
	}

	return ValidationResult{
		BatchID:   batchID,
		Errors:    errs,
		Summary:   summary,
		Exposures: totalExposures,
	}
}

// DimensionScore 按维度公式计算得分
// score = (总数 - 该维度有错的敞口数 - 该维度批次级错误数) / 总数 * 100
func (r ValidationResult) DimensionScore(dim QualityDimension) float64 {
	if r.Summary.TotalExposures == 0 {
		return 100.0
	}

	affected := make(map[string]struct{})
	batchErrors := 0
	for _, e := range r.Errors {
		if e.Dimension != dim {
			continue
		}
		if e.ExposureID == "" {
			batchErrors++
		} else {
			affected[e.ExposureID] = struct{}{}
		}
	}

	score := float64(r.Summary.TotalExposures-len(affected)-batchErrors) /
		float64(r.Summary.TotalExposures) * 100.0
	return clampScore(score)
}

// ErrorsForDimension 返回指定维度的全部错误
func (r ValidationResult) ErrorsForDimension(dim QualityDimension) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Dimension == dim {
			out = append(out, e)
		}
	}
	return out
}

// TopErrorCodes 返回出现次数最多的错误码（降序，同次数按码排序保证稳定）
func (r ValidationResult) TopErrorCodes(n int) []string {
	codes := make([]string, 0, len(r.Summary.ErrorsByCode))
	for code := range r.Summary.ErrorsByCode {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		ci, cj := r.Summary.ErrorsByCode[codes[i]], r.Summary.ErrorsByCode[codes[j]]
		if ci != cj {
			return ci > cj
		}
		return codes[i] < codes[j]
	})
	if n < len(codes) {
		codes = codes[:n]
	}
	return codes
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

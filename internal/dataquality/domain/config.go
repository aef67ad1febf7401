package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrConfigNotFound = errors.New("quality config not found")

// QualityConfig 银行级质量评估配置
// 无记录时使用默认权重、默认及时性阈值与默认合规线
type QualityConfig struct {
	gorm.Model
	// 银行 ID
	BankID string `gorm:"column:bank_id;type:varchar(32);uniqueIndex;not null" json:"bank_id"`
	// 评分权重
	Weights QualityWeights `gorm:"column:weights;serializer:json" json:"weights"`
	// 及时性阈值（天）
	TimelinessThresholdDays int `gorm:"column:timeliness_threshold_days;default:7" json:"timeliness_threshold_days"`
	// 合规最低总分
	ComplianceMinimum float64 `gorm:"column:compliance_minimum;default:70" json:"compliance_minimum"`
}

// DefaultQualityConfig 指定银行的默认配置
func DefaultQualityConfig(bankID string) *QualityConfig {
	return &QualityConfig{
		BankID:                  bankID,
		Weights:                 DefaultWeights(),
		TimelinessThresholdDays: DefaultTimelinessThresholdDays,
		ComplianceMinimum:       DefaultComplianceMinimum,
	}
}

// QualityConfigRepository 质量配置仓储接口
type QualityConfigRepository interface {
	// Get 获取银行配置，不存在时返回 ErrConfigNotFound
	Get(ctx context.Context, bankID string) (*QualityConfig, error)
	// Save 保存或更新配置
	Save(ctx context.Context, config *QualityConfig) error
}

// ResultsStorage 错误明细文档存储接口
type ResultsStorage interface {
	// Store 存储整批错误明细，返回可解引用的 URI
	Store(ctx context.Context, report *QualityReport, result ValidationResult) (string, error)
	// Load 按 URI 读取错误明细
	Load(ctx context.Context, uri string) (*ValidationResult, error)
}

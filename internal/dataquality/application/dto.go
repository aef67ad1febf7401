package application

import (
	"time"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// ValidateBatchQualityCommand 批次质量评估命令
type ValidateBatchQualityCommand struct {
	// 批次 ID
	BatchID string `json:"batch_id"`
	// 银行 ID
	BankID string `json:"bank_id"`
	// 敞口记录
	Exposures []*domain.ExposureRecord `json:"exposures"`
	// 信用风险缓释记录
	CrmRecords []*domain.CrmRecord `json:"crm_records,omitempty"`
	// 批次元数据申报的敞口笔数，负数表示未提供
	ReportedCount int `json:"reported_count"`
	// 批次上传时间
	UploadDate time.Time `json:"upload_date"`
	// 批次级报告日期，覆盖敞口上的报告日期用于及时性评估
	ReportingDate *time.Time `json:"reporting_date,omitempty"`
}

// UpdateQualityConfigCommand 更新银行质量配置命令
type UpdateQualityConfigCommand struct {
	BankID                  string                `json:"bank_id"`
	Weights                 domain.QualityWeights `json:"weights"`
	TimelinessThresholdDays int                   `json:"timeliness_threshold_days"`
	ComplianceMinimum       float64               `json:"compliance_minimum"`
}

// TrendsQuery 质量趋势查询
type TrendsQuery struct {
	BankID string    `json:"bank_id"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

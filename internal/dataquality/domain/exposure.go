// 包 domain 数据质量服务的领域模型
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExposureRecord 风险敞口记录
// 监管报送批次中的单条敞口数据，是所有维度校验的输入
type ExposureRecord struct {
	// 敞口 ID (业务主键)，批次内应唯一
	ExposureID string `json:"exposure_id"`
	// 交易对手 ID
	CounterpartyID string `json:"counterparty_id"`
	// 敞口金额，缺失与为零是两种不同的质量问题
	ExposureAmount *decimal.Decimal `json:"exposure_amount,omitempty"`
	// 货币（ISO 4217）
	Currency string `json:"currency"`
	// 国家代码（ISO 3166-1 alpha-2）
	CountryCode string `json:"country_code"`
	// 行业部门（如 CORPORATE_LENDING, BANKING, RETAIL）
	Sector string `json:"sector"`
	// 交易对手类型
	CounterpartyType string `json:"counterparty_type"`
	// 产品类型
	ProductType string `json:"product_type"`
	// 交易对手 LEI 代码
	CounterpartyLEI string `json:"counterparty_lei"`
	// 内部评级
	InternalRating string `json:"internal_rating"`
	// 风险类别
	RiskCategory string `json:"risk_category"`
	// 风险权重，有值时应在 [0, 12.5]
	RiskWeight *decimal.Decimal `json:"risk_weight,omitempty"`
	// 报告日期
	ReportingDate *time.Time `json:"reporting_date,omitempty"`
	// 估值日期
	ValuationDate *time.Time `json:"valuation_date,omitempty"`
	// 到期日期
	MaturityDate *time.Time `json:"maturity_date,omitempty"`
	// 报送参考编号
	ReferenceNumber string `json:"reference_number"`
	// 抵押品价值
	CollateralValue *decimal.Decimal `json:"collateral_value,omitempty"`
}

// IsCorporateExposure 是否为公司类敞口（LEI 为必填项）
func (e *ExposureRecord) IsCorporateExposure() bool {
	return strings.HasPrefix(e.Sector, "CORPORATE") || e.Sector == "BANKING"
}

// IsTermExposure 是否为有期限敞口（到期日为必填项）
func (e *ExposureRecord) IsTermExposure() bool {
	return e.ProductType != "" && e.ProductType != "EQUITY"
}

// CrmRecord 信用风险缓释记录
// 与敞口关联的抵押/担保记录，用于一致性检查
type CrmRecord struct {
	// CRM 记录 ID
	CrmID string `json:"crm_id"`
	// 关联的敞口 ID
	ExposureID string `json:"exposure_id"`
	// 抵押品价值
	CollateralValue decimal.Decimal `json:"collateral_value"`
	// 抵押品货币
	Currency string `json:"currency"`
}

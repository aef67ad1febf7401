package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// maxRiskWeight 巴塞尔框架下的风险权重上限 (1250%)
var maxRiskWeight = decimal.NewFromFloat(12.5)

// ValidateValidity 有效性校验
// 日期与取值范围类规则，以 now 作为"未来"的判定基准
func ValidateValidity(e *ExposureRecord, now time.Time) []ValidationError {
	var errs []ValidationError

	add := func(code, message, field string, severity ErrorSeverity) {
		errs = append(errs, ValidationError{
			Code:       code,
			Message:    message,
			Field:      field,
			Dimension:  DimensionValidity,
			ExposureID: e.ExposureID,
			Severity:   severity,
		})
	}

	if e.ReportingDate != nil && e.ReportingDate.After(now) {
		add("VALIDITY_FUTURE_REPORTING_DATE",
			fmt.Sprintf("reporting date %s is in the future", e.ReportingDate.Format("2006-01-02")),
			"reportingDate", SeverityCritical)
	}

	if e.ReportingDate != nil && e.ValuationDate != nil && e.ValuationDate.After(*e.ReportingDate) {
		add("VALIDITY_VALUATION_AFTER_REPORTING",
			"valuation date is after reporting date",
			"valuationDate", SeverityMedium)
	}

	if e.ReportingDate != nil && e.MaturityDate != nil && e.MaturityDate.Before(*e.ReportingDate) {
		add("VALIDITY_MATURITY_BEFORE_REPORTING",
			"maturity date is before reporting date",
			"maturityDate", SeverityMedium)
	}

	if e.RiskWeight != nil && (e.RiskWeight.IsNegative() || e.RiskWeight.GreaterThan(maxRiskWeight)) {
		add("VALIDITY_RISK_WEIGHT_RANGE",
			fmt.Sprintf("risk weight %s outside valid range [0, %s]", e.RiskWeight, maxRiskWeight),
			"riskWeight", SeverityMedium)
	}

	return errs
}

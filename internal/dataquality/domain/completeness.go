package domain

import (
	"fmt"
	"strings"
)

// ValidateCompleteness 完整性校验
// 收集单条敞口的全部缺失字段错误，不短路
func ValidateCompleteness(e *ExposureRecord) []ValidationError {
	var errs []ValidationError

	addMissing := func(code, field string, severity ErrorSeverity) {
		errs = append(errs, ValidationError{
			Code:       code,
			Message:    fmt.Sprintf("required field %s is missing", field),
			Field:      field,
			Dimension:  DimensionCompleteness,
			ExposureID: e.ExposureID,
			Severity:   severity,
		})
	}

	if strings.TrimSpace(e.ExposureID) == "" {
		addMissing("COMPLETENESS_MISSING_EXPOSURE_ID", "exposureId", SeverityCritical)
	}
	if strings.TrimSpace(e.CounterpartyID) == "" {
		addMissing("COMPLETENESS_MISSING_COUNTERPARTY_ID", "counterpartyId", SeverityCritical)
	}
	if e.ExposureAmount == nil {
		addMissing("COMPLETENESS_MISSING_AMOUNT", "exposureAmount", SeverityCritical)
	}
	if strings.TrimSpace(e.Currency) == "" {
		addMissing("COMPLETENESS_MISSING_CURRENCY", "currency", SeverityCritical)
	}
	if strings.TrimSpace(e.CountryCode) == "" {
		addMissing("COMPLETENESS_MISSING_COUNTRY", "countryCode", SeverityCritical)
	}

	// 条件必填: 公司类敞口须有 LEI, 有期限敞口须有到期日
	if e.IsCorporateExposure() && strings.TrimSpace(e.CounterpartyLEI) == "" {
		addMissing("COMPLETENESS_MISSING_LEI", "counterpartyLei", SeverityMedium)
	}
	if e.IsTermExposure() && e.MaturityDate == nil {
		addMissing("COMPLETENESS_MISSING_MATURITY_DATE", "maturityDate", SeverityMedium)
	}

	return errs
}

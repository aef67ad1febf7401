package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxReasonableAmount 单笔敞口金额合理性上限（100 亿）
var maxReasonableAmount = decimal.NewFromInt(10_000_000_000)

// validCurrencies 受支持的 ISO 4217 货币代码子集
var validCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "JPY": {}, "CHF": {},
	"CAD": {}, "AUD": {}, "SEK": {}, "NOK": {}, "DKK": {},
	"PLN": {}, "CZK": {}, "HUF": {}, "BGN": {}, "RON": {},
	"HRK": {}, "RSD": {}, "BAM": {}, "MKD": {}, "ALL": {},
	"CNY": {}, "HKD": {}, "SGD": {}, "KRW": {}, "INR": {},
	"THB": {}, "MYR": {}, "IDR": {}, "PHP": {}, "VND": {},
	"BRL": {}, "MXN": {}, "ARS": {}, "CLP": {}, "COP": {},
	"PEN": {}, "UYU": {}, "ZAR": {}, "EGP": {}, "MAD": {},
	"TND": {}, "NGN": {}, "GHS": {}, "KES": {}, "UGX": {},
	"TZS": {}, "ZMW": {}, "BWP": {}, "MUR": {}, "SCR": {},
}

// validCountries 受支持的 ISO 3166-1 alpha-2 国家代码子集
var validCountries = map[string]struct{}{
	"US": {}, "GB": {}, "DE": {}, "FR": {}, "IT": {}, "ES": {}, "NL": {}, "BE": {},
	"AT": {}, "CH": {}, "SE": {}, "NO": {}, "DK": {}, "FI": {}, "IE": {}, "PT": {},
	"GR": {}, "PL": {}, "CZ": {}, "HU": {}, "SK": {}, "SI": {}, "EE": {}, "LV": {},
	"LT": {}, "BG": {}, "RO": {}, "HR": {}, "CY": {}, "MT": {}, "LU": {}, "JP": {},
	"CN": {}, "HK": {}, "SG": {}, "KR": {}, "IN": {}, "TH": {}, "MY": {}, "ID": {},
	"PH": {}, "VN": {}, "AU": {}, "NZ": {}, "CA": {}, "MX": {}, "BR": {}, "AR": {},
	"CL": {}, "CO": {}, "PE": {}, "UY": {}, "ZA": {}, "EG": {}, "MA": {}, "TN": {},
	"NG": {}, "GH": {}, "KE": {}, "UG": {}, "TZ": {}, "ZM": {}, "BW": {}, "MU": {},
	"SC": {}, "RU": {}, "UA": {}, "BY": {}, "MD": {}, "GE": {}, "AM": {}, "AZ": {},
	"KZ": {}, "UZ": {}, "KG": {}, "TJ": {}, "TM": {}, "MN": {}, "TR": {}, "IL": {},
	"SA": {}, "AE": {}, "QA": {}, "KW": {}, "BH": {}, "OM": {}, "JO": {}, "LB": {},
	"SY": {}, "IQ": {}, "IR": {}, "AF": {}, "PK": {}, "BD": {}, "LK": {}, "NP": {},
	"BT": {}, "MM": {}, "LA": {}, "KH": {}, "BN": {}, "TL": {}, "FJ": {}, "PG": {},
	"SB": {}, "VU": {}, "NC": {}, "PF": {},
}

// IsValidCurrency 货币代码是否在受支持子集内
func IsValidCurrency(code string) bool {
	_, ok := validCurrencies[code]
	return ok
}

// IsValidCountry 国家代码是否在受支持子集内
func IsValidCountry(code string) bool {
	_, ok := validCountries[code]
	return ok
}

// ValidateAccuracy 准确性校验
func ValidateAccuracy(e *ExposureRecord) []ValidationError {
	var errs []ValidationError

	add := func(code, message, field string, severity ErrorSeverity) {
		errs = append(errs, ValidationError{
			Code:       code,
			Message:    message,
			Field:      field,
			Dimension:  DimensionAccuracy,
			ExposureID: e.ExposureID,
			Severity:   severity,
		})
	}

	if e.ExposureAmount != nil {
		if !e.ExposureAmount.IsPositive() {
			add("ACCURACY_AMOUNT_NOT_POSITIVE",
				fmt.Sprintf("exposure amount must be positive, got %s", e.ExposureAmount),
				"exposureAmount", SeverityCritical)
		} else if e.ExposureAmount.GreaterThan(maxReasonableAmount) {
			add("ACCURACY_AMOUNT_UNREASONABLE",
				fmt.Sprintf("exposure amount %s exceeds reasonable maximum %s", e.ExposureAmount, maxReasonableAmount),
				"exposureAmount", SeverityMedium)
		}
	}

	if cur := strings.TrimSpace(e.Currency); cur != "" && !IsValidCurrency(cur) {
		add("ACCURACY_INVALID_CURRENCY",
			fmt.Sprintf("unknown currency code %q", cur),
			"currency", SeverityCritical)
	}

	if cc := strings.TrimSpace(e.CountryCode); cc != "" && !IsValidCountry(cc) {
		add("ACCURACY_INVALID_COUNTRY",
			fmt.Sprintf("unknown country code %q", cc),
			"countryCode", SeverityCritical)
	}

	if lei := strings.TrimSpace(e.CounterpartyLEI); lei != "" && !IsValidLEI(lei) {
		add("ACCURACY_INVALID_LEI_FORMAT",
			fmt.Sprintf("LEI %q fails format or checksum validation", lei),
			"counterpartyLei", SeverityMedium)
	}

	return errs
}

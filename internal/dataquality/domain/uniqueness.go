package domain

import (
	"fmt"
	"sort"
	"strings"
)

// maxListedDuplicates 错误消息中最多列出的重复值个数
const maxListedDuplicates = 10

// ValidateUniqueness 唯一性校验（批次级）
// 三次扫描: 敞口 ID、(交易对手, 敞口) 组合、参考编号。空白键跳过
func ValidateUniqueness(exposures []*ExposureRecord) []ValidationError {
	var errs []ValidationError

	if dups := findDuplicates(exposures, func(e *ExposureRecord) string {
		return e.ExposureID
	}); len(dups) > 0 {
		errs = append(errs, ValidationError{
			Code:      "UNIQUENESS_DUPLICATE_EXPOSURE_IDS",
			Message:   fmt.Sprintf("duplicate exposure ids found: %s", formatDuplicates(dups)),
			Field:     "exposureId",
			Dimension: DimensionUniqueness,
			Severity:  SeverityCritical,
		})
	}

	if dups := findDuplicates(exposures, func(e *ExposureRecord) string {
		cp := strings.TrimSpace(e.CounterpartyID)
		exp := strings.TrimSpace(e.ExposureID)
		if cp == "" || exp == "" {
			return ""
		}
		return cp + ":" + exp
	}); len(dups) > 0 {
		errs = append(errs, ValidationError{
			Code:      "UNIQUENESS_DUPLICATE_COUNTERPARTY_EXPOSURE",
			Message:   fmt.Sprintf("duplicate counterparty/exposure pairs found: %s", formatDuplicates(dups)),
			Field:     "counterpartyId",
			Dimension: DimensionUniqueness,
			Severity:  SeverityMedium,
		})
	}

	if dups := findDuplicates(exposures, func(e *ExposureRecord) string {
		return e.ReferenceNumber
	}); len(dups) > 0 {
		errs = append(errs, ValidationError{
			Code:      "UNIQUENESS_DUPLICATE_REFERENCE_NUMBERS",
			Message:   fmt.Sprintf("duplicate reference numbers found: %s", formatDuplicates(dups)),
			Field:     "referenceNumber",
			Dimension: DimensionUniqueness,
			Severity:  SeverityMedium,
		})
	}

	return errs
}

// findDuplicates 返回出现两次以上的去重键列表（排序保证消息稳定）
func findDuplicates(exposures []*ExposureRecord, keyOf func(*ExposureRecord) string) []string {
	seen := make(map[string]int, len(exposures))
	for _, e := range exposures {
		key := strings.TrimSpace(keyOf(e))
		if key == "" {
			continue
		}
		seen[key]++
	}

	var dups []string
	for key, count := range seen {
		if count > 1 {
			dups = append(dups, key)
		}
	}
	sort.Strings(dups)
	return dups
}

func formatDuplicates(dups []string) string {
	if len(dups) <= maxListedDuplicates {
		return strings.Join(dups, ", ")
	}
	return fmt.Sprintf("%s (and %d more)",
		strings.Join(dups[:maxListedDuplicates], ", "), len(dups)-maxListedDuplicates)
}

package domain

import (
	"fmt"
	"strings"
)

type ConsistencyCheckType string

const (
	CheckExposureCountMatch        ConsistencyCheckType = "EXPOSURE_COUNT_MATCH"
	CheckCrmExposureMapping        ConsistencyCheckType = "CRM_EXPOSURE_MAPPING"
	CheckLeiCounterpartyConsistent ConsistencyCheckType = "LEI_COUNTERPARTY_CONSISTENCY"
	CheckCurrencyConsistency       ConsistencyCheckType = "CURRENCY_CONSISTENCY"
)

// ConsistencyCheck 单项一致性检查结果
type ConsistencyCheck struct {
	CheckType ConsistencyCheckType `json:"check_type"`
	Passed    bool                 `json:"passed"`
	Score     float64              `json:"score"`
	Details   string               `json:"details"`
}

// ConsistencyResult 批次一致性检查结果
// OverallScore 为各项检查得分的算术平均，无检查时为 100
type ConsistencyResult struct {
	Checks       []ConsistencyCheck `json:"checks"`
	OverallScore float64            `json:"overall_score"`
	Errors       []ValidationError  `json:"errors,omitempty"`
}

// ValidateConsistency 一致性校验（批次级，四项检查）
// reportedCount < 0 表示批次元数据未提供申报笔数，跳过第一项检查
func ValidateConsistency(exposures []*ExposureRecord, crmRecords []*CrmRecord, reportedCount int) ConsistencyResult {
	var result ConsistencyResult

	if reportedCount >= 0 {
		result.addCheck(checkExposureCount(exposures, reportedCount))
	}
	if len(crmRecords) > 0 {
		result.addCheck(checkCrmMapping(exposures, crmRecords))
		result.addCheck(checkCurrencyConsistency(exposures, crmRecords))
	}
	result.addCheck(checkLeiConsistency(exposures))

	if len(result.Checks) == 0 {
		result.OverallScore = 100.0
		return result
	}

	sum := 0.0
	for _, c := range result.Checks {
		sum += c.Score
	}
	result.OverallScore = sum / float64(len(result.Checks))
	return result
}

func (r *ConsistencyResult) addCheck(check ConsistencyCheck) {
	r.Checks = append(r.Checks, check)
	if !check.Passed {
		r.Errors = append(r.Errors, ValidationError{
			Code:      "CONSISTENCY_" + string(check.CheckType),
			Message:   check.Details,
			Dimension: DimensionConsistency,
			Severity:  SeverityMedium,
		})
	}
}

func checkExposureCount(exposures []*ExposureRecord, reportedCount int) ConsistencyCheck {
	actual := len(exposures)
	if actual == reportedCount {
		return ConsistencyCheck{
			CheckType: CheckExposureCountMatch,
			Passed:    true,
			Score:     100.0,
			Details:   fmt.Sprintf("reported count matches actual count (%d)", actual),
		}
	}
	return ConsistencyCheck{
		CheckType: CheckExposureCountMatch,
		Passed:    false,
		Score:     0.0,
		Details:   fmt.Sprintf("reported count %d does not match actual count %d", reportedCount, actual),
	}
}

func checkCrmMapping(exposures []*ExposureRecord, crmRecords []*CrmRecord) ConsistencyCheck {
	ids := make(map[string]struct{}, len(exposures))
	for _, e := range exposures {
		if id := strings.TrimSpace(e.ExposureID); id != "" {
			ids[id] = struct{}{}
		}
	}

	matched := 0
	for _, crm := range crmRecords {
		if _, ok := ids[strings.TrimSpace(crm.ExposureID)]; ok {
			matched++
		}
	}

	score := float64(matched) / float64(len(crmRecords)) * 100.0
	return ConsistencyCheck{
		CheckType: CheckCrmExposureMapping,
		Passed:    score >= 90.0,
		Score:     score,
		Details:   fmt.Sprintf("%d of %d CRM records map to an existing exposure", matched, len(crmRecords)),
	}
}

func checkLeiConsistency(exposures []*ExposureRecord) ConsistencyCheck {
	// 同一 LEI 在整个批次中只能对应一个交易对手（1:1 不变式）
	counterpartiesByLei := make(map[string]map[string]struct{})
	for _, e := range exposures {
		cp := strings.TrimSpace(e.CounterpartyID)
		lei := strings.TrimSpace(e.CounterpartyLEI)
		if cp == "" || lei == "" {
			continue
		}
		key := strings.ToUpper(lei)
		if counterpartiesByLei[key] == nil {
			counterpartiesByLei[key] = make(map[string]struct{})
		}
		counterpartiesByLei[key][cp] = struct{}{}
	}

	total := len(counterpartiesByLei)
	if total == 0 {
		return ConsistencyCheck{
			CheckType: CheckLeiCounterpartyConsistent,
			Passed:    true,
			Score:     100.0,
			Details:   "no LEI codes present",
		}
	}

	consistent := 0
	for _, counterparties := range counterpartiesByLei {
		if len(counterparties) == 1 {
			consistent++
		}
	}

	return ConsistencyCheck{
		CheckType: CheckLeiCounterpartyConsistent,
		Passed:    consistent == total,
		Score:     float64(consistent) / float64(total) * 100.0,
		Details:   fmt.Sprintf("%d of %d LEI codes map to a single counterparty", consistent, total),
	}
}

func checkCurrencyConsistency(exposures []*ExposureRecord, crmRecords []*CrmRecord) ConsistencyCheck {
	currencyByExposure := make(map[string]string, len(exposures))
	for _, e := range exposures {
		if id := strings.TrimSpace(e.ExposureID); id != "" {
			currencyByExposure[id] = strings.TrimSpace(e.Currency)
		}
	}

	comparable := 0
	matched := 0
	for _, crm := range crmRecords {
		cur, ok := currencyByExposure[strings.TrimSpace(crm.ExposureID)]
		if !ok || cur == "" || strings.TrimSpace(crm.Currency) == "" {
			continue
		}
		comparable++
		if strings.EqualFold(cur, crm.Currency) {
			matched++
		}
	}

	if comparable == 0 {
		return ConsistencyCheck{
			CheckType: CheckCurrencyConsistency,
			Passed:    true,
			Score:     100.0,
			Details:   "no exposure/CRM currency pairs to compare",
		}
	}

	return ConsistencyCheck{
		CheckType: CheckCurrencyConsistency,
		Passed:    matched == comparable,
		Score:     float64(matched) / float64(comparable) * 100.0,
		Details:   fmt.Sprintf("%d of %d CRM records match their exposure currency", matched, comparable),
	}
}

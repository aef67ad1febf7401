package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCheck(t *testing.T, result ConsistencyResult, checkType ConsistencyCheckType) ConsistencyCheck {
	t.Helper()
	for _, c := range result.Checks {
		if c.CheckType == checkType {
			return c
		}
	}
	t.Fatalf("check %s not found", checkType)
	return ConsistencyCheck{}
}

func TestValidateConsistencyCountMatch(t *testing.T) {
	exposures := []*ExposureRecord{
		{ExposureID: "EXP-1", Currency: "EUR"},
		{ExposureID: "EXP-2", Currency: "EUR"},
	}

	result := ValidateConsistency(exposures, nil, 2)
	check := findCheck(t, result, CheckExposureCountMatch)
	assert.True(t, check.Passed)
	assert.Equal(t, 100.0, check.Score)

	result = ValidateConsistency(exposures, nil, 5)
	check = findCheck(t, result, CheckExposureCountMatch)
	assert.False(t, check.Passed)
	assert.Equal(t, 0.0, check.Score)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "CONSISTENCY_EXPOSURE_COUNT_MATCH", result.Errors[0].Code)
	assert.Equal(t, DimensionConsistency, result.Errors[0].Dimension)
}

func TestValidateConsistencyReportedCountUnknown(t *testing.T) {
	result := ValidateConsistency([]*ExposureRecord{{ExposureID: "EXP-1"}}, nil, -1)
	for _, c := range result.Checks {
		assert.NotEqual(t, CheckExposureCountMatch, c.CheckType)
	}
}

func TestValidateConsistencyCrmMapping(t *testing.T) {
	exposures := []*ExposureRecord{
		{ExposureID: "EXP-1", Currency: "EUR"},
		{ExposureID: "EXP-2", Currency: "EUR"},
	}
	crm := []*CrmRecord{
		{CrmID: "CRM-1", ExposureID: "EXP-1", Currency: "EUR"},
		{CrmID: "CRM-2", ExposureID: "EXP-2", Currency: "EUR"},
		{CrmID: "CRM-3", ExposureID: "EXP-9", Currency: "EUR"},
		{CrmID: "CRM-4", ExposureID: "EXP-1", Currency: "EUR"},
	}

	result := ValidateConsistency(exposures, crm, -1)
	check := findCheck(t, result, CheckCrmExposureMapping)
	// 3/4 映射成功 = 75 分，低于 90 不通过
	assert.InDelta(t, 75.0, check.Score, 0.001)
	assert.False(t, check.Passed)
}

func TestValidateConsistencyLei(t *testing.T) {
	// 同一 LEI 出现在两个交易对手名下，违反 1:1 不变式
	shared := []*ExposureRecord{
		{ExposureID: "EXP-1", CounterpartyID: "CP-1", CounterpartyLEI: "5493001KJTIIGC8Y1R12"},
		{ExposureID: "EXP-2", CounterpartyID: "CP-2", CounterpartyLEI: "5493001KJTIIGC8Y1R12"},
	}
	result := ValidateConsistency(shared, nil, -1)
	check := findCheck(t, result, CheckLeiCounterpartyConsistent)
	assert.False(t, check.Passed)
	assert.Equal(t, 0.0, check.Score)

	// 两个 LEI 中一个被共用: 1/2 = 50 分
	mixed := []*ExposureRecord{
		{ExposureID: "EXP-1", CounterpartyID: "CP-1", CounterpartyLEI: "5493001KJTIIGC8Y1R12"},
		{ExposureID: "EXP-2", CounterpartyID: "CP-2", CounterpartyLEI: "5493001KJTIIGC8Y1R12"},
		{ExposureID: "EXP-3", CounterpartyID: "CP-3", CounterpartyLEI: "549300E9PC51EN656011"},
	}
	result = ValidateConsistency(mixed, nil, -1)
	check = findCheck(t, result, CheckLeiCounterpartyConsistent)
	assert.False(t, check.Passed)
	assert.InDelta(t, 50.0, check.Score, 0.001)

	// 一个交易对手使用多个 LEI 不是本检查的违规
	multiLei := []*ExposureRecord{
		{ExposureID: "EXP-1", CounterpartyID: "CP-1", CounterpartyLEI: "5493001KJTIIGC8Y1R12"},
		{ExposureID: "EXP-2", CounterpartyID: "CP-1", CounterpartyLEI: "213800WAVVOPS85N2205"},
	}
	result = ValidateConsistency(multiLei, nil, -1)
	check = findCheck(t, result, CheckLeiCounterpartyConsistent)
	assert.True(t, check.Passed)
	assert.Equal(t, 100.0, check.Score)

	// 没有 LEI 时恒为 100
	result = ValidateConsistency([]*ExposureRecord{{ExposureID: "EXP-1"}}, nil, -1)
	check = findCheck(t, result, CheckLeiCounterpartyConsistent)
	assert.True(t, check.Passed)
	assert.Equal(t, 100.0, check.Score)
}

func TestValidateConsistencyCurrency(t *testing.T) {
	exposures := []*ExposureRecord{
		{ExposureID: "EXP-1", Currency: "EUR"},
		{ExposureID: "EXP-2", Currency: "USD"},
	}
	crm := []*CrmRecord{
		{CrmID: "CRM-1", ExposureID: "EXP-1", Currency: "EUR"},
		{CrmID: "CRM-2", ExposureID: "EXP-2", Currency: "GBP"},
	}

	result := ValidateConsistency(exposures, crm, -1)
	check := findCheck(t, result, CheckCurrencyConsistency)
	assert.False(t, check.Passed)
	assert.InDelta(t, 50.0, check.Score, 0.001)
}

func TestValidateConsistencyOverallScore(t *testing.T) {
	// 空批次不触发任何违规
	result := ValidateConsistency(nil, nil, -1)
	assert.Equal(t, 100.0, result.OverallScore)

	exposures := []*ExposureRecord{{ExposureID: "EXP-1", Currency: "EUR"}}
	crm := []*CrmRecord{{CrmID: "CRM-1", ExposureID: "EXP-1", Currency: "EUR"}}
	result = ValidateConsistency(exposures, crm, 1)
	// 四项检查全部通过
	assert.Len(t, result.Checks, 4)
	assert.InDelta(t, 100.0, result.OverallScore, 0.001)
	assert.Empty(t, result.Errors)
}

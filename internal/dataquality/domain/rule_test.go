package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleFixture(logic string) *BusinessRule {
	return &BusinessRule{
		RuleID:        "RULE-1",
		RuleCode:      "DQ_AMOUNT_LIMIT",
		RuleName:      "exposure amount limit",
		RuleType:      RuleTypeDataQuality,
		RuleCategory:  "ACCURACY",
		Severity:      RuleSeverityHigh,
		BusinessLogic: logic,
		Enabled:       true,
	}
}

func TestExecuteRuleConditions(t *testing.T) {
	ctx := RuleContext{
		"amount":      500000.0,
		"currency":    "EUR",
		"sector":      "CORPORATE_LENDING",
		"entity_id":   "EXP-1",
		"entity_type": "EXPOSURE",
	}

	passing, err := ExecuteRule(ruleFixture("amount <= 1000000\ncurrency IN [EUR, USD]"), ctx)
	require.NoError(t, err)
	assert.True(t, passing.Success)
	assert.Empty(t, passing.Violations)

	failing, err := ExecuteRule(ruleFixture("amount <= 100000"), ctx)
	require.NoError(t, err)
	assert.False(t, failing.Success)
	require.Len(t, failing.Violations, 1)
	assert.Equal(t, "DQ_AMOUNT_LIMIT", failing.Violations[0].RuleCode)
	assert.Equal(t, "EXP-1", failing.Violations[0].EntityID)
	assert.Equal(t, RuleSeverityHigh, failing.Violations[0].Severity)
	assert.Equal(t, "amount", failing.Violations[0].Details["field"])
}

func TestExecuteRuleOperators(t *testing.T) {
	ctx := RuleContext{"currency": "GBP", "rating": "BB", "amount": 10.0}

	cases := []struct {
		logic string
		pass  bool
	}{
		{"currency == GBP", true},
		{"currency != EUR", true},
		{"currency IN [EUR, USD]", false},
		{"currency NOT_IN [EUR, USD]", true},
		{"amount > 5", true},
		{"amount >= 10", true},
		{"amount < 10", false},
		{"rating REQUIRED", true},
		{"leiCode REQUIRED", false},
		{"rating MATCHES B*", true},
		{"rating MATCHES *A", false},
	}
	for _, tc := range cases {
		result, err := ExecuteRule(ruleFixture(tc.logic), ctx)
		require.NoError(t, err, tc.logic)
		assert.Equal(t, tc.pass, result.Success, tc.logic)
	}
}

func TestExecuteRuleParameterSubstitution(t *testing.T) {
	rule := ruleFixture("amount <= ${maxAmount}")
	rule.Parameters = []RuleParameter{
		{RuleID: "RULE-1", Name: "maxAmount", Value: "250000", Type: ParameterTypeNumber, Configurable: true},
	}

	result, err := ExecuteRule(rule, RuleContext{"amount": 300000.0})
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = ExecuteRule(rule, RuleContext{"amount": 200000.0})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestExecuteRuleInvalidExpression(t *testing.T) {
	_, err := ExecuteRule(ruleFixture("amount"), RuleContext{})
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = ExecuteRule(ruleFixture("amount ~~ 5"), RuleContext{"amount": 1.0})
	assert.ErrorIs(t, err, ErrInvalidCondition)

	_, err = ExecuteRule(ruleFixture("amount > abc"), RuleContext{"amount": 1.0})
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestRuleIsApplicableOn(t *testing.T) {
	now := day(2026, 6, 15)

	rule := ruleFixture("amount > 0")
	assert.True(t, rule.IsApplicableOn(now))

	rule.Enabled = false
	assert.False(t, rule.IsApplicableOn(now))

	rule.Enabled = true
	rule.EffectiveDate = timePtr(day(2026, 7, 1))
	assert.False(t, rule.IsApplicableOn(now))

	rule.EffectiveDate = timePtr(day(2026, 1, 1))
	rule.ExpirationDate = timePtr(day(2026, 6, 1))
	assert.False(t, rule.IsApplicableOn(now))

	rule.ExpirationDate = timePtr(day(2027, 1, 1))
	assert.True(t, rule.IsApplicableOn(now))
}

func TestRuleDimensionMapping(t *testing.T) {
	cases := map[string]QualityDimension{
		"COMPLETENESS": DimensionCompleteness,
		"completeness": DimensionCompleteness,
		"CONSISTENCY":  DimensionConsistency,
		"TIMELINESS":   DimensionTimeliness,
		"UNIQUENESS":   DimensionUniqueness,
		"VALIDITY":     DimensionValidity,
		"ACCURACY":     DimensionAccuracy,
		"THRESHOLDS":   DimensionAccuracy,
		"":             DimensionAccuracy,
	}
	for category, want := range cases {
		rule := ruleFixture("amount > 0")
		rule.RuleCategory = category
		assert.Equal(t, want, rule.Dimension(), category)
	}
}

func TestRuleSeverityMapping(t *testing.T) {
	assert.Equal(t, SeverityLow, RuleSeverityLow.ToErrorSeverity())
	assert.Equal(t, SeverityMedium, RuleSeverityMedium.ToErrorSeverity())
	assert.Equal(t, SeverityCritical, RuleSeverityHigh.ToErrorSeverity())
	assert.Equal(t, SeverityCritical, RuleSeverityCritical.ToErrorSeverity())
}

func TestRuleParameterAccessors(t *testing.T) {
	rule := ruleFixture("amount > 0")
	rule.Parameters = []RuleParameter{
		{Name: "maxAmount", Value: "250000", Type: ParameterTypeNumber},
		{Name: "allowedCurrencies", Value: "EUR, USD,GBP", Type: ParameterTypeList},
		{Name: "strictMode", Value: "true", Type: ParameterTypeBoolean},
	}

	p, ok := rule.Parameter("maxAmount")
	require.True(t, ok)
	v, ok := p.FloatValue()
	require.True(t, ok)
	assert.Equal(t, 250000.0, v)

	p, _ = rule.Parameter("allowedCurrencies")
	assert.Equal(t, []string{"EUR", "USD", "GBP"}, p.ListValue())

	p, _ = rule.Parameter("strictMode")
	b, ok := p.BoolValue()
	require.True(t, ok)
	assert.True(t, b)

	_, ok = rule.Parameter("missing")
	assert.False(t, ok)
}

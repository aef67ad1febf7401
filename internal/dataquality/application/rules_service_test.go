package application

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

type fakeRuleRepo struct {
	rules []*domain.BusinessRule
}

func (f *fakeRuleRepo) FindEnabled(_ context.Context) ([]*domain.BusinessRule, error) {
	var out []*domain.BusinessRule
	for _, r := range f.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) FindByCode(_ context.Context, ruleCode string) (*domain.BusinessRule, error) {
	for _, r := range f.rules {
		if r.RuleCode == ruleCode {
			return r, nil
		}
	}
	return nil, domain.ErrRuleNotFound
}

func (f *fakeRuleRepo) FindByTypeOrdered(_ context.Context, ruleType domain.RuleType) ([]*domain.BusinessRule, error) {
	var out []*domain.BusinessRule
	for _, r := range f.rules {
		if r.Enabled && r.RuleType == ruleType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) FindByCategory(_ context.Context, category string) ([]*domain.BusinessRule, error) {
	var out []*domain.BusinessRule
	for _, r := range f.rules {
		if r.Enabled && r.RuleCategory == category {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) Save(_ context.Context, rule *domain.BusinessRule) error {
	f.rules = append(f.rules, rule)
	return nil
}

func (f *fakeRuleRepo) SetEnabled(_ context.Context, ruleCode string, enabled bool) error {
	for _, r := range f.rules {
		if r.RuleCode == ruleCode {
			r.Enabled = enabled
			return nil
		}
	}
	return domain.ErrRuleNotFound
}

func amountLimitRule(limit string) *domain.BusinessRule {
	return &domain.BusinessRule{
		RuleID:        "RULE-1",
		RuleCode:      "DQ_AMOUNT_LIMIT",
		RuleName:      "单笔敞口金额上限",
		RuleType:      domain.RuleTypeDataQuality,
		RuleCategory:  "ACCURACY",
		Severity:      domain.RuleSeverityHigh,
		BusinessLogic: "amount <= " + limit,
		Enabled:       true,
	}
}

func rulesExposure() *domain.ExposureRecord {
	reporting := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(2_000_000)
	return &domain.ExposureRecord{
		ExposureID:      "EXP-1",
		CounterpartyID:  "CP-1",
		ExposureAmount:  &amount,
		Currency:        "EUR",
		CountryCode:     "DE",
		Sector:          "CORPORATE_LENDING",
		ProductType:     "LOAN",
		CounterpartyLEI: "5493001KJTIIGC8Y1R12",
		ReportingDate:   &reporting,
	}
}

func TestValidateConfigurableRules(t *testing.T) {
	repo := &fakeRuleRepo{rules: []*domain.BusinessRule{amountLimitRule("1000000")}}
	service := NewRulesValidationService(repo, slog.Default())

	errs := service.ValidateConfigurableRules(context.Background(), rulesExposure())
	require.Len(t, errs, 1)
	assert.Equal(t, "DQ_AMOUNT_LIMIT", errs[0].Code)
	assert.Equal(t, domain.DimensionAccuracy, errs[0].Dimension)
	assert.Equal(t, domain.SeverityCritical, errs[0].Severity)
	assert.Equal(t, "EXP-1", errs[0].ExposureID)
	assert.Equal(t, "amount", errs[0].Field)

	// 规则通过时无错误
	repo.rules = []*domain.BusinessRule{amountLimitRule("5000000")}
	assert.Empty(t, service.ValidateConfigurableRules(context.Background(), rulesExposure()))
}

func TestValidateConfigurableRulesSkipsInapplicable(t *testing.T) {
	expired := amountLimitRule("1")
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expired.ExpirationDate = &past

	disabled := amountLimitRule("1")
	disabled.RuleCode = "DQ_DISABLED"
	disabled.Enabled = false

	repo := &fakeRuleRepo{rules: []*domain.BusinessRule{expired, disabled}}
	service := NewRulesValidationService(repo, slog.Default())

	assert.Empty(t, service.ValidateConfigurableRules(context.Background(), rulesExposure()))
}

func TestValidateConfigurableRulesIsolatesBrokenRule(t *testing.T) {
	broken := amountLimitRule("1000000")
	broken.RuleCode = "DQ_BROKEN"
	broken.BusinessLogic = "amount ~~ nonsense"

	repo := &fakeRuleRepo{rules: []*domain.BusinessRule{broken, amountLimitRule("1000000")}}
	service := NewRulesValidationService(repo, slog.Default())

	// 坏规则被跳过，不影响其余规则的执行
	errs := service.ValidateConfigurableRules(context.Background(), rulesExposure())
	require.Len(t, errs, 1)
	assert.Equal(t, "DQ_AMOUNT_LIMIT", errs[0].Code)
}

func TestValidateThresholdRules(t *testing.T) {
	threshold := amountLimitRule("1000000")
	threshold.RuleCode = "THRESHOLD_LARGE_EXPOSURE"
	threshold.RuleType = domain.RuleTypeThreshold
	threshold.RuleCategory = "THRESHOLDS"

	repo := &fakeRuleRepo{rules: []*domain.BusinessRule{threshold}}
	service := NewRulesValidationService(repo, slog.Default())

	errs := service.ValidateThresholdRules(context.Background(), rulesExposure())
	require.Len(t, errs, 1)
	assert.Equal(t, "THRESHOLD_LARGE_EXPOSURE", errs[0].Code)
	// THRESHOLDS 类别归入准确性维度
	assert.Equal(t, domain.DimensionAccuracy, errs[0].Dimension)
}

func TestConfigurableParameterAccessors(t *testing.T) {
	rule := amountLimitRule("${maxAmount}")
	rule.Parameters = []domain.RuleParameter{
		{RuleID: "RULE-1", Name: "maxAmount", Value: "250000", Type: domain.ParameterTypeNumber, Configurable: true},
		{RuleID: "RULE-1", Name: "allowedCurrencies", Value: "EUR,USD", Type: domain.ParameterTypeList, Configurable: true},
		{RuleID: "RULE-1", Name: "strictMode", Value: "true", Type: domain.ParameterTypeBoolean, Configurable: true},
	}
	repo := &fakeRuleRepo{rules: []*domain.BusinessRule{rule}}
	service := NewRulesValidationService(repo, slog.Default())
	ctx := context.Background()

	v, ok := service.GetConfigurableFloat(ctx, "DQ_AMOUNT_LIMIT", "maxAmount")
	require.True(t, ok)
	assert.Equal(t, 250000.0, v)

	s, ok := service.GetConfigurableString(ctx, "DQ_AMOUNT_LIMIT", "maxAmount")
	require.True(t, ok)
	assert.Equal(t, "250000", s)

	list, ok := service.GetConfigurableList(ctx, "DQ_AMOUNT_LIMIT", "allowedCurrencies")
	require.True(t, ok)
	assert.Equal(t, []string{"EUR", "USD"}, list)

	b, ok := service.GetConfigurableBool(ctx, "DQ_AMOUNT_LIMIT", "strictMode")
	require.True(t, ok)
	assert.True(t, b)

	_, ok = service.GetConfigurableFloat(ctx, "DQ_AMOUNT_LIMIT", "missing")
	assert.False(t, ok)
	_, ok = service.GetConfigurableFloat(ctx, "UNKNOWN_RULE", "maxAmount")
	assert.False(t, ok)

	assert.True(t, service.HasActiveRule(ctx, "DQ_AMOUNT_LIMIT"))
	assert.False(t, service.HasActiveRule(ctx, "UNKNOWN_RULE"))
}

func TestBuildRuleContextKeys(t *testing.T) {
	e := rulesExposure()
	e.CounterpartyLEI = ""

	ctx := buildRuleContext(e)
	assert.Equal(t, "EXP-1", ctx["exposureId"])
	assert.Equal(t, "EXP-1", ctx["entity_id"])
	assert.Equal(t, "EXPOSURE", ctx["entity_type"])
	assert.Equal(t, 2_000_000.0, ctx["amount"])
	assert.Equal(t, "2026-03-31", ctx["reportingDate"])
	assert.Equal(t, true, ctx["isCorporateExposure"])
	assert.Equal(t, true, ctx["isTermExposure"])

	// 空串字段从上下文移除，REQUIRED 条件据此判定缺失
	_, present := ctx["leiCode"]
	assert.False(t, present)
	_, present = ctx["maturityDate"]
	assert.False(t, present)
}

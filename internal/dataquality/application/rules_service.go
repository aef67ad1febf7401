// 包 application 数据质量服务的应用层
package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// RulesValidationService 可配置规则校验桥接
// 从规则仓储加载数据库驱动的业务规则，对单条敞口求值并转换为校验错误。
// 单条规则执行失败只记录日志并跳过，不影响批次评估。
type RulesValidationService struct {
	rules  domain.BusinessRuleRepository
	logger *slog.Logger
}

// NewRulesValidationService 创建规则校验服务
func NewRulesValidationService(rules domain.BusinessRuleRepository, logger *slog.Logger) *RulesValidationService {
	return &RulesValidationService{rules: rules, logger: logger}
}

// ValidateConfigurableRules 执行全部启用的数据质量规则
func (s *RulesValidationService) ValidateConfigurableRules(ctx context.Context, exposure *domain.ExposureRecord) []domain.ValidationError {
	rules, err := s.rules.FindByTypeOrdered(ctx, domain.RuleTypeDataQuality)
	if err != nil {
		s.logger.Error("failed to load data quality rules", "error", err)
		return nil
	}
	return s.executeRules(ctx, rules, exposure)
}

// ValidateThresholdRules 执行 THRESHOLDS 类别的启用规则
func (s *RulesValidationService) ValidateThresholdRules(ctx context.Context, exposure *domain.ExposureRecord) []domain.ValidationError {
	rules, err := s.rules.FindByCategory(ctx, "THRESHOLDS")
	if err != nil {
		s.logger.Error("failed to load threshold rules", "error", err)
		return nil
	}
	return s.executeRules(ctx, rules, exposure)
}

func (s *RulesValidationService) executeRules(ctx context.Context, rules []*domain.BusinessRule, exposure *domain.ExposureRecord) []domain.ValidationError {
	if len(rules) == 0 {
		return nil
	}

	ruleCtx := buildRuleContext(exposure)
	now := time.Now()

	var errs []domain.ValidationError
	for _, rule := range rules {
		if !rule.IsApplicableOn(now) {
			continue
		}

		result, err := domain.ExecuteRule(rule, ruleCtx)
		if err != nil {
			s.logger.Error("rule execution failed, skipping",
				"rule_code", rule.RuleCode, "error", err)
			continue
		}
		if result.Success {
			continue
		}

		for _, v := range result.Violations {
			field, _ := v.Details["field"].(string)
			errs = append(errs, domain.ValidationError{
				Code:       v.Type,
				Message:    v.Description,
				Field:      field,
				Dimension:  rule.Dimension(),
				ExposureID: v.EntityID,
				Severity:   v.Severity.ToErrorSeverity(),
			})
		}
	}
	return errs
}

// GetConfigurableString 获取规则的字符串参数
func (s *RulesValidationService) GetConfigurableString(ctx context.Context, ruleCode, name string) (string, bool) {
	p, ok := s.parameter(ctx, ruleCode, name)
	if !ok {
		return "", false
	}
	return p.Value, true
}

// GetConfigurableFloat 获取规则的数值参数
func (s *RulesValidationService) GetConfigurableFloat(ctx context.Context, ruleCode, name string) (float64, bool) {
	p, ok := s.parameter(ctx, ruleCode, name)
	if !ok {
		return 0, false
	}
	return p.FloatValue()
}

// GetConfigurableBool 获取规则的布尔参数
func (s *RulesValidationService) GetConfigurableBool(ctx context.Context, ruleCode, name string) (bool, bool) {
	p, ok := s.parameter(ctx, ruleCode, name)
	if !ok {
		return false, false
	}
	return p.BoolValue()
}

// GetConfigurableList 获取规则的列表参数（逗号分隔）
func (s *RulesValidationService) GetConfigurableList(ctx context.Context, ruleCode, name string) ([]string, bool) {
	p, ok := s.parameter(ctx, ruleCode, name)
	if !ok || p.Type != domain.ParameterTypeList {
		return nil, false
	}
	return p.ListValue(), true
}

// HasActiveRule 规则是否存在且当前生效
func (s *RulesValidationService) HasActiveRule(ctx context.Context, ruleCode string) bool {
	rule, err := s.rules.FindByCode(ctx, ruleCode)
	if err != nil || rule == nil {
		return false
	}
	return rule.IsApplicableOn(time.Now())
}

func (s *RulesValidationService) parameter(ctx context.Context, ruleCode, name string) (domain.RuleParameter, bool) {
	rule, err := s.rules.FindByCode(ctx, ruleCode)
	if err != nil || rule == nil {
		return domain.RuleParameter{}, false
	}
	return rule.Parameter(name)
}

// buildRuleContext 将敞口字段映射为规则上下文
// 每个字段只保留一个规范键，避免别名带来的重复求值
func buildRuleContext(e *domain.ExposureRecord) domain.RuleContext {
	ctx := domain.RuleContext{
		"exposureId":          e.ExposureID,
		"currency":            e.Currency,
		"country":             e.CountryCode,
		"sector":              e.Sector,
		"counterpartyId":      e.CounterpartyID,
		"counterpartyType":    e.CounterpartyType,
		"leiCode":             e.CounterpartyLEI,
		"productType":         e.ProductType,
		"internalRating":      e.InternalRating,
		"riskCategory":        e.RiskCategory,
		"referenceNumber":     e.ReferenceNumber,
		"isCorporateExposure": e.IsCorporateExposure(),
		"isTermExposure":      e.IsTermExposure(),
		"entity_type":         "EXPOSURE",
		"entity_id":           e.ExposureID,
	}
	if e.ExposureAmount != nil {
		ctx["amount"] = e.ExposureAmount.InexactFloat64()
	}
	if e.RiskWeight != nil {
		ctx["riskWeight"] = e.RiskWeight.InexactFloat64()
	}
	if e.ReportingDate != nil {
		ctx["reportingDate"] = e.ReportingDate.Format("2006-01-02")
	}
	if e.ValuationDate != nil {
		ctx["valuationDate"] = e.ValuationDate.Format("2006-01-02")
	}
	if e.MaturityDate != nil {
		ctx["maturityDate"] = e.MaturityDate.Format("2006-01-02")
	}
	// 空串视为缺失，REQUIRED 条件据此判定
	for key, value := range ctx {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			delete(ctx, key)
		}
	}
	return ctx
}

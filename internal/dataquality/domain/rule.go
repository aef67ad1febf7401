package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRuleNotFound     = errors.New("business rule not found")
	ErrInvalidCondition = errors.New("invalid rule condition")
)

type RuleType string

const (
	RuleTypeDataQuality RuleType = "DATA_QUALITY"
	RuleTypeRegulatory  RuleType = "REGULATORY"
	RuleTypeThreshold   RuleType = "THRESHOLD"
)

type RuleSeverity string

const (
	RuleSeverityLow      RuleSeverity = "LOW"
	RuleSeverityMedium   RuleSeverity = "MEDIUM"
	RuleSeverityHigh     RuleSeverity = "HIGH"
	RuleSeverityCritical RuleSeverity = "CRITICAL"
)

// ToErrorSeverity 规则严重度到校验错误严重度的映射
func (s RuleSeverity) ToErrorSeverity() ErrorSeverity {
	switch s {
	case RuleSeverityLow:
		return SeverityLow
	case RuleSeverityMedium:
		return SeverityMedium
	default:
		return SeverityCritical
	}
}

type ParameterType string

const (
	ParameterTypeString  ParameterType = "STRING"
	ParameterTypeNumber  ParameterType = "NUMBER"
	ParameterTypeList    ParameterType = "LIST"
	ParameterTypeBoolean ParameterType = "BOOLEAN"
)

// RuleParameter 规则参数
type RuleParameter struct {
	gorm.Model
	// 所属规则 ID
	RuleID string `gorm:"column:rule_id;type:varchar(32);index;not null" json:"rule_id"`
	// 参数名
	Name string `gorm:"column:name;type:varchar(64);not null" json:"name"`
	// 参数值（LIST 类型为逗号分隔）
	Value string `gorm:"column:value;type:varchar(512);not null" json:"value"`
	// 参数类型
	Type ParameterType `gorm:"column:type;type:varchar(16);not null" json:"type"`
	// 单位
	Unit string `gorm:"column:unit;type:varchar(16)" json:"unit,omitempty"`
	// 说明
	Description string `gorm:"column:description;type:varchar(256)" json:"description,omitempty"`
	// 是否允许运行时调整
	Configurable bool `gorm:"column:configurable;default:false" json:"configurable"`
}

// FloatValue NUMBER 参数的数值
func (p RuleParameter) FloatValue() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BoolValue BOOLEAN 参数的布尔值
func (p RuleParameter) BoolValue() (bool, bool) {
	v, err := strconv.ParseBool(strings.TrimSpace(p.Value))
	if err != nil {
		return false, false
	}
	return v, true
}

// ListValue LIST 参数按逗号拆分
func (p RuleParameter) ListValue() []string {
	parts := strings.Split(p.Value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

// BusinessRule 可配置业务规则
// BusinessLogic 为条件表达式, 每行一条 "field op value", 全部成立才算通过
// 支持操作符: ==, !=, >, >=, <, <=, IN, NOT_IN, REQUIRED, MATCHES
type BusinessRule struct {
	gorm.Model
	// 规则 ID (业务主键)
	RuleID string `gorm:"column:rule_id;type:varchar(32);uniqueIndex;not null" json:"rule_id"`
	// 规则代码，全局唯一
	RuleCode string `gorm:"column:rule_code;type:varchar(64);uniqueIndex;not null" json:"rule_code"`
	// 规则名称
	RuleName string `gorm:"column:rule_name;type:varchar(128);not null" json:"rule_name"`
	// 说明
	Description string `gorm:"column:description;type:varchar(512)" json:"description,omitempty"`
	// 规则类型
	RuleType RuleType `gorm:"column:rule_type;type:varchar(32);index;not null" json:"rule_type"`
	// 规则类别，映射到质量维度
	RuleCategory string `gorm:"column:rule_category;type:varchar(32);index" json:"rule_category,omitempty"`
	// 严重度
	Severity RuleSeverity `gorm:"column:severity;type:varchar(16);not null" json:"severity"`
	// 条件表达式
	BusinessLogic string `gorm:"column:business_logic;type:text" json:"business_logic"`
	// 执行顺序，小的先执行
	ExecutionOrder int `gorm:"column:execution_order;default:0" json:"execution_order"`
	// 生效日期
	EffectiveDate *time.Time `gorm:"column:effective_date" json:"effective_date,omitempty"`
	// 失效日期
	ExpirationDate *time.Time `gorm:"column:expiration_date" json:"expiration_date,omitempty"`
	// 是否启用
	Enabled bool `gorm:"column:enabled;default:true;index" json:"enabled"`
	// 参数列表
	Parameters []RuleParameter `gorm:"foreignKey:RuleID;references:RuleID" json:"parameters,omitempty"`
}

// IsApplicableOn 规则在指定日期是否生效
func (r *BusinessRule) IsApplicableOn(date time.Time) bool {
	if !r.Enabled {
		return false
	}
	if r.EffectiveDate != nil && date.Before(*r.EffectiveDate) {
		return false
	}
	if r.ExpirationDate != nil && !date.Before(*r.ExpirationDate) {
		return false
	}
	return true
}

// Parameter 按名称查找参数
func (r *BusinessRule) Parameter(name string) (RuleParameter, bool) {
	for _, p := range r.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return RuleParameter{}, false
}

// Dimension 规则类别对应的质量维度，未知类别归入准确性
func (r *BusinessRule) Dimension() QualityDimension {
	switch strings.ToUpper(r.RuleCategory) {
	case "COMPLETENESS":
		return DimensionCompleteness
	case "CONSISTENCY":
		return DimensionConsistency
	case "TIMELINESS":
		return DimensionTimeliness
	case "UNIQUENESS":
		return DimensionUniqueness
	case "VALIDITY":
		return DimensionValidity
	default:
		return DimensionAccuracy
	}
}

// RuleContext 规则求值上下文，键为敞口字段的规范名
type RuleContext map[string]any

// RuleViolation 规则触发的违规
type RuleViolation struct {
	RuleCode    string         `json:"rule_code"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	EntityID    string         `json:"entity_id"`
	Severity    RuleSeverity   `json:"severity"`
	Details     map[string]any `json:"details,omitempty"`
}

// RuleExecutionResult 单条规则的执行结果
type RuleExecutionResult struct {
	RuleID     string          `json:"rule_id"`
	Success    bool            `json:"success"`
	Violations []RuleViolation `json:"violations,omitempty"`
}

// ExecuteRule 对上下文求值
// 任一条件不成立即产生违规；表达式解析失败返回错误，由调用方记录并跳过
func ExecuteRule(rule *BusinessRule, ctx RuleContext) (RuleExecutionResult, error) {
	result := RuleExecutionResult{RuleID: rule.RuleID, Success: true}

	for _, line := range strings.Split(rule.BusinessLogic, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cond, err := parseCondition(rule.substituteParameters(line))
		if err != nil {
			return RuleExecutionResult{}, err
		}

		ok, err := cond.evaluate(ctx)
		if err != nil {
			return RuleExecutionResult{}, err
		}
		if ok {
			continue
		}

		result.Success = false
		entityID, _ := ctx["entity_id"].(string)
		result.Violations = append(result.Violations, RuleViolation{
			RuleCode:    rule.RuleCode,
			Type:        rule.RuleCode,
			Description: violationDescription(rule, cond),
			EntityID:    entityID,
			Severity:    rule.Severity,
			Details:     map[string]any{"field": cond.Field, "condition": line},
		})
	}

	return result, nil
}

// substituteParameters 替换表达式中的 ${param} 占位符
func (r *BusinessRule) substituteParameters(expr string) string {
	if !strings.Contains(expr, "${") {
		return expr
	}
	for _, p := range r.Parameters {
		expr = strings.ReplaceAll(expr, "${"+p.Name+"}", p.Value)
	}
	return expr
}

func violationDescription(rule *BusinessRule, cond ruleCondition) string {
	if rule.Description != "" {
		return rule.Description
	}
	return fmt.Sprintf("condition failed: %s %s %s", cond.Field, cond.Operator, cond.Value)
}

type ruleCondition struct {
	Field    string
	Operator string
	Value    string
}

func parseCondition(line string) (ruleCondition, error) {
	parts := strings.Fields(line)
	if len(parts) == 2 && strings.EqualFold(parts[1], "REQUIRED") {
		return ruleCondition{Field: parts[0], Operator: "REQUIRED"}, nil
	}
	if len(parts) < 3 {
		return ruleCondition{}, fmt.Errorf("%w: %q", ErrInvalidCondition, line)
	}
	return ruleCondition{
		Field:    parts[0],
		Operator: strings.ToUpper(parts[1]),
		Value:    strings.Join(parts[2:], " "),
	}, nil
}

func (c ruleCondition) evaluate(ctx RuleContext) (bool, error) {
	actual, present := ctx[c.Field]

	switch c.Operator {
	case "REQUIRED":
		return present && !isEmptyValue(actual), nil
	case "==":
		return present && compareEqual(actual, c.Value), nil
	case "!=":
		return !present || !compareEqual(actual, c.Value), nil
	case ">", ">=", "<", "<=":
		if !present {
			return false, nil
		}
		av, ok := toFloat(actual)
		if !ok {
			return false, nil
		}
		ev, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
		if err != nil {
			return false, fmt.Errorf("%w: non-numeric comparison value %q", ErrInvalidCondition, c.Value)
		}
		switch c.Operator {
		case ">":
			return av > ev, nil
		case ">=":
			return av >= ev, nil
		case "<":
			return av < ev, nil
		default:
			return av <= ev, nil
		}
	case "IN", "NOT_IN":
		in := false
		if present {
			for _, candidate := range strings.Split(strings.Trim(c.Value, "[]"), ",") {
				if compareEqual(actual, strings.TrimSpace(candidate)) {
					in = true
					break
				}
			}
		}
		if c.Operator == "IN" {
			return in, nil
		}
		return !in, nil
	case "MATCHES":
		s, ok := actual.(string)
		return present && ok && matchesPattern(s, c.Value), nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, c.Operator)
	}
}

// matchesPattern 简化的通配符匹配，支持前后缀 *
func matchesPattern(s, pattern string) bool {
	switch {
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
		return strings.Contains(s, strings.Trim(pattern, "*"))
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(s, strings.TrimPrefix(pattern, "*"))
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(s, strings.TrimSuffix(pattern, "*"))
	default:
		return s == pattern
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func compareEqual(actual any, expected string) bool {
	if av, ok := toFloat(actual); ok {
		if ev, err := strconv.ParseFloat(strings.TrimSpace(expected), 64); err == nil {
			return av == ev
		}
	}
	return fmt.Sprintf("%v", actual) == expected
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case interface{ InexactFloat64() float64 }:
		return t.InexactFloat64(), true
	default:
		return 0, false
	}
}

// BusinessRuleRepository 业务规则仓储接口
type BusinessRuleRepository interface {
	// FindEnabled 返回全部启用规则（含参数）
	FindEnabled(ctx context.Context) ([]*BusinessRule, error)
	// FindByCode 按规则代码查找
	FindByCode(ctx context.Context, ruleCode string) (*BusinessRule, error)
	// FindByTypeOrdered 按类型返回启用规则，按执行顺序排序
	FindByTypeOrdered(ctx context.Context, ruleType RuleType) ([]*BusinessRule, error)
	// FindByCategory 按类别返回启用规则
	FindByCategory(ctx context.Context, category string) ([]*BusinessRule, error)
	// Save 保存或更新规则
	Save(ctx context.Context, rule *BusinessRule) error
	// SetEnabled 启用或停用规则
	SetEnabled(ctx context.Context, ruleCode string, enabled bool) error
}

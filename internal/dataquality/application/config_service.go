package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// RuleCacheInvalidator 规则缓存失效接口，由基础设施层的缓存装饰器实现
type RuleCacheInvalidator interface {
	InvalidateRules(ctx context.Context) error
}

// ConfigurationService 银行质量配置与规则管理
type ConfigurationService struct {
	configs     domain.QualityConfigRepository
	rules       domain.BusinessRuleRepository
	invalidator RuleCacheInvalidator
	logger      *slog.Logger
}

// NewConfigurationService 创建配置服务
func NewConfigurationService(
	configs domain.QualityConfigRepository,
	rules domain.BusinessRuleRepository,
	invalidator RuleCacheInvalidator,
	logger *slog.Logger,
) *ConfigurationService {
	return &ConfigurationService{
		configs:     configs,
		rules:       rules,
		invalidator: invalidator,
		logger:      logger,
	}
}

// GetConfig 获取银行配置，无记录时返回默认配置
func (s *ConfigurationService) GetConfig(ctx context.Context, bankID string) (*domain.QualityConfig, error) {
	config, err := s.configs.Get(ctx, bankID)
	if errors.Is(err, domain.ErrConfigNotFound) {
		return domain.DefaultQualityConfig(bankID), nil
	}
	if err != nil {
		return nil, err
	}
	return config, nil
}

// UpdateConfig 更新银行配置，权重校验失败则拒绝
func (s *ConfigurationService) UpdateConfig(ctx context.Context, cmd UpdateQualityConfigCommand) (*domain.QualityConfig, error) {
	if err := cmd.Weights.Validate(); err != nil {
		return nil, err
	}

	config, err := s.configs.Get(ctx, cmd.BankID)
	if errors.Is(err, domain.ErrConfigNotFound) {
		config = domain.DefaultQualityConfig(cmd.BankID)
	} else if err != nil {
		return nil, err
	}

	config.Weights = cmd.Weights
	if cmd.TimelinessThresholdDays > 0 {
		config.TimelinessThresholdDays = cmd.TimelinessThresholdDays
	}
	if cmd.ComplianceMinimum > 0 {
		config.ComplianceMinimum = cmd.ComplianceMinimum
	}

	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}
	s.logger.Info("quality config updated", "bank_id", cmd.BankID)
	return config, nil
}

// ListRules 返回全部启用规则
func (s *ConfigurationService) ListRules(ctx context.Context) ([]*domain.BusinessRule, error) {
	return s.rules.FindEnabled(ctx)
}

// SetRuleEnabled 启用或停用规则，并使规则缓存失效
func (s *ConfigurationService) SetRuleEnabled(ctx context.Context, ruleCode string, enabled bool) error {
	if err := s.rules.SetEnabled(ctx, ruleCode, enabled); err != nil {
		return err
	}
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateRules(ctx); err != nil {
			s.logger.Error("failed to invalidate rule cache", "error", err)
		}
	}
	s.logger.Info("business rule toggled", "rule_code", ruleCode, "enabled", enabled)
	return nil
}

package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// businessRuleRepository 业务规则仓储实现
type businessRuleRepository struct {
	db *gorm.DB
}

// NewBusinessRuleRepository 创建业务规则仓储
func NewBusinessRuleRepository(db *gorm.DB) domain.BusinessRuleRepository {
	return &businessRuleRepository{db: db}
}

// FindEnabled 返回全部启用规则（含参数）
func (r *businessRuleRepository) FindEnabled(ctx context.Context) ([]*domain.BusinessRule, error) {
	var rules []*domain.BusinessRule
	err := r.db.WithContext(ctx).
		Preload("Parameters").
		Where("enabled = ?", true).
		Order("execution_order ASC, rule_code ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// FindByCode 按规则代码查找
func (r *businessRuleRepository) FindByCode(ctx context.Context, ruleCode string) (*domain.BusinessRule, error) {
	var rule domain.BusinessRule
	err := r.db.WithContext(ctx).
		Preload("Parameters").
		Where("rule_code = ?", ruleCode).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// FindByTypeOrdered 按类型返回启用规则，按执行顺序排序
func (r *businessRuleRepository) FindByTypeOrdered(ctx context.Context, ruleType domain.RuleType) ([]*domain.BusinessRule, error) {
	var rules []*domain.BusinessRule
	err := r.db.WithContext(ctx).
		Preload("Parameters").
		Where("rule_type = ? AND enabled = ?", ruleType, true).
		Order("execution_order ASC, rule_code ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// FindByCategory 按类别返回启用规则
func (r *businessRuleRepository) FindByCategory(ctx context.Context, category string) ([]*domain.BusinessRule, error) {
	var rules []*domain.BusinessRule
	err := r.db.WithContext(ctx).
		Preload("Parameters").
		Where("rule_category = ? AND enabled = ?", category, true).
		Order("execution_order ASC, rule_code ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// Save 保存或更新规则（含参数整体替换）
func (r *businessRuleRepository) Save(ctx context.Context, rule *domain.BusinessRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rule.ID != 0 {
			if err := tx.Where("rule_id = ?", rule.RuleID).Delete(&domain.RuleParameter{}).Error; err != nil {
				return err
			}
		}
		return tx.Save(rule).Error
	})
}

// SetEnabled 启用或停用规则
func (r *businessRuleRepository) SetEnabled(ctx context.Context, ruleCode string, enabled bool) error {
	result := r.db.WithContext(ctx).Model(&domain.BusinessRule{}).
		Where("rule_code = ?", ruleCode).
		Update("enabled", enabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

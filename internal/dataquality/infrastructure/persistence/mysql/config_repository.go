package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// qualityConfigRepository 银行质量配置仓储实现
type qualityConfigRepository struct {
	db *gorm.DB
}

// NewQualityConfigRepository 创建质量配置仓储
func NewQualityConfigRepository(db *gorm.DB) domain.QualityConfigRepository {
	return &qualityConfigRepository{db: db}
}

// Get 获取银行配置
func (r *qualityConfigRepository) Get(ctx context.Context, bankID string) (*domain.QualityConfig, error) {
	var config domain.QualityConfig
	err := r.db.WithContext(ctx).
		Where("bank_id = ?", bankID).
		First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Save 保存或更新配置
func (r *qualityConfigRepository) Save(ctx context.Context, config *domain.QualityConfig) error {
	if config.ID != 0 {
		return r.db.WithContext(ctx).Save(config).Error
	}

	var existing domain.QualityConfig
	err := r.db.WithContext(ctx).Where("bank_id = ?", config.BankID).First(&existing).Error
	if err == nil {
		config.ID = existing.ID
		config.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(config).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.WithContext(ctx).Create(config).Error
}

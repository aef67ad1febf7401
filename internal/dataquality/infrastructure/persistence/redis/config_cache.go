package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

const configKeyPrefix = "dataquality:config:"

// DefaultConfigCacheTTL 银行配置缓存的默认有效期
const DefaultConfigCacheTTL = 5 * time.Minute

// cachedConfigRepository 银行质量配置的 Redis 读穿缓存
type cachedConfigRepository struct {
	inner domain.QualityConfigRepository
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedConfigRepository 创建带缓存的配置仓储
func NewCachedConfigRepository(inner domain.QualityConfigRepository, rdb *redis.Client, ttl time.Duration) domain.QualityConfigRepository {
	if ttl <= 0 {
		ttl = DefaultConfigCacheTTL
	}
	return &cachedConfigRepository{inner: inner, rdb: rdb, ttl: ttl}
}

// Get 读穿缓存，未找到的配置不缓存
func (r *cachedConfigRepository) Get(ctx context.Context, bankID string) (*domain.QualityConfig, error) {
	key := configKeyPrefix + bankID

	if r.rdb != nil {
		if data, err := r.rdb.Get(ctx, key).Bytes(); err == nil {
			var config domain.QualityConfig
			if err := json.Unmarshal(data, &config); err == nil {
				return &config, nil
			}
		}
	}

	config, err := r.inner.Get(ctx, bankID)
	if err != nil {
		return nil, err
	}

	if r.rdb != nil {
		if data, err := json.Marshal(config); err == nil {
			_ = r.rdb.Set(ctx, key, data, r.ttl).Err()
		}
	}
	return config, nil
}

// Save 写库后使缓存失效
func (r *cachedConfigRepository) Save(ctx context.Context, config *domain.QualityConfig) error {
	if err := r.inner.Save(ctx, config); err != nil {
		return err
	}
	if r.rdb != nil {
		_ = r.rdb.Del(ctx, configKeyPrefix+config.BankID).Err()
	}
	return nil
}

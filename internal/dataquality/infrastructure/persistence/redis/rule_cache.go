// 包 redis 规则与配置的缓存装饰器
package redis

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

const enabledRulesKey = "dataquality:rules:enabled"

// DefaultRuleCacheTTL 规则缓存的默认有效期
const DefaultRuleCacheTTL = 60 * time.Second

// CachedRuleRepository 业务规则仓储的两级缓存装饰器
// 进程内 TTL 缓存避免每条敞口都查库，Redis 作为跨实例的二级缓存。
// 同时实现 domain.BusinessRuleRepository 与应用层的缓存失效接口。
type CachedRuleRepository struct {
	inner domain.BusinessRuleRepository
	rdb   *redis.Client
	ttl   time.Duration

	mu          sync.Mutex
	cached      []*domain.BusinessRule
	lastRefresh time.Time
}

// NewCachedRuleRepository 创建带缓存的规则仓储
func NewCachedRuleRepository(inner domain.BusinessRuleRepository, rdb *redis.Client, ttl time.Duration) *CachedRuleRepository {
	if ttl <= 0 {
		ttl = DefaultRuleCacheTTL
	}
	return &CachedRuleRepository{inner: inner, rdb: rdb, ttl: ttl}
}

// FindEnabled 返回全部启用规则，优先走缓存
func (r *CachedRuleRepository) FindEnabled(ctx context.Context) ([]*domain.BusinessRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.cached) > 0 && time.Since(r.lastRefresh) < r.ttl {
		return r.cached, nil
	}

	if rules, ok := r.loadFromRedis(ctx); ok {
		r.cached = rules
		r.lastRefresh = time.Now()
		return rules, nil
	}

	rules, err := r.inner.FindEnabled(ctx)
	if err != nil {
		return nil, err
	}
	r.cached = rules
	r.lastRefresh = time.Now()
	r.storeToRedis(ctx, rules)
	return rules, nil
}

// FindByCode 优先在缓存的启用规则里找，未命中回源
func (r *CachedRuleRepository) FindByCode(ctx context.Context, ruleCode string) (*domain.BusinessRule, error) {
	rules, err := r.FindEnabled(ctx)
	if err == nil {
		for _, rule := range rules {
			if rule.RuleCode == ruleCode {
				return rule, nil
			}
		}
	}
	return r.inner.FindByCode(ctx, ruleCode)
}

// FindByTypeOrdered 从缓存的启用规则中按类型过滤
func (r *CachedRuleRepository) FindByTypeOrdered(ctx context.Context, ruleType domain.RuleType) ([]*domain.BusinessRule, error) {
	rules, err := r.FindEnabled(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.BusinessRule
	for _, rule := range rules {
		if rule.RuleType == ruleType {
			out = append(out, rule)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExecutionOrder < out[j].ExecutionOrder
	})
	return out, nil
}

// FindByCategory 从缓存的启用规则中按类别过滤
func (r *CachedRuleRepository) FindByCategory(ctx context.Context, category string) ([]*domain.BusinessRule, error) {
	rules, err := r.FindEnabled(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.BusinessRule
	for _, rule := range rules {
		if rule.RuleCategory == category {
			out = append(out, rule)
		}
	}
	return out, nil
}

// Save 保存规则并使缓存失效
func (r *CachedRuleRepository) Save(ctx context.Context, rule *domain.BusinessRule) error {
	if err := r.inner.Save(ctx, rule); err != nil {
		return err
	}
	return r.InvalidateRules(ctx)
}

// SetEnabled 切换规则状态并使缓存失效
func (r *CachedRuleRepository) SetEnabled(ctx context.Context, ruleCode string, enabled bool) error {
	if err := r.inner.SetEnabled(ctx, ruleCode, enabled); err != nil {
		return err
	}
	return r.InvalidateRules(ctx)
}

// InvalidateRules 清空进程内缓存与 Redis 缓存
func (r *CachedRuleRepository) InvalidateRules(ctx context.Context) error {
	r.mu.Lock()
	r.cached = nil
	r.lastRefresh = time.Time{}
	r.mu.Unlock()

	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, enabledRulesKey).Err()
}

func (r *CachedRuleRepository) loadFromRedis(ctx context.Context) ([]*domain.BusinessRule, bool) {
	if r.rdb == nil {
		return nil, false
	}
	data, err := r.rdb.Get(ctx, enabledRulesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var rules []*domain.BusinessRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, false
	}
	return rules, true
}

func (r *CachedRuleRepository) storeToRedis(ctx context.Context, rules []*domain.BusinessRule) {
	if r.rdb == nil {
		return
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return
	}
	// 写入失败只影响跨实例命中率，不影响正确性
	_ = r.rdb.Set(ctx, enabledRulesKey, data, r.ttl).Err()
}

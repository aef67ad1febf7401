// 包 messaging 质量报告领域事件的 Outbox 发布
package messaging

import (
	"context"
	"fmt"

	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"gorm.io/gorm"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// outboxPublisher 将报告生命周期事件写入 Outbox 表
type outboxPublisher struct {
	manager *outbox.Manager
}

// NewOutboxPublisher 创建质量报告事件发布者
func NewOutboxPublisher(manager *outbox.Manager) domain.EventPublisher {
	return &outboxPublisher{manager: manager}
}

// Publish 在事务外发布事件，用于无聚合保存的通知场景
func (p *outboxPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.manager.PublishInTx(ctx, p.manager.DB(), topic, key, event)
}

// PublishInTx 与报告保存同事务写入事件，保证状态与事件一致
func (p *outboxPublisher) PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error {
	gormTx, ok := tx.(*gorm.DB)
	if !ok {
		return fmt.Errorf("tx must be *gorm.DB, got %T", tx)
	}
	return p.manager.PublishInTx(ctx, gormTx, topic, key, event)
}

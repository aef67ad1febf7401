// 包 events 批次接入事件的 Kafka 消费
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/wyfcoding/pkg/messagequeue/kafka"

	"github.com/wyfcoding/regtech/internal/dataquality/application"
	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// BatchIngestedTopic 上游批次接入完成的事件主题
const BatchIngestedTopic = "exposure.batch.ingested"

// batchIngestedEvent 上游事件的载荷
type batchIngestedEvent struct {
	BatchID       string                   `json:"batch_id"`
	BankID        string                   `json:"bank_id"`
	Exposures     []*domain.ExposureRecord `json:"exposures"`
	CrmRecords    []*domain.CrmRecord      `json:"crm_records,omitempty"`
	ReportedCount *int                     `json:"reported_count,omitempty"`
	UploadedAt    time.Time                `json:"uploaded_at"`
	ReportingDate *time.Time               `json:"reporting_date,omitempty"`
}

// BatchEventHandler 消费批次接入事件并触发质量评估
type BatchEventHandler struct {
	service *application.QualityCommandService
	logger  *slog.Logger
}

// NewBatchEventHandler 创建事件处理器
func NewBatchEventHandler(service *application.QualityCommandService, logger *slog.Logger) *BatchEventHandler {
	return &BatchEventHandler{service: service, logger: logger}
}

// HandleBatchIngested 处理单条批次接入消息
// 评估是幂等的，消息重投不会产出重复的终态报告
func (h *BatchEventHandler) HandleBatchIngested(ctx context.Context, msg kafkago.Message) error {
	var event batchIngestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("failed to decode batch ingested event",
			"topic", msg.Topic, "offset", msg.Offset, "error", err)
		// 坏消息不重投
		return nil
	}

	reportedCount := -1
	if event.ReportedCount != nil {
		reportedCount = *event.ReportedCount
	}
	uploadDate := event.UploadedAt
	if uploadDate.IsZero() {
		uploadDate = msg.Time
	}

	report, err := h.service.ValidateBatchQuality(ctx, application.ValidateBatchQualityCommand{
		BatchID:       event.BatchID,
		BankID:        event.BankID,
		Exposures:     event.Exposures,
		CrmRecords:    event.CrmRecords,
		ReportedCount: reportedCount,
		UploadDate:    uploadDate,
		ReportingDate: event.ReportingDate,
	})
	if err != nil {
		return err
	}

	h.logger.Info("processed batch ingested event",
		"batch_id", event.BatchID, "report_id", report.ReportID, "status", report.Status)
	return nil
}

// Subscribe 启动消费
func (h *BatchEventHandler) Subscribe(ctx context.Context, consumer *kafka.Consumer) {
	consumer.Start(ctx, 1, h.HandleBatchIngested)
}

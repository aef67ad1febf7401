package domain

import (
	"context"
	"time"
)

// 领域事件类型，同时作为 outbox 消息的 topic key
const (
	EventTypeValidationStarted   = "dataquality.validation.started"
	EventTypeResultsRecorded     = "dataquality.results.recorded"
	EventTypeScoresCalculated    = "dataquality.scores.calculated"
	EventTypeValidationCompleted = "dataquality.validation.completed"
	EventTypeValidationFailed    = "dataquality.validation.failed"
)

// DomainEvent 聚合缓冲的领域事件
type DomainEvent struct {
	Type    string `json:"type"`
	Key     string `json:"key"`
	Payload any    `json:"payload"`
}

type ValidationStartedEvent struct {
	ReportID  string    `json:"report_id"`
	BatchID   string    `json:"batch_id"`
	BankID    string    `json:"bank_id"`
	StartedAt time.Time `json:"started_at"`
}

type ResultsRecordedEvent struct {
	ReportID       string `json:"report_id"`
	BatchID        string `json:"batch_id"`
	TotalExposures int    `json:"total_exposures"`
	ValidExposures int    `json:"valid_exposures"`
	TotalErrors    int    `json:"total_errors"`
}

type ScoresCalculatedEvent struct {
	ReportID     string       `json:"report_id"`
	BatchID      string       `json:"batch_id"`
	OverallScore float64      `json:"overall_score"`
	Grade        QualityGrade `json:"grade"`
	Compliant    bool         `json:"compliant"`
}

type ValidationCompletedEvent struct {
	ReportID     string       `json:"report_id"`
	BatchID      string       `json:"batch_id"`
	BankID       string       `json:"bank_id"`
	OverallScore float64      `json:"overall_score"`
	Grade        QualityGrade `json:"grade"`
	Compliant    bool         `json:"compliant"`
	DurationMs   int64        `json:"duration_ms"`
	CompletedAt  time.Time    `json:"completed_at"`
}

type ValidationFailedEvent struct {
	ReportID string    `json:"report_id"`
	BatchID  string    `json:"batch_id"`
	BankID   string    `json:"bank_id"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	// Publish 直接发布
	Publish(ctx context.Context, topic, key string, event any) error
	// PublishInTx 在数据库事务内通过 outbox 发布
	PublishInTx(ctx context.Context, tx any, topic, key string, event any) error
}

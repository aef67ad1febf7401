package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrInvalidStateTransition = errors.New("INVALID_STATE_TRANSITION")
	ErrScoresNotCalculated    = errors.New("SCORES_NOT_CALCULATED")
	ErrDetailsNotStored       = errors.New("DETAILS_NOT_STORED")
	ErrErrorMessageRequired   = errors.New("ERROR_MESSAGE_REQUIRED")
	ErrReportNotFound         = errors.New("quality report not found")
)

type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusInProgress ReportStatus = "IN_PROGRESS"
	ReportStatusCompleted  ReportStatus = "COMPLETED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// IsTerminal 终态不允许任何状态迁移
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusCompleted || s == ReportStatusFailed
}

// QualityReport 质量评估报告聚合根
// 驱动一次批次评估的生命周期: PENDING -> IN_PROGRESS -> COMPLETED / FAILED
type QualityReport struct {
	gorm.Model
	// 报告 ID (业务主键)
	ReportID string `gorm:"column:report_id;type:varchar(32);uniqueIndex;not null" json:"report_id"`
	// 批次 ID，同一批次只产出一份终态报告
	BatchID string `gorm:"column:batch_id;type:varchar(64);index;not null" json:"batch_id"`
	// 银行 ID
	BankID string `gorm:"column:bank_id;type:varchar(32);index;not null" json:"bank_id"`
	// 生命周期状态
	Status ReportStatus `gorm:"column:status;type:varchar(16);index;not null" json:"status"`
	// 校验汇总
	Summary *ValidationSummary `gorm:"column:summary;serializer:json" json:"summary,omitempty"`
	// 质量评分
	Scores *QualityScores `gorm:"column:scores;serializer:json" json:"scores,omitempty"`
	// 错误明细文档引用 (dq:// URI)
	DetailsReference string `gorm:"column:details_reference;type:varchar(256)" json:"details_reference,omitempty"`
	// 失败原因
	ErrorMessage string `gorm:"column:error_message;type:varchar(512)" json:"error_message,omitempty"`
	// 处理起止时间与耗时
	ProcessingStartTime *time.Time `gorm:"column:processing_start_time" json:"processing_start_time,omitempty"`
	ProcessingEndTime   *time.Time `gorm:"column:processing_end_time" json:"processing_end_time,omitempty"`
	DurationMs          int64      `gorm:"column:duration_ms;default:0" json:"duration_ms"`
	// 乐观锁版本号
	Version int `gorm:"column:version;default:0" json:"version"`

	events []DomainEvent `gorm:"-"`
}

// NewQualityReport 创建待处理报告
func NewQualityReport(reportID, batchID, bankID string) *QualityReport {
	return &QualityReport{
		ReportID: reportID,
		BatchID:  batchID,
		BankID:   bankID,
		Status:   ReportStatusPending,
	}
}

// StartValidation PENDING -> IN_PROGRESS
func (r *QualityReport) StartValidation(now time.Time) error {
	if r.Status != ReportStatusPending {
		return fmt.Errorf("%w: cannot start validation from %s", ErrInvalidStateTransition, r.Status)
	}
	r.Status = ReportStatusInProgress
	r.ProcessingStartTime = &now
	r.record(EventTypeValidationStarted, ValidationStartedEvent{
		ReportID:  r.ReportID,
		BatchID:   r.BatchID,
		BankID:    r.BankID,
		StartedAt: now,
	})
	return nil
}

// RecordResults 记录校验汇总，仅 IN_PROGRESS 可调用
func (r *QualityReport) RecordResults(summary ValidationSummary) error {
	if r.Status != ReportStatusInProgress {
		return fmt.Errorf("%w: cannot record results from %s", ErrInvalidStateTransition, r.Status)
	}
	r.Summary = &summary
	r.record(EventTypeResultsRecorded, ResultsRecordedEvent{
		ReportID:       r.ReportID,
		BatchID:        r.BatchID,
		TotalExposures: summary.TotalExposures,
		ValidExposures: summary.ValidExposures,
		TotalErrors:    summary.TotalErrors,
	})
	return nil
}

// CanCalculateScores 评分前置条件: IN_PROGRESS 且已有校验汇总
func (r *QualityReport) CanCalculateScores() bool {
	return r.Status == ReportStatusInProgress && r.Summary != nil
}

// CalculateScores 记录评分结果
func (r *QualityReport) CalculateScores(scores QualityScores) error {
	if !r.CanCalculateScores() {
		return fmt.Errorf("%w: results must be recorded before scores (status %s)", ErrInvalidStateTransition, r.Status)
	}
	r.Scores = &scores
	r.record(EventTypeScoresCalculated, ScoresCalculatedEvent{
		ReportID:     r.ReportID,
		BatchID:      r.BatchID,
		OverallScore: scores.Overall,
		Grade:        scores.Grade,
		Compliant:    scores.Compliant,
	})
	return nil
}

// StoreDetailsReference 记录错误明细文档引用
func (r *QualityReport) StoreDetailsReference(uri string) error {
	if r.Status != ReportStatusInProgress {
		return fmt.Errorf("%w: cannot store details from %s", ErrInvalidStateTransition, r.Status)
	}
	r.DetailsReference = uri
	return nil
}

// CompleteValidation 完成评估
// 要求评分与明细引用均已就绪，记录处理耗时
func (r *QualityReport) CompleteValidation(now time.Time) error {
	if r.Status != ReportStatusInProgress {
		return fmt.Errorf("%w: cannot complete from %s", ErrInvalidStateTransition, r.Status)
	}
	if r.Scores == nil {
		return fmt.Errorf("%w: scores must be calculated before completion", ErrScoresNotCalculated)
	}
	if r.DetailsReference == "" {
		return fmt.Errorf("%w: details reference must be stored before completion", ErrDetailsNotStored)
	}
	r.Status = ReportStatusCompleted
	r.ProcessingEndTime = &now
	if r.ProcessingStartTime != nil {
		r.DurationMs = now.Sub(*r.ProcessingStartTime).Milliseconds()
	}
	r.record(EventTypeValidationCompleted, ValidationCompletedEvent{
		ReportID:     r.ReportID,
		BatchID:      r.BatchID,
		BankID:       r.BankID,
		OverallScore: r.Scores.Overall,
		Grade:        r.Scores.Grade,
		Compliant:    r.Scores.Compliant,
		DurationMs:   r.DurationMs,
		CompletedAt:  now,
	})
	return nil
}

// MarkAsFailed 标记失败，终态拒绝，必须给出原因
func (r *QualityReport) MarkAsFailed(message string, now time.Time) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: failure message must not be blank", ErrErrorMessageRequired)
	}
	if r.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot fail from %s", ErrInvalidStateTransition, r.Status)
	}
	r.Status = ReportStatusFailed
	r.ErrorMessage = message
	r.ProcessingEndTime = &now
	if r.ProcessingStartTime != nil {
		r.DurationMs = now.Sub(*r.ProcessingStartTime).Milliseconds()
	}
	r.record(EventTypeValidationFailed, ValidationFailedEvent{
		ReportID: r.ReportID,
		BatchID:  r.BatchID,
		BankID:   r.BankID,
		Reason:   message,
		FailedAt: now,
	})
	return nil
}

func (r *QualityReport) record(eventType string, payload any) {
	r.events = append(r.events, DomainEvent{Type: eventType, Key: r.ReportID, Payload: payload})
}

// DrainEvents 取出并清空缓冲的领域事件
func (r *QualityReport) DrainEvents() []DomainEvent {
	events := r.events
	r.events = nil
	return events
}

// QualityReportRepository 质量报告仓储接口
type QualityReportRepository interface {
	// Save 保存或更新报告（乐观锁）
	Save(ctx context.Context, report *QualityReport) error
	// Get 根据报告 ID 获取
	Get(ctx context.Context, reportID string) (*QualityReport, error)
	// GetByBatch 根据批次 ID 获取最新报告
	GetByBatch(ctx context.Context, batchID string) (*QualityReport, error)
	// ListCompleted 按银行与时间区间返回已完成报告，按完成时间升序
	ListCompleted(ctx context.Context, bankID string, from, to time.Time) ([]*QualityReport, error)
	// WithTx 在单个数据库事务内执行 fn
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

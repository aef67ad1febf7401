// 包 mysql 数据质量服务的 MySQL 仓储实现
package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

var ErrVersionConflict = errors.New("optimistic lock version conflict")

// qualityReportRepository 质量报告仓储实现
type qualityReportRepository struct {
	db *gorm.DB
}

// NewQualityReportRepository 创建质量报告仓储
func NewQualityReportRepository(db *gorm.DB) domain.QualityReportRepository {
	return &qualityReportRepository{db: db}
}

func (r *qualityReportRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

func (r *qualityReportRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.GetTx(ctx); tx != nil {
		if gormTx, ok := tx.(*gorm.DB); ok {
			return gormTx
		}
	}
	return r.db
}

// Save 保存报告（带乐观锁）
func (r *qualityReportRepository) Save(ctx context.Context, report *domain.QualityReport) error {
	db := r.getDB(ctx)

	if report.ID == 0 {
		return db.WithContext(ctx).Create(report).Error
	}

	currentVersion := report.Version
	report.Version = currentVersion + 1
	result := db.WithContext(ctx).Model(&domain.QualityReport{}).
		Where("report_id = ? AND version = ?", report.ReportID, currentVersion).
		Updates(map[string]any{
			"status":                report.Status,
			"summary":               report.Summary,
			"scores":                report.Scores,
			"details_reference":     report.DetailsReference,
			"error_message":         report.ErrorMessage,
			"processing_start_time": report.ProcessingStartTime,
			"processing_end_time":   report.ProcessingEndTime,
			"duration_ms":           report.DurationMs,
			"version":               report.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// Get 按报告 ID 查询
func (r *qualityReportRepository) Get(ctx context.Context, reportID string) (*domain.QualityReport, error) {
	var report domain.QualityReport
	err := r.getDB(ctx).WithContext(ctx).
		Where("report_id = ?", reportID).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByBatch 按批次 ID 查询最新报告
func (r *qualityReportRepository) GetByBatch(ctx context.Context, batchID string) (*domain.QualityReport, error) {
	var report domain.QualityReport
	err := r.getDB(ctx).WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("id DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListCompleted 按银行与时间区间返回已完成报告，按完成时间升序
func (r *qualityReportRepository) ListCompleted(ctx context.Context, bankID string, from, to time.Time) ([]*domain.QualityReport, error) {
	var reports []*domain.QualityReport
	err := r.getDB(ctx).WithContext(ctx).
		Where("bank_id = ? AND status = ?", bankID, domain.ReportStatusCompleted).
		Where("processing_end_time >= ? AND processing_end_time <= ?", from, to).
		Order("processing_end_time ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

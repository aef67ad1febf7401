package application

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// QualityQueryService 质量报告与趋势查询服务
type QualityQueryService struct {
	reports domain.QualityReportRepository
	storage domain.ResultsStorage
	logger  *slog.Logger
}

// NewQualityQueryService 创建查询服务
func NewQualityQueryService(reports domain.QualityReportRepository, storage domain.ResultsStorage, logger *slog.Logger) *QualityQueryService {
	return &QualityQueryService{reports: reports, storage: storage, logger: logger}
}

// GetReport 按报告 ID 查询
func (s *QualityQueryService) GetReport(ctx context.Context, reportID string) (*domain.QualityReport, error) {
	return s.reports.Get(ctx, reportID)
}

// GetReportByBatch 按批次 ID 查询最新报告
func (s *QualityQueryService) GetReportByBatch(ctx context.Context, batchID string) (*domain.QualityReport, error) {
	return s.reports.GetByBatch(ctx, batchID)
}

// GetErrorDetails 按报告加载错误明细文档
func (s *QualityQueryService) GetErrorDetails(ctx context.Context, reportID string) (*domain.ValidationResult, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.DetailsReference == "" {
		return nil, domain.ErrDetailsNotStored
	}
	return s.storage.Load(ctx, report.DetailsReference)
}

// GetQualityTrends 按银行与时间区间计算质量趋势
func (s *QualityQueryService) GetQualityTrends(ctx context.Context, query TrendsQuery) (*domain.QualityTrends, error) {
	reports, err := s.reports.ListCompleted(ctx, query.BankID, query.From, query.To)
	if err != nil {
		return nil, err
	}

	trends := domain.ComputeTrends(query.BankID, query.From, query.To, reports)
	s.logger.Debug("computed quality trends",
		"bank_id", query.BankID, "points", len(trends.Points), "direction", trends.Direction)
	return &trends, nil
}

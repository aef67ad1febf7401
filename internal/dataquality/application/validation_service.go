package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// parallelThreshold 低于该敞口数时走顺序校验，避免小批次的并发开销
const parallelThreshold = 1000

// validationChunkSize 并发校验时每个任务处理的敞口数
const validationChunkSize = 250

// maxValidationWorkers 并发校验的最大 goroutine 数
const maxValidationWorkers = 8

// QualityCommandService 批次质量评估命令服务
// 编排维度校验、规则执行、评分与报告生命周期，写操作统一走 MySQL + Outbox。
type QualityCommandService struct {
	reports   domain.QualityReportRepository
	configs   domain.QualityConfigRepository
	rules     *RulesValidationService
	storage   domain.ResultsStorage
	publisher domain.EventPublisher
	logger    *slog.Logger
}

// NewQualityCommandService 创建命令服务
func NewQualityCommandService(
	reports domain.QualityReportRepository,
	configs domain.QualityConfigRepository,
	rules *RulesValidationService,
	storage domain.ResultsStorage,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *QualityCommandService {
	return &QualityCommandService{
		reports:   reports,
		configs:   configs,
		rules:     rules,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

// ValidateBatchQuality 对一个批次执行完整质量评估
// 同一批次已有终态报告时直接返回（幂等）；任何失败路径都会将报告标记为失败。
func (s *QualityCommandService) ValidateBatchQuality(ctx context.Context, cmd ValidateBatchQualityCommand) (*domain.QualityReport, error) {
	if existing, err := s.reports.GetByBatch(ctx, cmd.BatchID); err == nil && existing != nil && existing.Status.IsTerminal() {
		s.logger.Info("batch already assessed, returning existing report",
			"batch_id", cmd.BatchID, "report_id", existing.ReportID, "status", existing.Status)
		return existing, nil
	}

	config := s.loadConfig(ctx, cmd.BankID)
	now := time.Now()

	report := domain.NewQualityReport(fmt.Sprintf("DQR-%d", idgen.GenID()), cmd.BatchID, cmd.BankID)
	if err := report.StartValidation(now); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	errs, err := s.validateExposures(ctx, cmd.Exposures)
	if err != nil {
		return report, s.failReport(ctx, report, fmt.Sprintf("exposure validation failed: %v", err))
	}

	uniquenessErrs := domain.ValidateUniqueness(cmd.Exposures)
	errs = append(errs, uniquenessErrs...)

	consistency := domain.ValidateConsistency(cmd.Exposures, cmd.CrmRecords, cmd.ReportedCount)
	errs = append(errs, consistency.Errors...)

	timeliness := s.evaluateTimeliness(cmd, config)
	errs = append(errs, timeliness.Errors()...)

	result := domain.BuildValidationResult(cmd.BatchID, len(cmd.Exposures), errs)

	dimensions := map[domain.QualityDimension]float64{
		domain.DimensionCompleteness: result.DimensionScore(domain.DimensionCompleteness),
		domain.DimensionAccuracy:     result.DimensionScore(domain.DimensionAccuracy),
		domain.DimensionConsistency:  consistency.OverallScore,
		domain.DimensionTimeliness:   timeliness.Score,
		domain.DimensionUniqueness:   result.DimensionScore(domain.DimensionUniqueness),
		domain.DimensionValidity:     result.DimensionScore(domain.DimensionValidity),
	}
	scores, err := domain.CalculateQualityScores(dimensions, config.Weights, config.ComplianceMinimum)
	if err != nil {
		return report, s.failReport(ctx, report, fmt.Sprintf("invalid quality weights: %v", err))
	}

	if err := report.RecordResults(result.Summary); err != nil {
		return report, s.failReport(ctx, report, err.Error())
	}
	if err := report.CalculateScores(scores); err != nil {
		return report, s.failReport(ctx, report, err.Error())
	}

	uri, err := s.storage.Store(ctx, report, result)
	if err != nil {
		return report, s.failReport(ctx, report, fmt.Sprintf("failed to store error details: %v", err))
	}
	if err := report.StoreDetailsReference(uri); err != nil {
		return report, s.failReport(ctx, report, err.Error())
	}
	if err := report.CompleteValidation(time.Now()); err != nil {
		return report, s.failReport(ctx, report, err.Error())
	}

	if err := s.saveAndPublish(ctx, report); err != nil {
		return report, fmt.Errorf("failed to persist completed report: %w", err)
	}

	s.logger.Info("batch quality assessment completed",
		"batch_id", cmd.BatchID, "report_id", report.ReportID,
		"overall", scores.Overall, "grade", scores.Grade, "compliant", scores.Compliant,
		"duration_ms", report.DurationMs)
	return report, nil
}

// validateExposures 逐条执行四个单敞口维度校验与规则桥接
// 大批次按块并发，小批次顺序执行
func (s *QualityCommandService) validateExposures(ctx context.Context, exposures []*domain.ExposureRecord) ([]domain.ValidationError, error) {
	now := time.Now()

	if len(exposures) < parallelThreshold {
		var errs []domain.ValidationError
		for _, e := range exposures {
			errs = append(errs, s.validateOne(ctx, e, now)...)
		}
		return errs, nil
	}

	chunks := chunkExposures(exposures, validationChunkSize)
	results := make([][]domain.ValidationError, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxValidationWorkers)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var errs []domain.ValidationError
			for _, e := range chunk {
				errs = append(errs, s.validateOne(gctx, e, now)...)
			}
			results[i] = errs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var errs []domain.ValidationError
	for _, r := range results {
		errs = append(errs, r...)
	}
	return errs, nil
}

func (s *QualityCommandService) validateOne(ctx context.Context, e *domain.ExposureRecord, now time.Time) []domain.ValidationError {
	errs := domain.ValidateCompleteness(e)
	errs = append(errs, domain.ValidateAccuracy(e)...)
	errs = append(errs, domain.ValidateValidity(e, now)...)
	if s.rules != nil {
		errs = append(errs, s.rules.ValidateConfigurableRules(ctx, e)...)
		errs = append(errs, s.rules.ValidateThresholdRules(ctx, e)...)
	}
	return errs
}

// evaluateTimeliness 及时性评估
// 报告日期优先取批次元数据，其次取敞口中最晚的报告日期；
// 无法确定日期时返回退化结果，不允许缺日期的批次显得按时
func (s *QualityCommandService) evaluateTimeliness(cmd ValidateBatchQualityCommand, config *domain.QualityConfig) domain.TimelinessResult {
	reportingDate := cmd.ReportingDate
	if reportingDate == nil {
		for _, e := range cmd.Exposures {
			if e.ReportingDate == nil {
				continue
			}
			if reportingDate == nil || e.ReportingDate.After(*reportingDate) {
				reportingDate = e.ReportingDate
			}
		}
	}
	if reportingDate == nil || cmd.UploadDate.IsZero() {
		return domain.MissingReportingDateTimeliness(config.TimelinessThresholdDays)
	}

	return domain.EvaluateTimeliness(cmd.UploadDate, *reportingDate, config.TimelinessThresholdDays)
}

// failReport 标记报告失败并尽力保存，返回原始失败原因
func (s *QualityCommandService) failReport(ctx context.Context, report *domain.QualityReport, message string) error {
	if err := report.MarkAsFailed(message, time.Now()); err != nil {
		s.logger.Error("failed to mark report as failed",
			"report_id", report.ReportID, "error", err)
		return fmt.Errorf("%s", message)
	}
	if err := s.saveAndPublish(ctx, report); err != nil {
		s.logger.Error("failed to persist failed report",
			"report_id", report.ReportID, "error", err)
	}
	return fmt.Errorf("%s", message)
}

// saveAndPublish 在同一事务内保存聚合并通过 outbox 发布缓冲事件
func (s *QualityCommandService) saveAndPublish(ctx context.Context, report *domain.QualityReport) error {
	events := report.DrainEvents()
	return s.reports.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.reports.Save(txCtx, report); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		for _, event := range events {
			if err := s.publisher.PublishInTx(ctx, contextx.GetTx(txCtx), event.Type, event.Key, event.Payload); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *QualityCommandService) loadConfig(ctx context.Context, bankID string) *domain.QualityConfig {
	config, err := s.configs.Get(ctx, bankID)
	if err != nil || config == nil {
		return domain.DefaultQualityConfig(bankID)
	}
	return config
}

func chunkExposures(exposures []*domain.ExposureRecord, size int) [][]*domain.ExposureRecord {
	var chunks [][]*domain.ExposureRecord
	for start := 0; start < len(exposures); start += size {
		end := start + size
		if end > len(exposures) {
			end = len(exposures)
		}
		chunks = append(chunks, exposures[start:end])
	}
	return chunks
}

// 包 storage 错误明细文档存储
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

var ErrDocumentNotFound = errors.New("error detail document not found")

// ErrorDetailDocument 整批错误明细的持久化文档
// 报告聚合只保存 URI 引用，明细单独存储避免把大 JSON 塞进聚合行
type ErrorDetailDocument struct {
	gorm.Model
	ReportID string `gorm:"column:report_id;type:varchar(32);uniqueIndex;not null"`
	BatchID  string `gorm:"column:batch_id;type:varchar(64);index;not null"`
	URI      string `gorm:"column:uri;type:varchar(256);uniqueIndex;not null"`
	Payload  []byte `gorm:"column:payload;type:longblob;not null"`
}

// resultsStore ResultsStorage 的 MySQL 实现
type resultsStore struct {
	db *gorm.DB
}

// NewResultsStore 创建错误明细存储
func NewResultsStore(db *gorm.DB) domain.ResultsStorage {
	return &resultsStore{db: db}
}

// Store 存储整批错误明细，返回 dq:// URI
func (s *resultsStore) Store(ctx context.Context, report *domain.QualityReport, result domain.ValidationResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal error details: %w", err)
	}

	uri := fmt.Sprintf("dq://batches/%s/%s.json", report.BatchID, report.ReportID)
	doc := &ErrorDetailDocument{
		ReportID: report.ReportID,
		BatchID:  report.BatchID,
		URI:      uri,
		Payload:  payload,
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return "", err
	}
	return uri, nil
}

// Load 按 URI 读取错误明细
func (s *resultsStore) Load(ctx context.Context, uri string) (*domain.ValidationResult, error) {
	var doc ErrorDetailDocument
	err := s.db.WithContext(ctx).Where("uri = ?", uri).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	var result domain.ValidationResult
	if err := json.Unmarshal(doc.Payload, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal error details: %w", err)
	}
	return &result, nil
}

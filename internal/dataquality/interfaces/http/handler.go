// 包 http 数据质量服务的 HTTP 接口
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/regtech/internal/dataquality/application"
	"github.com/wyfcoding/regtech/internal/dataquality/domain"
)

// QualityHandler 负责处理数据质量评估相关的 HTTP 请求
type QualityHandler struct {
	cmd    *application.QualityCommandService
	query  *application.QualityQueryService
	config *application.ConfigurationService
}

// NewQualityHandler 创建 HTTP 处理器
func NewQualityHandler(
	cmd *application.QualityCommandService,
	query *application.QualityQueryService,
	config *application.ConfigurationService,
) *QualityHandler {
	return &QualityHandler{cmd: cmd, query: query, config: config}
}

// RegisterRoutes 注册路由
func (h *QualityHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/quality")
	{
		api.POST("/validate", h.ValidateBatch)
		api.GET("/reports/:id", h.GetReport)
		api.GET("/reports/:id/details", h.GetReportDetails)
		api.GET("/reports", h.GetReportByBatch)
		api.GET("/trends", h.GetTrends)
		api.GET("/config/:bankId", h.GetConfig)
		api.PUT("/config/:bankId", h.UpdateConfig)
		api.GET("/rules", h.ListRules)
		api.POST("/rules/:code/enable", h.EnableRule)
		api.POST("/rules/:code/disable", h.DisableRule)
	}
}

// ValidateBatch 对一个批次执行质量评估
func (h *QualityHandler) ValidateBatch(c *gin.Context) {
	var cmd application.ValidateBatchQualityCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if cmd.BatchID == "" || cmd.BankID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "batch_id and bank_id are required", "")
		return
	}
	if cmd.UploadDate.IsZero() {
		cmd.UploadDate = time.Now()
	}

	report, err := h.cmd.ValidateBatchQuality(c.Request.Context(), cmd)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to validate batch quality", "batch_id", cmd.BatchID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	response.Success(c, report)
}

// GetReport 按报告 ID 查询
func (h *QualityHandler) GetReport(c *gin.Context) {
	report, err := h.query.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrReportNotFound) {
			status = http.StatusNotFound
		}
		response.ErrorWithStatus(c, status, err.Error(), "")
		return
	}
	response.Success(c, report)
}

// GetReportDetails 按报告 ID 查询错误明细文档
func (h *QualityHandler) GetReportDetails(c *gin.Context) {
	details, err := h.query.GetErrorDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrReportNotFound) || errors.Is(err, domain.ErrDetailsNotStored) {
			status = http.StatusNotFound
		}
		response.ErrorWithStatus(c, status, err.Error(), "")
		return
	}
	response.Success(c, details)
}

// GetReportByBatch 按批次 ID 查询最新报告
func (h *QualityHandler) GetReportByBatch(c *gin.Context) {
	batchID := c.Query("batch_id")
	if batchID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "batch_id is required", "")
		return
	}

	report, err := h.query.GetReportByBatch(c.Request.Context(), batchID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrReportNotFound) {
			status = http.StatusNotFound
		}
		response.ErrorWithStatus(c, status, err.Error(), "")
		return
	}
	response.Success(c, report)
}

// GetTrends 查询质量趋势
func (h *QualityHandler) GetTrends(c *gin.Context) {
	bankID := c.Query("bank_id")
	if bankID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "bank_id is required", "")
		return
	}

	from, err := parseDateParam(c.Query("from"), time.Now().AddDate(0, -3, 0))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid from date", "")
		return
	}
	to, err := parseDateParam(c.Query("to"), time.Now())
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid to date", "")
		return
	}

	trends, err := h.query.GetQualityTrends(c.Request.Context(), application.TrendsQuery{
		BankID: bankID,
		From:   from,
		To:     to,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to compute quality trends", "bank_id", bankID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, trends)
}

// GetConfig 查询银行质量配置
func (h *QualityHandler) GetConfig(c *gin.Context) {
	config, err := h.config.GetConfig(c.Request.Context(), c.Param("bankId"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, config)
}

// UpdateConfig 更新银行质量配置
func (h *QualityHandler) UpdateConfig(c *gin.Context) {
	var cmd application.UpdateQualityConfigCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	cmd.BankID = c.Param("bankId")

	config, err := h.config.UpdateConfig(c.Request.Context(), cmd)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrWeightsSumInvalid) || errors.Is(err, domain.ErrWeightNegative) {
			status = http.StatusBadRequest
		}
		response.ErrorWithStatus(c, status, err.Error(), "")
		return
	}
	response.Success(c, config)
}

// ListRules 返回全部启用规则
func (h *QualityHandler) ListRules(c *gin.Context) {
	rules, err := h.config.ListRules(c.Request.Context())
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, rules)
}

// EnableRule 启用规则
func (h *QualityHandler) EnableRule(c *gin.Context) {
	h.setRuleEnabled(c, true)
}

// DisableRule 停用规则
func (h *QualityHandler) DisableRule(c *gin.Context) {
	h.setRuleEnabled(c, false)
}

func (h *QualityHandler) setRuleEnabled(c *gin.Context, enabled bool) {
	code := c.Param("code")
	if err := h.config.SetRuleEnabled(c.Request.Context(), code, enabled); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrRuleNotFound) {
			status = http.StatusNotFound
		}
		response.ErrorWithStatus(c, status, err.Error(), "")
		return
	}
	response.Success(c, gin.H{"rule_code": code, "enabled": enabled})
}

func parseDateParam(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", value)
}

package domain

import (
	"fmt"
	"time"
)

// DefaultTimelinessThresholdDays 默认允许的提交延迟天数
const DefaultTimelinessThresholdDays = 7

// TimelinessResult 及时性评估结果
// Passed 表示延迟未超过阈值；阈值内的延迟仍会降分并产生错误
type TimelinessResult struct {
	Score                float64 `json:"score"`
	DaysLate             int     `json:"days_late"`
	ThresholdDays        int     `json:"threshold_days"`
	Passed               bool    `json:"passed"`
	MissingReportingDate bool    `json:"missing_reporting_date,omitempty"`
}

// EvaluateTimeliness 及时性评分
// 按时 100 分; 阈值内线性降至 80; 超过阈值后继续线性下降, 下限 0
func EvaluateTimeliness(uploadDate, reportingDate time.Time, thresholdDays int) TimelinessResult {
	if thresholdDays <= 0 {
		thresholdDays = DefaultTimelinessThresholdDays
	}

	daysLate := calendarDaysBetween(reportingDate, uploadDate)
	threshold := float64(thresholdDays)

	var score float64
	switch {
	case daysLate <= 0:
		score = 100.0
	case float64(daysLate) <= threshold:
		score = 100.0 - (float64(daysLate)/threshold)*20.0
		if score < 80.0 {
			score = 80.0
		}
	default:
		score = 80.0 - ((float64(daysLate)-threshold)/threshold)*40.0
		if score < 0.0 {
			score = 0.0
		}
	}

	return TimelinessResult{
		Score:         score,
		DaysLate:      daysLate,
		ThresholdDays: thresholdDays,
		Passed:        daysLate <= thresholdDays,
	}
}

// MissingReportingDateTimeliness 报告日期缺失时的退化结果
// 无法评估即视为不及时，批次不能因为缺日期而显得按时。
func MissingReportingDateTimeliness(thresholdDays int) TimelinessResult {
	if thresholdDays <= 0 {
		thresholdDays = DefaultTimelinessThresholdDays
	}
	return TimelinessResult{
		Score:                0.0,
		ThresholdDays:        thresholdDays,
		Passed:               false,
		MissingReportingDate: true,
	}
}

// Errors 将及时性结果转为批次级校验错误（按时提交无错误）
func (r TimelinessResult) Errors() []ValidationError {
	if r.MissingReportingDate {
		return []ValidationError{{
			Code:      "TIMELINESS_MISSING_REPORTING_DATE",
			Message:   "no reporting date available, timeliness cannot be assessed",
			Field:     "reportingDate",
			Dimension: DimensionTimeliness,
			Severity:  SeverityCritical,
		}}
	}
	if r.DaysLate <= 0 {
		return nil
	}

	severity := SeverityMedium
	if !r.Passed {
		severity = SeverityCritical
	}

	return []ValidationError{{
		Code:      "TIMELINESS_LATE_SUBMISSION",
		Message:   fmt.Sprintf("batch submitted %d days after reporting date (threshold %d days)", r.DaysLate, r.ThresholdDays),
		Field:     "uploadDate",
		Dimension: DimensionTimeliness,
		Severity:  severity,
	}}
}

// calendarDaysBetween 按日历日计算 to - from 的天数差，忽略时刻
func calendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

package domain

import (
	"math"
	"sort"
	"time"
)

type TrendDirection string

const (
	TrendStable    TrendDirection = "STABLE"
	TrendImproving TrendDirection = "IMPROVING"
	TrendDeclining TrendDirection = "DECLINING"
)

// trendStableBand 前后半段平均总分差的稳定区间
const trendStableBand = 1.0

// TrendPoint 趋势曲线上的单个报告点
type TrendPoint struct {
	ReportID   string                       `json:"report_id"`
	BatchID    string                       `json:"batch_id"`
	Date       time.Time                    `json:"date"`
	Overall    float64                      `json:"overall"`
	Grade      QualityGrade                 `json:"grade"`
	Dimensions map[QualityDimension]float64 `json:"dimensions"`
}

// QualityTrends 一段时间内的质量趋势
type QualityTrends struct {
	BankID         string                       `json:"bank_id"`
	From           time.Time                    `json:"from"`
	To             time.Time                    `json:"to"`
	Points         []TrendPoint                 `json:"points"`
	Direction      TrendDirection               `json:"direction"`
	AverageOverall float64                      `json:"average_overall"`
	Averages       map[QualityDimension]float64 `json:"averages"`
	ComplianceRate float64                      `json:"compliance_rate"`
}

// ComputeTrends 基于已完成报告计算趋势
// 方向按时间中点切分报告，比较前后两半的平均总分:
// 差值绝对值小于 1.0 为 STABLE; 不足两点恒为 STABLE
func ComputeTrends(bankID string, from, to time.Time, reports []*QualityReport) QualityTrends {
	trends := QualityTrends{
		BankID:    bankID,
		From:      from,
		To:        to,
		Direction: TrendStable,
		Averages:  make(map[QualityDimension]float64),
	}

	compliant := 0
	for _, r := range reports {
		if r.Scores == nil {
			continue
		}
		date := r.CreatedAt
		if r.ProcessingEndTime != nil {
			date = *r.ProcessingEndTime
		}
		if r.Scores.Compliant {
			compliant++
		}
		trends.Points = append(trends.Points, TrendPoint{
			ReportID:   r.ReportID,
			BatchID:    r.BatchID,
			Date:       date,
			Overall:    r.Scores.Overall,
			Grade:      r.Scores.Grade,
			Dimensions: r.Scores.Dimensions,
		})
	}

	if len(trends.Points) == 0 {
		return trends
	}

	sort.SliceStable(trends.Points, func(i, j int) bool {
		return trends.Points[i].Date.Before(trends.Points[j].Date)
	})

	sumOverall := 0.0
	sums := make(map[QualityDimension]float64)
	for _, p := range trends.Points {
		sumOverall += p.Overall
		for dim, score := range p.Dimensions {
			sums[dim] += score
		}
	}
	n := float64(len(trends.Points))
	trends.AverageOverall = sumOverall / n
	trends.ComplianceRate = float64(compliant) / n
	for dim, sum := range sums {
		trends.Averages[dim] = sum / n
	}

	if len(trends.Points) < 2 {
		return trends
	}

	mid := len(trends.Points) / 2
	diff := averageOverall(trends.Points[mid:]) - averageOverall(trends.Points[:mid])
	switch {
	case math.Abs(diff) < trendStableBand:
		trends.Direction = TrendStable
	case diff > 0:
		trends.Direction = TrendImproving
	default:
		trends.Direction = TrendDeclining
	}
	return trends
}

func averageOverall(points []TrendPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Overall
	}
	return sum / float64(len(points))
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendReport(reportID string, endTime time.Time, overall float64) *QualityReport {
	return &QualityReport{
		ReportID:          reportID,
		BatchID:           "BATCH-" + reportID,
		BankID:            "BANK-1",
		Status:            ReportStatusCompleted,
		ProcessingEndTime: &endTime,
		Scores: &QualityScores{
			Overall:   overall,
			Grade:     GradeFromScore(overall),
			Compliant: overall >= DefaultComplianceMinimum,
			Dimensions: map[QualityDimension]float64{
				DimensionCompleteness: overall,
				DimensionAccuracy:     overall,
			},
		},
	}
}

func TestComputeTrendsEmpty(t *testing.T) {
	from, to := day(2026, 1, 1), day(2026, 3, 31)

	trends := ComputeTrends("BANK-1", from, to, nil)
	assert.Equal(t, TrendStable, trends.Direction)
	assert.Empty(t, trends.Points)
	assert.Zero(t, trends.AverageOverall)
	assert.Zero(t, trends.ComplianceRate)
}

func TestComputeTrendsSinglePoint(t *testing.T) {
	reports := []*QualityReport{trendReport("R1", day(2026, 1, 15), 88)}

	trends := ComputeTrends("BANK-1", day(2026, 1, 1), day(2026, 3, 31), reports)
	assert.Equal(t, TrendStable, trends.Direction)
	assert.Len(t, trends.Points, 1)
	assert.InDelta(t, 88, trends.AverageOverall, 0.001)
}

func TestComputeTrendsDirections(t *testing.T) {
	from, to := day(2026, 1, 1), day(2026, 3, 31)

	improving := []*QualityReport{
		trendReport("R1", day(2026, 1, 15), 80),
		trendReport("R2", day(2026, 2, 15), 85),
		trendReport("R3", day(2026, 3, 15), 90),
	}
	assert.Equal(t, TrendImproving, ComputeTrends("BANK-1", from, to, improving).Direction)

	declining := []*QualityReport{
		trendReport("R1", day(2026, 1, 15), 95),
		trendReport("R2", day(2026, 3, 15), 85),
	}
	assert.Equal(t, TrendDeclining, ComputeTrends("BANK-1", from, to, declining).Direction)

	// 中点切分: 前半 [60] 平均 60，后半 [90, 60] 平均 75，方向为改善
	recovering := []*QualityReport{
		trendReport("R1", day(2026, 1, 15), 60),
		trendReport("R2", day(2026, 2, 15), 90),
		trendReport("R3", day(2026, 3, 15), 60),
	}
	assert.Equal(t, TrendImproving, ComputeTrends("BANK-1", from, to, recovering).Direction)

	// 前后半段平均差小于 1.0 视为稳定
	stable := []*QualityReport{
		trendReport("R1", day(2026, 1, 15), 90.0),
		trendReport("R2", day(2026, 3, 15), 90.5),
	}
	assert.Equal(t, TrendStable, ComputeTrends("BANK-1", from, to, stable).Direction)
}

func TestComputeTrendsAverages(t *testing.T) {
	reports := []*QualityReport{
		trendReport("R1", day(2026, 1, 15), 80),
		trendReport("R2", day(2026, 2, 15), 90),
	}

	trends := ComputeTrends("BANK-1", day(2026, 1, 1), day(2026, 3, 31), reports)
	assert.InDelta(t, 85, trends.AverageOverall, 0.001)
	assert.InDelta(t, 85, trends.Averages[DimensionCompleteness], 0.001)
	assert.InDelta(t, 85, trends.Averages[DimensionAccuracy], 0.001)
	assert.InDelta(t, 1.0, trends.ComplianceRate, 0.001)
}

func TestComputeTrendsComplianceRate(t *testing.T) {
	reports := []*QualityReport{
		trendReport("R1", day(2026, 1, 15), 95),
		trendReport("R2", day(2026, 2, 15), 60),
		trendReport("R3", day(2026, 3, 15), 80),
		trendReport("R4", day(2026, 3, 20), 50),
	}

	trends := ComputeTrends("BANK-1", day(2026, 1, 1), day(2026, 3, 31), reports)
	// 4 份报告中 2 份合规
	assert.InDelta(t, 0.5, trends.ComplianceRate, 0.001)
}

func TestComputeTrendsSkipsReportsWithoutScores(t *testing.T) {
	end := day(2026, 1, 15)
	reports := []*QualityReport{
		{ReportID: "R1", Status: ReportStatusCompleted, ProcessingEndTime: &end},
		trendReport("R2", day(2026, 2, 15), 90),
	}

	trends := ComputeTrends("BANK-1", day(2026, 1, 1), day(2026, 3, 31), reports)
	require.Len(t, trends.Points, 1)
	assert.Equal(t, "R2", trends.Points[0].ReportID)
}

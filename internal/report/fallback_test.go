package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sudipbhatta12/political-app-sub000/internal/models"
	"github.com/sudipbhatta12/political-app-sub000/internal/sentiment"
)

func TestOverallLabel(t *testing.T) {
	tests := []struct {
		name     string
		stats    sentiment.Stats
		expected string
	}{
		{
			name:     "Strongly positive",
			stats:    sentiment.Stats{AvgPositive: 60, AvgNegative: 20, AvgNeutral: 20},
			expected: "strongly positive",
		},
		{
			name:     "Predominantly positive",
			stats:    sentiment.Stats{AvgPositive: 45, AvgNegative: 30, AvgNeutral: 25},
			expected: "predominantly positive",
		},
		{
			name:     "Strongly negative",
			stats:    sentiment.Stats{AvgPositive: 15, AvgNegative: 65, AvgNeutral: 20},
			expected: "strongly negative",
		},
		{
			name:     "Predominantly negative",
			stats:    sentiment.Stats{AvgPositive: 28, AvgNegative: 42, AvgNeutral: 30},
			expected: "predominantly negative",
		},
		{
			name:     "Mixed when the gap is inside the margin",
			stats:    sentiment.Stats{AvgPositive: 38, AvgNegative: 34, AvgNeutral: 28},
			expected: "mixed",
		},
		{
			name:     "Neutral when neutral chatter dominates a tight race",
			stats:    sentiment.Stats{AvgPositive: 28, AvgNegative: 26, AvgNeutral: 46},
			expected: "largely neutral",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, overallLabel(tt.stats, 10))
		})
	}
}

func TestOverallLabel_MarginIsConfigurable(t *testing.T) {
	stats := sentiment.Stats{AvgPositive: 45, AvgNegative: 30, AvgNeutral: 25}

	assert.Equal(t, "predominantly positive", overallLabel(stats, 10))
	assert.Equal(t, "mixed", overallLabel(stats, 20))
}

func TestPickSummary_TiesBreakAlphabetically(t *testing.T) {
	summaries := []models.ReportSourceSummary{
		{SourceName: "Zeta Party", AvgPositive: 60},
		{SourceName: "Alpha Party", AvgPositive: 60},
		{SourceName: "Midline News", AvgPositive: 40},
	}

	best := mostPositive(summaries)

	assert.Equal(t, "Alpha Party", best.SourceName)
}

func TestMostActive(t *testing.T) {
	summaries := []models.ReportSourceSummary{
		{SourceName: "Quiet Outlet", PostCount: 1},
		{SourceName: "Busy Party", PostCount: 7},
	}

	assert.Equal(t, "Busy Party", mostActive(summaries).SourceName)
}

func TestAlgorithmicSummary_AlwaysNonEmpty(t *testing.T) {
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	summary := algorithmicSummary(date, sentiment.Stats{
		AvgPositive: 40, AvgNegative: 40, AvgNeutral: 20,
		PostCount: 3, TotalComments: 500,
	}, []models.ReportSourceSummary{
		{SourceName: "Unity Party", PostCount: 2, CommentCount: 400, AvgPositive: 45, AvgNegative: 35},
		{SourceName: "Daily Herald", PostCount: 1, CommentCount: 100, AvgPositive: 20, AvgNegative: 60},
	}, 10)

	assert.NotEmpty(t, summary)
	assert.Contains(t, summary, "August 29, 2026")
	assert.Contains(t, summary, "mixed")
	assert.Contains(t, summary, "Unity Party")
	assert.Contains(t, summary, "Daily Herald")
}

func TestAlgorithmicSummary_NoSummaries(t *testing.T) {
	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	summary := algorithmicSummary(date, sentiment.Stats{PostCount: 1}, nil, 10)

	assert.NotEmpty(t, summary)
}

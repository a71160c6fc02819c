package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hirewire/gitscore/internal/models"
)

// weeklyHeatmap builds a heatmap with one contribution cell per week starting
// from start, count contributions each.
func weeklyHeatmap(year string, start time.Time, weeks, count int) models.YearHeatmaps {
	cells := make([]models.HeatmapCell, 0, weeks)
	for i := 0; i < weeks; i++ {
		cells = append(cells, models.HeatmapCell{
			Count: count,
			Date:  start.AddDate(0, 0, i*7).Format("2006-01-02"),
		})
	}
	return models.YearHeatmaps{year: cells}
}

func TestConsistencyScoreEmptyHeatmap(t *testing.T) {
	service := NewConsistencyService()

	assert.Equal(t, 0.0, service.Score("octocat", models.YearHeatmaps{}))
	assert.Equal(t, 0.0, service.Score("octocat", models.YearHeatmaps{
		"2025": {{Count: 0, Date: "2025-03-03"}},
	}))
}

func TestConsistencyScoreSteadyContributor(t *testing.T) {
	service := NewConsistencyService()

	// 40 active weeks of 2025 at 5 contributions each, starting Monday Jan 6.
	heatmaps := weeklyHeatmap("2025", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), 40, 5)

	score := service.Score("steady", heatmaps)

	// Base score lands just under the 30-active-weeks floor, so the floor
	// applies: 40/52*60 + (40*0.8)/52*25 = 61.54 -> 65.
	assert.Equal(t, 65.0, score)
}

func TestConsistencyScoreBurstContributor(t *testing.T) {
	service := NewConsistencyService()

	// 35 contributions crammed into five days of a single week. The active
	// weeks ratio dominates the formula, so a one-week burst scores near zero
	// regardless of volume.
	cells := make([]models.HeatmapCell, 0, 5)
	for i := 0; i < 5; i++ {
		cells = append(cells, models.HeatmapCell{
			Count: 7,
			Date:  time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02"),
		})
	}

	score := service.Score("burst", models.YearHeatmaps{"2025": cells})

	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 10.0)
}

func TestConsistencyScoreMostActiveYearWins(t *testing.T) {
	service := NewConsistencyService()

	// Heavy 2024, nearly idle 2025. The analysis must target 2024; judging
	// the quiet current year would punish a long-term contributor.
	heatmaps := weeklyHeatmap("2024", time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), 35, 8)
	heatmaps["2025"] = []models.HeatmapCell{
		{Count: 1, Date: "2025-02-03"},
		{Count: 1, Date: "2025-02-10"},
	}

	score := service.Score("veteran", heatmaps)

	assert.GreaterOrEqual(t, score, 65.0)
}

func TestConsistencyScoreFallbackWhenWindowEmpty(t *testing.T) {
	service := NewConsistencyService()

	// Jan 1 2027 falls in ISO week 53 of 2026, so the contribution belongs to
	// calendar year 2027 but no ISO week of it. The analysis window finds
	// nothing and the floor score applies.
	heatmaps := models.YearHeatmaps{
		"2027": {{Count: 5, Date: "2027-01-01"}},
	}

	assert.Equal(t, 15.0, service.Score("edge", heatmaps))
}

func TestConsistencyScoreSkipsBadDates(t *testing.T) {
	service := NewConsistencyService()

	heatmaps := models.YearHeatmaps{
		"2025": {{Count: 5, Date: "not-a-date"}},
	}

	assert.Equal(t, 0.0, service.Score("garbled", heatmaps))
}

func TestGapPenalty(t *testing.T) {
	testCases := []struct {
		name        string
		activeWeeks int
		longestGap  int
		expected    float64
	}{
		{"no gap", 20, 0, 0.0},
		{"very active ignores gaps", 35, 20, 0.0},
		{"active with long gap", 26, 35, 35.0 / 52 * 0.05},
		{"moderate with long gap", 22, 26, 26.0 / 52 * 0.1},
		{"low activity capped", 12, 35, 0.1346},
		{"sparse long gap", 5, 40, 40.0 / 52 * 0.25},
		{"minimal activity long gap", 2, 45, 45.0 / 52 * 0.25},
		{"sparse short gap", 4, 8, 8.0 / 52 * 0.05},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, gapPenalty(tc.activeWeeks, tc.longestGap), 0.001)
		})
	}
}

func TestApplyActivityFloor(t *testing.T) {
	testCases := []struct {
		score       float64
		activeWeeks int
		expected    float64
	}{
		{10.0, 30, 65.0},
		{10.0, 25, 55.0},
		{10.0, 20, 45.0},
		{10.0, 15, 35.0},
		{10.0, 10, 25.0},
		{10.0, 5, 15.0},
		{5.0, 3, 10.0},
		{5.0, 2, 5.0},  // below 3 active weeks there is no floor
		{90.0, 30, 90.0}, // scores above the floor pass through
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, applyActivityFloor(tc.score, tc.activeWeeks),
			"score=%v activeWeeks=%d", tc.score, tc.activeWeeks)
	}
}

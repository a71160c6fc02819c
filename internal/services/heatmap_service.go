package services

import (
	"fmt"
	"time"

	"github.com/hirewire/gitscore/internal/models"
)

const (
	heatmapWeeks = 52
	heatmapDays  = 7

	// A merged PR counts double in heatmap intensity. Shipping reviewed work
	// is a stronger signal than raw commit volume.
	mergedPRWeight = 2

	maxIntensity = 4
)

// HeatmapService builds fixed-size 52x7 contribution grids, one per tracked
// year.
type HeatmapService struct {
	years []int
}

// NewHeatmapService creates a builder for the given calendar years.
func NewHeatmapService(years []int) *HeatmapService {
	return &HeatmapService{years: years}
}

// Build produces one 364-cell grid per tracked year from a single
// contribution source plus merged PRs. Weeks are Monday-based and anchored to
// the Monday on or before January 1; days from week 53 of long years collapse
// into week 52 rather than extending the grid.
func (s *HeatmapService) Build(source models.HeatmapSource, prs []*models.PullRequest) models.YearHeatmaps {
	heatmaps := make(models.YearHeatmaps, len(s.years))
	for _, year := range s.years {
		heatmaps[fmt.Sprintf("%d", year)] = s.buildYear(year, source, prs)
	}
	return heatmaps
}

func (s *HeatmapService) buildYear(year int, source models.HeatmapSource, prs []*models.PullRequest) []models.HeatmapCell {
	var counts [heatmapWeeks][heatmapDays]int

	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)
	gridStart := yearStart.AddDate(0, 0, -mondayIndex(yearStart))

	accumulate := func(t time.Time, weight int) {
		if t.Before(yearStart) || t.After(yearEnd) {
			return
		}
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		week := int(day.Sub(gridStart).Hours()) / 24 / heatmapDays
		if week > heatmapWeeks-1 {
			week = heatmapWeeks - 1
		}
		counts[week][mondayIndex(day)] += weight
	}

	for _, event := range source.Events() {
		accumulate(event.Date, event.Count)
	}
	for _, pr := range prs {
		if pr.IsMerged() {
			accumulate(*pr.MergedAt, mergedPRWeight)
		}
	}

	maxCount := 0
	for week := 0; week < heatmapWeeks; week++ {
		for day := 0; day < heatmapDays; day++ {
			if counts[week][day] > maxCount {
				maxCount = counts[week][day]
			}
		}
	}

	cells := make([]models.HeatmapCell, 0, heatmapWeeks*heatmapDays)
	for week := 0; week < heatmapWeeks; week++ {
		for day := 0; day < heatmapDays; day++ {
			count := counts[week][day]
			value := 0
			if maxCount > 0 && count > 0 {
				value = int(float64(count) / float64(maxCount) * maxIntensity)
				if value > maxIntensity {
					value = maxIntensity
				}
			}
			cells = append(cells, models.HeatmapCell{
				Week:  week,
				Day:   day,
				Value: value,
				Count: count,
				Date:  gridStart.AddDate(0, 0, week*heatmapDays+day).Format("2006-01-02"),
			})
		}
	}
	return cells
}

// mondayIndex returns the Monday-based weekday index, 0 for Monday through 6
// for Sunday.
func mondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

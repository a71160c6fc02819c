package services

import (
	"fmt"
	"time"

	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/pkg/logger"
)

const analysisWeeks = 52

// ConsistencyService scores the regularity of contribution activity. The
// formula rewards steady contributors, gives seasonal contributors a medium
// score, and ranks burst-only profiles low:
//
//	index = activeWeeksRatio*60 + avgWeeklyScore*25 - gapPenalty*5
//
// with activity floors applied after clamping so a visibly active heatmap can
// never score near zero.
type ConsistencyService struct{}

// NewConsistencyService creates a new ConsistencyService
func NewConsistencyService() *ConsistencyService {
	return &ConsistencyService{}
}

// Score computes the 0-100 consistency score from per-year heatmaps. Only the
// single most active calendar year is analyzed; scoring a quiet current year
// against last year's strong activity would punish long-term contributors.
func (s *ConsistencyService) Score(username string, heatmaps models.YearHeatmaps) float64 {
	type contribution struct {
		date  time.Time
		count int
	}

	var contributions []contribution
	for _, cells := range heatmaps {
		for _, cell := range cells {
			if cell.Count <= 0 || cell.Date == "" {
				continue
			}
			date, err := time.Parse("2006-01-02", cell.Date)
			if err != nil {
				logger.Warnf("skipping heatmap cell with bad date %q: %v", cell.Date, err)
				continue
			}
			contributions = append(contributions, contribution{date: date, count: cell.Count})
		}
	}
	if len(contributions) == 0 {
		logger.WithField("username", username).Warnf("no contributions found, consistency score is 0")
		return 0.0
	}

	weekly := make(map[string]int)
	yearTotals := make(map[int]int)
	for _, c := range contributions {
		isoYear, isoWeek := c.date.ISOWeek()
		weekly[weekKey(isoYear, isoWeek)] += c.count
		yearTotals[c.date.Year()] += c.count
	}

	// Analyze the year with the most contributions. Ties break toward the
	// earlier year for determinism.
	analysisYear := 0
	maxTotal := -1
	for year, total := range yearTotals {
		if total > maxTotal || (total == maxTotal && year < analysisYear) {
			analysisYear = year
			maxTotal = total
		}
	}

	// Walk the 52 ISO weeks of the analysis year starting from the Monday of
	// the week containing January 4.
	jan4 := time.Date(analysisYear, 1, 4, 0, 0, 0, 0, time.UTC)
	weekStart := jan4.AddDate(0, 0, -mondayIndex(jan4))

	activeWeeks := 0
	weeklyScoreSum := 0.0
	longestGap := 0
	currentGap := 0

	for weekNum := 0; weekNum < analysisWeeks; weekNum++ {
		isoYear, isoWeek := weekStart.AddDate(0, 0, weekNum*7).ISOWeek()
		count := 0
		if isoYear == analysisYear {
			count = weekly[weekKey(isoYear, isoWeek)]
		}

		if count > 0 {
			activeWeeks++
			currentGap = 0
			switch {
			case count <= 3:
				weeklyScoreSum += 0.5
			case count <= 10:
				weeklyScoreSum += 0.8
			default:
				weeklyScoreSum += 1.0
			}
		} else {
			currentGap++
			if currentGap > longestGap {
				longestGap = currentGap
			}
		}
	}

	if activeWeeks == 0 {
		// Contributions exist but none landed inside the analysis window.
		// Usually a date parsing or timezone artifact, so return a floor
		// score rather than zeroing out a visibly active profile.
		logger.WithFields(map[string]interface{}{
			"username": username,
			"year":     analysisYear,
		}).Warnf("no active weeks despite %d contribution days, returning floor score", len(contributions))
		return 15.0
	}

	activeWeeksRatio := float64(activeWeeks) / analysisWeeks
	avgWeeklyScore := weeklyScoreSum / analysisWeeks
	penalty := gapPenalty(activeWeeks, longestGap)

	baseScore := activeWeeksRatio*60 + avgWeeklyScore*25
	score := clampScore(baseScore - penalty*5)
	score = applyActivityFloor(score, activeWeeks)

	logger.WithFields(map[string]interface{}{
		"username":     username,
		"year":         analysisYear,
		"active_weeks": activeWeeks,
		"longest_gap":  longestGap,
		"score":        score,
	}).Debugf("calculated consistency score")

	return round2(score)
}

// gapPenalty scales the longest-gap penalty down as overall activity rises.
// Very active contributors are not penalized for gaps at all; low-activity
// profiles still get only a minimal penalty so a real heatmap never zeroes
// out.
func gapPenalty(activeWeeks, longestGap int) float64 {
	if longestGap == 0 {
		return 0.0
	}
	gapRatio := float64(longestGap) / analysisWeeks

	switch {
	case activeWeeks >= 30:
		return 0.0
	case activeWeeks >= 25:
		if longestGap > 30 {
			return gapRatio * 0.05
		}
		return 0.0
	case activeWeeks >= 20:
		switch {
		case longestGap > 25:
			return gapRatio * 0.1
		case longestGap > 20:
			return gapRatio * 0.05
		default:
			return 0.0
		}
	case activeWeeks >= 15:
		switch {
		case longestGap > 25:
			return gapRatio * 0.15
		case longestGap > 15:
			return gapRatio * 0.08
		default:
			return 0.0
		}
	case activeWeeks >= 10:
		switch {
		case longestGap > 30:
			return minFloat(0.2, gapRatio*0.2)
		case longestGap > 20:
			return gapRatio * 0.12
		case longestGap > 10:
			return gapRatio * 0.06
		default:
			return 0.0
		}
	default:
		switch {
		case longestGap > 30:
			return minFloat(0.25, gapRatio*0.25)
		case longestGap > 20:
			return minFloat(0.15, gapRatio*0.15)
		case longestGap > 10:
			return gapRatio * 0.1
		default:
			return gapRatio * 0.05
		}
	}
}

// applyActivityFloor raises the score to a minimum keyed on active weeks so
// profiles with sustained activity cannot land near zero.
func applyActivityFloor(score float64, activeWeeks int) float64 {
	var floor float64
	switch {
	case activeWeeks >= 30:
		floor = 65.0
	case activeWeeks >= 25:
		floor = 55.0
	case activeWeeks >= 20:
		floor = 45.0
	case activeWeeks >= 15:
		floor = 35.0
	case activeWeeks >= 10:
		floor = 25.0
	case activeWeeks >= 5:
		floor = 15.0
	case activeWeeks >= 3:
		floor = 10.0
	}
	if score < floor {
		return floor
	}
	return score
}

func weekKey(isoYear, isoWeek int) string {
	return fmt.Sprintf("%d-W%02d", isoYear, isoWeek)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

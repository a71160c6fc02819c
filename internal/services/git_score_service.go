package services

import (
	"math"

	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/pkg/logger"
)

// neutralAgentScore stands in for any review-agent metric the agent did not
// report. 50 on the 0-100 scale is the midpoint of the agent's 0-5 range, so
// a missing metric neither rewards nor punishes the candidate.
const neutralAgentScore = 50.0

const agentScaleFactor = 20.0

// GitScoreService aggregates the six scoring dimensions into the final
// 0-100 git score.
type GitScoreService struct {
	weights models.ScoreWeights
}

// NewGitScoreService creates an aggregator with the given dimension weights.
func NewGitScoreService(weights models.ScoreWeights) *GitScoreService {
	return &GitScoreService{weights: weights}
}

// Calculate produces the final git score and its per-dimension breakdown.
// With the default equal weights the score is the plain average of the six
// dimensions.
func (s *GitScoreService) Calculate(profile models.ProfileMetrics, agent models.AgentMetrics) models.GitScoreResult {
	breakdown := models.ScoreBreakdown{
		PRActivity:     scorePRActivity(profile.TotalPRsMerged, profile.AvgPRsPerWeek),
		Consistency:    round2(clampScore(profile.ConsistencyScore)),
		CommentQuality: scoreAgentMetric(agent.CommentQuality, "comment_quality"),
		PRQuality:      scoreAgentMetric(agent.PRQuality, "pr_quality"),
		TimeTaken:      scoreAgentMetric(agent.TimeTaken, "time_taken"),
		NumRepos:       scoreNumRepos(profile.NumRepos),
	}

	totalWeight := s.weights.Sum()
	weighted := breakdown.PRActivity*s.weights.PRActivity +
		breakdown.Consistency*s.weights.Consistency +
		breakdown.CommentQuality*s.weights.CommentQuality +
		breakdown.PRQuality*s.weights.PRQuality +
		breakdown.TimeTaken*s.weights.TimeTaken +
		breakdown.NumRepos*s.weights.NumRepos

	score := 0.0
	if totalWeight > 0 {
		score = clampScore(weighted / totalWeight)
	}

	return models.GitScoreResult{
		GitScore:  round2(score),
		Breakdown: breakdown,
	}
}

// scorePRActivity blends the merged PR count (60%) with the merge frequency
// (40%), each mapped through its own tier table.
func scorePRActivity(totalPRsMerged int, avgPRsPerWeek float64) float64 {
	var countScore float64
	switch {
	case totalPRsMerged >= 50:
		countScore = 100.0
	case totalPRsMerged >= 30:
		countScore = 80.0
	case totalPRsMerged >= 20:
		countScore = 70.0
	case totalPRsMerged >= 10:
		countScore = 60.0
	case totalPRsMerged >= 5:
		countScore = 50.0
	case totalPRsMerged >= 2:
		countScore = 40.0
	case totalPRsMerged >= 1:
		countScore = 30.0
	}

	var frequencyScore float64
	switch {
	case avgPRsPerWeek >= 2.0:
		frequencyScore = 100.0
	case avgPRsPerWeek >= 1.0:
		frequencyScore = 80.0
	case avgPRsPerWeek >= 0.5:
		frequencyScore = 60.0
	case avgPRsPerWeek >= 0.25:
		frequencyScore = 40.0
	case avgPRsPerWeek > 0:
		frequencyScore = 20.0
	}

	return round2(countScore*0.6 + frequencyScore*0.4)
}

// scoreAgentMetric rescales a review-agent metric from its 0-5 range to
// 0-100. Missing metrics fall back to the neutral default.
func scoreAgentMetric(value *float64, name string) float64 {
	if value == nil {
		logger.Debugf("no %s from review agent, using neutral default", name)
		return neutralAgentScore
	}
	return round2(clampScore(*value * agentScaleFactor))
}

func scoreNumRepos(numRepos int) float64 {
	switch {
	case numRepos >= 20:
		return 100.0
	case numRepos >= 15:
		return 90.0
	case numRepos >= 10:
		return 80.0
	case numRepos >= 7:
		return 70.0
	case numRepos >= 5:
		return 60.0
	case numRepos >= 3:
		return 50.0
	case numRepos >= 2:
		return 40.0
	case numRepos >= 1:
		return 30.0
	default:
		return 0.0
	}
}

func clampScore(v float64) float64 {
	return math.Max(0.0, math.Min(100.0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package services

import (
	"sort"
	"strings"

	"github.com/hirewire/gitscore/internal/models"
)

// PriorityLabels boost a PR's score by 10 points each. Matched
// case-insensitively as substrings of the PR's label names.
var PriorityLabels = []string{"feature", "high priority", "bounty", "$", "money", "reward", "points"}

const (
	pointsPerPriorityLabel = 10.0

	// Volume signals are normalized linearly and clamped at 20 points each.
	// The linear-clamp shape is load-bearing: downstream thresholds were
	// calibrated against it.
	filesFullScore   = 50.0
	locFullScore     = 5000.0
	commitsFullScore = 20.0
	volumeMaxPoints  = 20.0
)

// PRQualityService computes the composite structural quality score for pull
// requests. It judges volume and curation signals only; code-quality judgment
// belongs to the external review agent.
type PRQualityService struct{}

// NewPRQualityService creates a new PRQualityService
func NewPRQualityService() *PRQualityService {
	return &PRQualityService{}
}

// LabelScore returns 10 points per priority-vocabulary entry that appears in
// any of the PR's label names.
func (s *PRQualityService) LabelScore(labels []string) float64 {
	lowered := make([]string, len(labels))
	for i, label := range labels {
		lowered[i] = strings.ToLower(label)
	}

	score := 0.0
	for _, priority := range PriorityLabels {
		for _, name := range lowered {
			if strings.Contains(name, priority) {
				score += pointsPerPriorityLabel
				break
			}
		}
	}
	return score
}

// Score computes the composite score for a single PR and returns a scored
// copy. The input PR is never mutated.
func (s *PRQualityService) Score(pr *models.PullRequest) *models.ScoredPullRequest {
	labelScore := s.LabelScore(pr.Labels)
	linesOfCode := pr.Additions + pr.Deletions

	filesScore := clampVolume(float64(pr.ChangedFiles) / filesFullScore * volumeMaxPoints)
	locScore := clampVolume(float64(linesOfCode) / locFullScore * volumeMaxPoints)
	commitsScore := clampVolume(float64(pr.CommitsCount) / commitsFullScore * volumeMaxPoints)

	return &models.ScoredPullRequest{
		PullRequest: *pr,
		Score:       labelScore + filesScore + locScore + commitsScore,
		LabelScore:  labelScore,
		LinesOfCode: linesOfCode,
	}
}

// TopN returns the n highest-scoring PRs, ties broken by original fetch
// order. The input slice is not reordered.
func (s *PRQualityService) TopN(prs []*models.ScoredPullRequest, n int) []*models.ScoredPullRequest {
	sorted := append([]*models.ScoredPullRequest(nil), prs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func clampVolume(v float64) float64 {
	if v > volumeMaxPoints {
		return volumeMaxPoints
	}
	return v
}

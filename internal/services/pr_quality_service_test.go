package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/gitscore/internal/models"
)

func TestLabelScore(t *testing.T) {
	service := NewPRQualityService()

	testCases := []struct {
		name     string
		labels   []string
		expected float64
	}{
		{"no labels", nil, 0.0},
		{"unrelated labels", []string{"bug", "documentation"}, 0.0},
		{"feature label", []string{"Feature Request"}, 10.0},
		{"case insensitive", []string{"HIGH PRIORITY"}, 10.0},
		{"bounty with dollar amount", []string{"$100 Bounty"}, 20.0}, // matches both "$" and "bounty"
		{"same keyword twice counts once", []string{"feature", "new-feature"}, 10.0},
		{"points label", []string{"500 points"}, 10.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, service.LabelScore(tc.labels))
		})
	}
}

func TestScoreVolumeSignals(t *testing.T) {
	service := NewPRQualityService()

	testCases := []struct {
		name     string
		pr       *models.PullRequest
		expected float64
	}{
		{
			name:     "empty PR",
			pr:       &models.PullRequest{},
			expected: 0.0,
		},
		{
			name: "half of each volume signal",
			pr: &models.PullRequest{
				ChangedFiles: 25,   // 25/50 * 20 = 10
				Additions:    2000, // 2500/5000 * 20 = 10
				Deletions:    500,
				CommitsCount: 10, // 10/20 * 20 = 10
			},
			expected: 30.0,
		},
		{
			name: "oversized PR caps at 60 without labels",
			pr: &models.PullRequest{
				ChangedFiles: 500,
				Additions:    90000,
				Deletions:    10000,
				CommitsCount: 300,
			},
			expected: 60.0,
		},
		{
			name: "labels push past the volume cap",
			pr: &models.PullRequest{
				Labels:       []string{"bounty", "high priority"},
				ChangedFiles: 500,
				Additions:    90000,
				CommitsCount: 300,
			},
			expected: 80.0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scored := service.Score(tc.pr)
			assert.Equal(t, tc.expected, scored.Score)
			assert.Equal(t, tc.pr.Additions+tc.pr.Deletions, scored.LinesOfCode)
		})
	}
}

func TestScoreDoesNotMutateInput(t *testing.T) {
	service := NewPRQualityService()

	pr := &models.PullRequest{Number: 7, Additions: 100, Deletions: 50, ChangedFiles: 3}
	original := *pr

	scored := service.Score(pr)

	assert.Equal(t, original, *pr)
	assert.Equal(t, 150, scored.LinesOfCode)
	assert.Equal(t, pr.Number, scored.Number)
}

func TestTopN(t *testing.T) {
	service := NewPRQualityService()

	prs := []*models.ScoredPullRequest{
		{PullRequest: models.PullRequest{Number: 1}, Score: 10},
		{PullRequest: models.PullRequest{Number: 2}, Score: 40},
		{PullRequest: models.PullRequest{Number: 3}, Score: 40},
		{PullRequest: models.PullRequest{Number: 4}, Score: 25},
		{PullRequest: models.PullRequest{Number: 5}, Score: 5},
	}

	top := service.TopN(prs, 3)

	require.Len(t, top, 3)
	// Ties keep fetch order: #2 before #3.
	assert.Equal(t, 2, top[0].Number)
	assert.Equal(t, 3, top[1].Number)
	assert.Equal(t, 4, top[2].Number)

	// The input slice keeps its original order.
	assert.Equal(t, 1, prs[0].Number)
	assert.Equal(t, 5, prs[4].Number)
}

func TestTopNShorterThanN(t *testing.T) {
	service := NewPRQualityService()

	prs := []*models.ScoredPullRequest{
		{PullRequest: models.PullRequest{Number: 1}, Score: 10},
	}

	assert.Len(t, service.TopN(prs, 3), 1)
	assert.Empty(t, service.TopN(nil, 3))
}

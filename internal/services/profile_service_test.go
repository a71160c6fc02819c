package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/gitscore/internal/models"
)

func TestIsBotLogin(t *testing.T) {
	testCases := []struct {
		username string
		isBot    bool
	}{
		{"dependabot[bot]", true},
		{"renovate", true},
		{"GitHub-Actions", true},
		{"my-bot", true},
		{"some_bot", true},
		{"bot-account", true},
		{"bot_user", true},
		{"octocat", false},
		{"abbot", false},    // "bot" suffix without a separator is a real name
		{"robotics", false},
		{"botond", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.isBot, IsBotLogin(tc.username), "username %q", tc.username)
	}
}

func TestAveragePRsPerWeek(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mergedDaysAgo := func(days int) *models.PullRequest {
		mergedAt := now.AddDate(0, 0, -days)
		return &models.PullRequest{MergedAt: &mergedAt}
	}

	t.Run("no PRs", func(t *testing.T) {
		assert.Equal(t, 0.0, averagePRsPerWeek(nil, now))
	})

	t.Run("only stale PRs", func(t *testing.T) {
		prs := []*models.PullRequest{mergedDaysAgo(400), mergedDaysAgo(500)}
		assert.Equal(t, 0.0, averagePRsPerWeek(prs, now))
	})

	t.Run("ten PRs over ten weeks", func(t *testing.T) {
		prs := make([]*models.PullRequest, 0, 10)
		for i := 0; i < 10; i++ {
			prs = append(prs, mergedDaysAgo(i*7))
		}
		// Earliest is 63 days back, exactly 9 weeks; 10 PRs / 9 weeks.
		assert.InDelta(t, 1.11, averagePRsPerWeek(prs, now), 0.01)
	})

	t.Run("recent burst clamps to one week", func(t *testing.T) {
		prs := []*models.PullRequest{mergedDaysAgo(2), mergedDaysAgo(1), mergedDaysAgo(0)}
		assert.Equal(t, 3.0, averagePRsPerWeek(prs, now))
	})

	t.Run("year old history clamps to 52 weeks", func(t *testing.T) {
		prs := []*models.PullRequest{mergedDaysAgo(364), mergedDaysAgo(100), mergedDaysAgo(10), mergedDaysAgo(1)}
		assert.InDelta(t, 0.08, averagePRsPerWeek(prs, now), 0.001) // 4/52
	})

	t.Run("unmerged PRs are ignored", func(t *testing.T) {
		prs := []*models.PullRequest{{}, mergedDaysAgo(0)}
		assert.Equal(t, 1.0, averagePRsPerWeek(prs, now))
	})
}

func TestSplitRepoFromIssueURL(t *testing.T) {
	owner, repo, err := splitRepoFromIssueURL("https://github.com/golang/go/pull/12345")
	require.NoError(t, err)
	assert.Equal(t, "golang", owner)
	assert.Equal(t, "go", repo)

	_, _, err = splitRepoFromIssueURL("https://github.com/golang")
	assert.Error(t, err)
}

func TestMatchesFramework(t *testing.T) {
	goKeywords := frameworkKeywords["Go"]
	railsKeywords := frameworkKeywords["Rails"]

	// Word boundaries on names and descriptions.
	assert.True(t, matchesFramework(goKeywords, "go-kit", "", nil))
	assert.True(t, matchesFramework(goKeywords, "myapp", "a service written in golang", nil))
	assert.False(t, matchesFramework(railsKeywords, "trails", "hiking trail tracker", nil))

	// Topics match as plain substrings.
	assert.True(t, matchesFramework(railsKeywords, "myapp", "", []string{"ruby-on-rails"}))
	assert.False(t, matchesFramework(goKeywords, "myapp", "", []string{"python"}))
}

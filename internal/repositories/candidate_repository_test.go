package repositories

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/gitscore/internal/models"
)

func testCandidate(username string, score float64) *models.Candidate {
	candidate := models.NewCandidate(username)
	candidate.GitScore = score
	candidate.Breakdown = models.ScoreBreakdown{PRActivity: 80, Consistency: 65}
	candidate.TotalPRsMerged = 42
	candidate.AvgPRsPerWeek = 1.5
	candidate.NumRepos = 12
	candidate.TechStack = []string{"Go", "TypeScript"}
	candidate.Heatmap = models.YearHeatmaps{
		"2025": {{Week: 0, Day: 0, Value: 2, Count: 3, Date: "2024-12-30"}},
	}
	return candidate
}

func TestCandidateRepositoryUpsertAndGet(t *testing.T) {
	repo := NewCandidateRepository(setupTestDB(t))

	candidate := testCandidate("octocat", 72.5)
	require.NoError(t, repo.Upsert(candidate))

	fetched, err := repo.GetByUsername("octocat")
	require.NoError(t, err)
	assert.Equal(t, candidate.ID, fetched.ID)
	assert.Equal(t, 72.5, fetched.GitScore)
	assert.Equal(t, 80.0, fetched.Breakdown.PRActivity)
	assert.Equal(t, []string{"Go", "TypeScript"}, fetched.TechStack)
	assert.Equal(t, models.CandidateStatusAvailable, fetched.Status)
	require.Contains(t, fetched.Heatmap, "2025")
	assert.Equal(t, 3, fetched.Heatmap["2025"][0].Count)
}

func TestCandidateRepositoryUpsertReplacesOnRescore(t *testing.T) {
	repo := NewCandidateRepository(setupTestDB(t))

	require.NoError(t, repo.Upsert(testCandidate("octocat", 50.0)))

	// A re-score gets a fresh row ID but the same username; the stored score
	// must be replaced, not duplicated.
	require.NoError(t, repo.Upsert(testCandidate("octocat", 81.0)))

	candidates, err := repo.List()
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 81.0, candidates[0].GitScore)
}

func TestCandidateRepositoryListOrdersByScore(t *testing.T) {
	repo := NewCandidateRepository(setupTestDB(t))

	require.NoError(t, repo.Upsert(testCandidate("middling", 55.0)))
	require.NoError(t, repo.Upsert(testCandidate("strong", 90.0)))
	require.NoError(t, repo.Upsert(testCandidate("weak", 20.0)))

	candidates, err := repo.List()
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "strong", candidates[0].Username)
	assert.Equal(t, "middling", candidates[1].Username)
	assert.Equal(t, "weak", candidates[2].Username)
}

func TestCandidateRepositoryUpdateStatus(t *testing.T) {
	repo := NewCandidateRepository(setupTestDB(t))

	require.NoError(t, repo.Upsert(testCandidate("octocat", 70.0)))

	require.NoError(t, repo.UpdateStatus("octocat", models.CandidateStatusInterviewing))

	fetched, err := repo.GetByUsername("octocat")
	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusInterviewing, fetched.Status)

	err = repo.UpdateStatus("nobody", models.CandidateStatusOnboarded)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCandidateRepositoryDelete(t *testing.T) {
	repo := NewCandidateRepository(setupTestDB(t))

	require.NoError(t, repo.Upsert(testCandidate("octocat", 70.0)))
	require.NoError(t, repo.Delete("octocat"))

	_, err := repo.GetByUsername("octocat")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

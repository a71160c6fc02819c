package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCandidate(t *testing.T) {
	candidate := NewCandidate("octocat")

	assert.NotEmpty(t, candidate.ID)
	assert.Equal(t, "octocat", candidate.Username)
	assert.Equal(t, "https://github.com/octocat", candidate.ProfileURL)
	assert.Equal(t, CandidateStatusAvailable, candidate.Status)
	assert.False(t, candidate.CreatedAt.IsZero())
}

func TestCandidateValidate(t *testing.T) {
	candidate := NewCandidate("octocat")
	candidate.GitScore = 75.5
	require.NoError(t, candidate.Validate())

	candidate.GitScore = 101.0
	assert.Error(t, candidate.Validate())

	candidate.GitScore = -1.0
	assert.Error(t, candidate.Validate())

	candidate = NewCandidate("")
	assert.Error(t, candidate.Validate())
}

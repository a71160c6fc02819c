package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/gitscore/internal/models"
)

func TestCandidatesToExcel(t *testing.T) {
	service := NewExportService()

	candidate := models.NewCandidate("octocat")
	candidate.GitScore = 72.5
	candidate.Breakdown = models.ScoreBreakdown{PRActivity: 80, Consistency: 65}
	candidate.TotalPRsMerged = 42
	candidate.TechStack = []string{"Go", "React"}

	f, err := service.CandidatesToExcel([]*models.Candidate{candidate})
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Contains(t, sheets, "Candidates")

	header, err := f.GetCellValue("Candidates", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Username", header)

	username, err := f.GetCellValue("Candidates", "A2")
	require.NoError(t, err)
	assert.Equal(t, "octocat", username)

	score, err := f.GetCellValue("Candidates", "C2")
	require.NoError(t, err)
	assert.Equal(t, "72.5", score)

	techStack, err := f.GetCellValue("Candidates", "M2")
	require.NoError(t, err)
	assert.Equal(t, "Go, React", techStack)

	status, err := f.GetCellValue("Candidates", "N2")
	require.NoError(t, err)
	assert.Equal(t, "available", status)
}

func TestCandidatesToExcelEmptyList(t *testing.T) {
	service := NewExportService()

	f, err := service.CandidatesToExcel(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Candidates")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

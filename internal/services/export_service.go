package services

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hirewire/gitscore/internal/models"
)

const exportSheet = "Candidates"

var exportHeaders = []string{
	"Username",
	"Profile URL",
	"Git Score",
	"PR Activity",
	"Consistency",
	"Comment Quality",
	"PR Quality",
	"Time Taken",
	"Repo Score",
	"Total PRs Merged",
	"Avg PRs/Week",
	"Public Repos",
	"Tech Stack",
	"Status",
}

// ExportService renders scored candidates into spreadsheet reports for the
// hiring team.
type ExportService struct{}

// NewExportService creates a new ExportService
func NewExportService() *ExportService {
	return &ExportService{}
}

// CandidatesToExcel builds an XLSX workbook with one row per candidate. The
// caller owns the returned file and must close it.
func (s *ExportService) CandidatesToExcel(candidates []*models.Candidate) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", exportSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for row, candidate := range candidates {
		values := []interface{}{
			candidate.Username,
			candidate.ProfileURL,
			candidate.GitScore,
			candidate.Breakdown.PRActivity,
			candidate.Breakdown.Consistency,
			candidate.Breakdown.CommentQuality,
			candidate.Breakdown.PRQuality,
			candidate.Breakdown.TimeTaken,
			candidate.Breakdown.NumRepos,
			candidate.TotalPRsMerged,
			candidate.AvgPRsPerWeek,
			candidate.NumRepos,
			strings.Join(candidate.TechStack, ", "),
			string(candidate.Status),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CandidateStatus represents where a candidate is in the hiring funnel
type CandidateStatus string

const (
	CandidateStatusAvailable    CandidateStatus = "available"
	CandidateStatusInterviewing CandidateStatus = "interviewing"
	CandidateStatusOnboarded    CandidateStatus = "onboarded"
)

// Candidate represents a scored hiring candidate
type Candidate struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	ProfileURL     string          `json:"profile_url"`
	GitScore       float64         `json:"git_score"`
	Breakdown      ScoreBreakdown  `json:"breakdown"`
	TotalPRsMerged int             `json:"total_prs_merged"`
	AvgPRsPerWeek  float64         `json:"avg_prs_per_week"`
	NumRepos       int             `json:"num_repos"`
	TechStack      []string        `json:"tech_stack"`
	Heatmap        YearHeatmaps    `json:"contribution_heatmap"`
	Status         CandidateStatus `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewCandidate creates a new Candidate with a generated UUID
func NewCandidate(username string) *Candidate {
	now := time.Now()
	return &Candidate{
		ID:         uuid.New().String(),
		Username:   username,
		ProfileURL: "https://github.com/" + username,
		Status:     CandidateStatusAvailable,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate validates the Candidate fields
func (c *Candidate) Validate() error {
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.GitScore < 0 || c.GitScore > 100 {
		return errors.New("git score must be between 0 and 100")
	}
	return nil
}

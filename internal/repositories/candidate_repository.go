package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hirewire/gitscore/internal/models"
)

// CandidateRepository handles database operations for candidates
type CandidateRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewCandidateRepository creates a new CandidateRepository
func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

const candidateColumns = `id, username, profile_url, git_score, breakdown, total_prs_merged, avg_prs_per_week, num_repos, tech_stack, heatmap, status, created_at, updated_at`

// Upsert inserts the candidate or, if the username already exists, replaces
// the stored score with the fresh one. Re-scoring a candidate is routine, so
// username is the natural key here, not the row ID.
func (r *CandidateRepository) Upsert(candidate *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	breakdown, techStack, heatmap, err := marshalCandidateBlobs(candidate)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO candidates (` + candidateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			git_score = excluded.git_score,
			breakdown = excluded.breakdown,
			total_prs_merged = excluded.total_prs_merged,
			avg_prs_per_week = excluded.avg_prs_per_week,
			num_repos = excluded.num_repos,
			tech_stack = excluded.tech_stack,
			heatmap = excluded.heatmap,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query,
		candidate.ID,
		candidate.Username,
		candidate.ProfileURL,
		candidate.GitScore,
		breakdown,
		candidate.TotalPRsMerged,
		candidate.AvgPRsPerWeek,
		candidate.NumRepos,
		techStack,
		heatmap,
		candidate.Status,
		candidate.CreatedAt,
		time.Now(),
	)
	return err
}

// GetByUsername retrieves a candidate by GitHub username
func (r *CandidateRepository) GetByUsername(username string) (*models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE username = ?`
	return scanCandidate(r.db.QueryRow(query, username))
}

// List retrieves all candidates ordered by git score, highest first
func (r *CandidateRepository) List() ([]*models.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + candidateColumns + ` FROM candidates ORDER BY git_score DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}

// UpdateStatus moves the candidate through the hiring funnel
func (r *CandidateRepository) UpdateStatus(username string, status models.CandidateStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `UPDATE candidates SET status = ?, updated_at = ? WHERE username = ?`
	result, err := r.db.Exec(query, status, time.Now(), username)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete deletes a candidate by username
func (r *CandidateRepository) Delete(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `DELETE FROM candidates WHERE username = ?`
	_, err := r.db.Exec(query, username)
	return err
}

func marshalCandidateBlobs(candidate *models.Candidate) (string, string, string, error) {
	breakdown, err := json.Marshal(candidate.Breakdown)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal breakdown: %w", err)
	}
	techStack, err := json.Marshal(candidate.TechStack)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal tech stack: %w", err)
	}
	heatmap, err := json.Marshal(candidate.Heatmap)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal heatmap: %w", err)
	}
	return string(breakdown), string(techStack), string(heatmap), nil
}

func scanCandidate(row interface{ Scan(...interface{}) error }) (*models.Candidate, error) {
	candidate := &models.Candidate{}
	var breakdown, techStack, heatmap string

	err := row.Scan(
		&candidate.ID,
		&candidate.Username,
		&candidate.ProfileURL,
		&candidate.GitScore,
		&breakdown,
		&candidate.TotalPRsMerged,
		&candidate.AvgPRsPerWeek,
		&candidate.NumRepos,
		&techStack,
		&heatmap,
		&candidate.Status,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(breakdown), &candidate.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
	}
	if err := json.Unmarshal([]byte(techStack), &candidate.TechStack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tech stack: %w", err)
	}
	if err := json.Unmarshal([]byte(heatmap), &candidate.Heatmap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal heatmap: %w", err)
	}
	return candidate, nil
}

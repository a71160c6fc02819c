package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/internal/repositories"
)

// ErrJobNotFound marks a lookup for a job that does not exist.
var ErrJobNotFound = errors.New("job not found")

// JobService manages the background job queue.
type JobService struct {
	jobRepo *repositories.JobRepository
}

// NewJobService creates a new JobService
func NewJobService(jobRepo *repositories.JobRepository) *JobService {
	return &JobService{jobRepo: jobRepo}
}

// EnqueueScore queues a candidate scoring job.
func (s *JobService) EnqueueScore(username string) (*models.Job, error) {
	job := models.NewScoreJob(username)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("failed to create score job: %w", err)
	}
	return job, nil
}

// EnqueueRepoAnalysis queues a repository analysis job.
func (s *JobService) EnqueueRepoAnalysis(repoURL string) (*models.Job, error) {
	job := models.NewRepoAnalysisJob(repoURL)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("failed to create repo analysis job: %w", err)
	}
	return job, nil
}

// GetJob returns a job by ID.
func (s *JobService) GetJob(id string) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrJobNotFound)
		}
		return nil, err
	}
	return job, nil
}

// ListJobs returns all jobs, newest first.
func (s *JobService) ListJobs() ([]*models.Job, error) {
	return s.jobRepo.List()
}

// ClaimNextJob atomically claims the oldest pending job of the given type for
// a worker. Returns nil when the queue is empty.
func (s *JobService) ClaimNextJob(jobType models.JobType, workerID string) (*models.Job, error) {
	return s.jobRepo.GetNextPendingJob(jobType, workerID)
}

// CompleteJob marks a job as completed.
func (s *JobService) CompleteJob(job *models.Job) error {
	job.MarkCompleted()
	return s.jobRepo.Update(job)
}

// FailJob marks a job as failed with the given reason.
func (s *JobService) FailJob(job *models.Job, reason string) error {
	job.MarkFailed()
	job.SetError(reason)
	return s.jobRepo.Update(job)
}

// RecoverStaleJobs returns orphaned in-progress jobs to the pending queue.
func (s *JobService) RecoverStaleJobs() (int64, error) {
	return s.jobRepo.ResetStaleJobs()
}

package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/internal/services"
	"github.com/hirewire/gitscore/pkg/logger"
)

// ScoreWorker processes candidate scoring jobs from the queue one at a time.
type ScoreWorker struct {
	*BaseWorker
	jobService       *services.JobService
	candidateService *services.CandidateService
}

// NewScoreWorker creates a new ScoreWorker
func NewScoreWorker(workerID string, jobService *services.JobService, candidateService *services.CandidateService) *ScoreWorker {
	return &ScoreWorker{
		BaseWorker:       NewBaseWorker(workerID, models.JobTypeScore),
		jobService:       jobService,
		candidateService: candidateService,
	}
}

// Start begins the score worker process
func (w *ScoreWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.Infof("score worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			logger.Infof("score worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("score worker %s stopping", w.WorkerID)
			return nil
		default:
			job, err := w.jobService.ClaimNextJob(models.JobTypeScore, w.WorkerID)
			if err != nil {
				logger.WithError(err).Errorf("score worker %s error claiming job", w.WorkerID)
				time.Sleep(5 * time.Second)
				continue
			}

			if job == nil {
				time.Sleep(10 * time.Second)
				continue
			}

			w.processJob(ctx, job)
		}
	}
}

func (w *ScoreWorker) processJob(ctx context.Context, job *models.Job) {
	logger.Infof("score worker %s processing job %s", w.WorkerID, job.ID)

	if err := w.runJob(ctx, job); err != nil {
		logger.WithError(err).Errorf("score worker %s failed job %s", w.WorkerID, job.ID)
		if err := w.jobService.FailJob(job, err.Error()); err != nil {
			logger.WithError(err).Errorf("score worker %s error marking job %s as failed", w.WorkerID, job.ID)
		}
		return
	}

	if err := w.jobService.CompleteJob(job); err != nil {
		logger.WithError(err).Errorf("score worker %s error marking job %s as completed", w.WorkerID, job.ID)
		return
	}
	logger.Infof("score worker %s completed job %s", w.WorkerID, job.ID)
}

func (w *ScoreWorker) runJob(ctx context.Context, job *models.Job) error {
	if job.Username == nil || *job.Username == "" {
		return fmt.Errorf("score job %s has no username", job.ID)
	}

	_, err := w.candidateService.ScoreCandidate(ctx, *job.Username, models.AgentMetrics{})
	return err
}

package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/internal/services"
	"github.com/hirewire/gitscore/pkg/logger"
)

// AnalysisWorker processes repository analysis jobs. Each completed analysis
// enqueues a scoring job per sampled contributor, feeding the candidate
// pipeline.
type AnalysisWorker struct {
	*BaseWorker
	jobService         *services.JobService
	contributorService *services.ContributorService
}

// NewAnalysisWorker creates a new AnalysisWorker
func NewAnalysisWorker(workerID string, jobService *services.JobService, contributorService *services.ContributorService) *AnalysisWorker {
	return &AnalysisWorker{
		BaseWorker:         NewBaseWorker(workerID, models.JobTypeRepoAnalysis),
		jobService:         jobService,
		contributorService: contributorService,
	}
}

// Start begins the analysis worker process
func (w *AnalysisWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.Infof("analysis worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			logger.Infof("analysis worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("analysis worker %s stopping", w.WorkerID)
			return nil
		default:
			job, err := w.jobService.ClaimNextJob(models.JobTypeRepoAnalysis, w.WorkerID)
			if err != nil {
				logger.WithError(err).Errorf("analysis worker %s error claiming job", w.WorkerID)
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

func (w *AnalysisWorker) processJob(ctx context.Context, job *models.Job) {
	logger.Infof("analysis worker %s processing job %s", w.WorkerID, job.ID)

	if err := w.runJob(ctx, job); err != nil {
		logger.WithError(err).Errorf("analysis worker %s failed job %s", w.WorkerID, job.ID)
		if err := w.jobService.FailJob(job, err.Error()); err != nil {
			logger.WithError(err).Errorf("analysis worker %s error marking job %s as failed", w.WorkerID, job.ID)
		}
		return
	}

	if err := w.jobService.CompleteJob(job); err != nil {
		logger.WithError(err).Errorf("analysis worker %s error marking job %s as completed", w.WorkerID, job.ID)
		return
	}
	logger.Infof("analysis worker %s completed job %s", w.WorkerID, job.ID)
}

func (w *AnalysisWorker) runJob(ctx context.Context, job *models.Job) error {
	if job.RepoURL == nil || *job.RepoURL == "" {
		return fmt.Errorf("analysis job %s has no repository URL", job.ID)
	}

	analyses, err := w.contributorService.AnalyzeRepository(ctx, *job.RepoURL)
	if err != nil {
		return err
	}

	enqueued := 0
	for _, analysis := range analyses {
		login := analysis.Contributor.Login
		if services.IsBotLogin(login) {
			logger.WithField("login", login).Infof("not enqueueing bot account for scoring")
			continue
		}
		if _, err := w.jobService.EnqueueScore(login); err != nil {
			logger.WithError(err).Errorf("failed to enqueue score job for %s", login)
			continue
		}
		enqueued++
	}

	logger.WithFields(map[string]interface{}{
		"repo_url": *job.RepoURL,
		"analyzed": len(analyses),
		"enqueued": enqueued,
	}).Infof("repository analysis finished")

	return nil
}

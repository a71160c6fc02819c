package workers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/hirewire/gitscore/internal/services"
	"github.com/hirewire/gitscore/pkg/logger"
)

// WorkerManager manages multiple workers of different types
type WorkerManager struct {
	workers            []Worker
	jobService         *services.JobService
	candidateService   *services.CandidateService
	contributorService *services.ContributorService
	wg                 sync.WaitGroup
	ctx                context.Context
	cancel             context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(jobService *services.JobService, candidateService *services.CandidateService, contributorService *services.ContributorService) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:            make([]Worker, 0),
		jobService:         jobService,
		candidateService:   candidateService,
		contributorService: contributorService,
		ctx:                ctx,
		cancel:             cancel,
	}
}

// StartAll starts all workers based on environment configuration. Worker
// counts default to 1: scoring is deliberately single-threaded per queue so a
// run cannot trample GitHub's rate limits.
func (wm *WorkerManager) StartAll() error {
	scoreWorkers := wm.getWorkerCount("SCORE_WORKERS", 1)
	analysisWorkers := wm.getWorkerCount("ANALYSIS_WORKERS", 1)

	logger.Infof("starting workers - score: %d, analysis: %d", scoreWorkers, analysisWorkers)

	if recovered, err := wm.jobService.RecoverStaleJobs(); err != nil {
		logger.WithError(err).Errorf("failed to recover stale jobs")
	} else if recovered > 0 {
		logger.Infof("recovered %d stale jobs", recovered)
	}

	for i := 0; i < scoreWorkers; i++ {
		worker := NewScoreWorker(fmt.Sprintf("score-%d", i+1), wm.jobService, wm.candidateService)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	for i := 0; i < analysisWorkers; i++ {
		worker := NewAnalysisWorker(fmt.Sprintf("analysis-%d", i+1), wm.jobService, wm.contributorService)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("started %d total workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Infof("stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).Errorf("error stopping worker %s", worker.GetWorkerID())
		}
	}

	wm.wg.Wait()

	logger.Infof("all workers stopped")
	return nil
}

// getWorkerCount reads worker count from environment variable with fallback
func (wm *WorkerManager) getWorkerCount(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return count
		}
		logger.Warnf("invalid value for %s, using default: %d", envVar, defaultValue)
	}
	return defaultValue
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Errorf("worker %s stopped with error", worker.GetWorkerID())
		}
	}()
}

// GetWorkerStatus returns the running state of all workers
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool)
	for _, worker := range wm.workers {
		switch w := worker.(type) {
		case *ScoreWorker:
			status[worker.GetWorkerID()] = w.IsRunning()
		case *AnalysisWorker:
			status[worker.GetWorkerID()] = w.IsRunning()
		default:
			status[worker.GetWorkerID()] = false
		}
	}
	return status
}

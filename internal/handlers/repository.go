package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/gitscore/internal/services"
	"github.com/hirewire/gitscore/pkg/logger"
)

// RepositoryHandler serves the repository analysis endpoints.
type RepositoryHandler struct {
	jobService *services.JobService
}

// NewRepositoryHandler creates a new RepositoryHandler
func NewRepositoryHandler(jobService *services.JobService) *RepositoryHandler {
	return &RepositoryHandler{jobService: jobService}
}

type analyzeRequest struct {
	RepoURL string `json:"repo_url" binding:"required"`
}

// Analyze enqueues a repository analysis job.
func (h *RepositoryHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "repo_url is required"})
		return
	}

	if _, _, err := services.ParseRepoURL(req.RepoURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobService.EnqueueRepoAnalysis(req.RepoURL)
	if err != nil {
		logger.WithError(err).Errorf("failed to enqueue analysis job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

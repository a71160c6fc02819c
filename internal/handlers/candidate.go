package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/internal/services"
	"github.com/hirewire/gitscore/pkg/logger"
)

// CandidateHandler serves the candidate endpoints.
type CandidateHandler struct {
	candidateService *services.CandidateService
	jobService       *services.JobService
	exportService    *services.ExportService
}

// NewCandidateHandler creates a new CandidateHandler
func NewCandidateHandler(candidateService *services.CandidateService, jobService *services.JobService, exportService *services.ExportService) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
		jobService:       jobService,
		exportService:    exportService,
	}
}

type createCandidateRequest struct {
	Username string `json:"username" binding:"required"`
}

// Create enqueues a scoring job for one candidate. Scoring a profile takes
// minutes of paced API calls, so the endpoint is asynchronous.
func (h *CandidateHandler) Create(c *gin.Context) {
	var req createCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	if services.IsBotLogin(req.Username) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "account is a bot"})
		return
	}

	job, err := h.jobService.EnqueueScore(req.Username)
	if err != nil {
		logger.WithError(err).Errorf("failed to enqueue score job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

type createBatchRequest struct {
	Usernames []string `json:"usernames" binding:"required,min=1"`
}

// CreateBatch enqueues a scoring job per username.
func (h *CandidateHandler) CreateBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "usernames is required"})
		return
	}

	jobs := make([]*models.Job, 0, len(req.Usernames))
	skipped := make([]string, 0)
	for _, username := range req.Usernames {
		if services.IsBotLogin(username) {
			skipped = append(skipped, username)
			continue
		}
		job, err := h.jobService.EnqueueScore(username)
		if err != nil {
			logger.WithError(err).Errorf("failed to enqueue score job for %s", username)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue jobs"})
			return
		}
		jobs = append(jobs, job)
	}

	c.JSON(http.StatusAccepted, gin.H{"jobs": jobs, "skipped": skipped})
}

// Get returns a scored candidate by username.
func (h *CandidateHandler) Get(c *gin.Context) {
	username := c.Param("username")

	candidate, err := h.candidateService.GetCandidate(username)
	if err != nil {
		if errors.Is(err, services.ErrCandidateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
			return
		}
		logger.WithError(err).Errorf("failed to get candidate %s", username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get candidate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidate": candidate})
}

// List returns all scored candidates, highest score first.
func (h *CandidateHandler) List(c *gin.Context) {
	candidates, err := h.candidateService.ListCandidates()
	if err != nil {
		logger.WithError(err).Errorf("failed to list candidates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list candidates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

type updateStatusRequest struct {
	Status models.CandidateStatus `json:"status" binding:"required"`
}

// UpdateStatus moves a candidate through the hiring funnel.
func (h *CandidateHandler) UpdateStatus(c *gin.Context) {
	username := c.Param("username")

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	switch req.Status {
	case models.CandidateStatusAvailable, models.CandidateStatusInterviewing, models.CandidateStatusOnboarded:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := h.candidateService.UpdateCandidateStatus(username, req.Status); err != nil {
		if errors.Is(err, services.ErrCandidateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
			return
		}
		logger.WithError(err).Errorf("failed to update status for %s", username)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "status": req.Status})
}

// Export streams all candidates as an XLSX workbook.
func (h *CandidateHandler) Export(c *gin.Context) {
	candidates, err := h.candidateService.ListCandidates()
	if err != nil {
		logger.WithError(err).Errorf("failed to list candidates for export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export candidates"})
		return
	}

	workbook, err := h.exportService.CandidatesToExcel(candidates)
	if err != nil {
		logger.WithError(err).Errorf("failed to build export workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export candidates"})
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", `attachment; filename="candidates.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		logger.WithError(err).Errorf("failed to write export workbook")
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/gitscore/internal/workers"
)

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	workerManager *workers.WorkerManager
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(workerManager *workers.WorkerManager) *HealthHandler {
	return &HealthHandler{workerManager: workerManager}
}

// Health reports service liveness and worker state.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"workers": h.workerManager.GetWorkerStatus(),
	})
}

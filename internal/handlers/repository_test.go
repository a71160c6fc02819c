package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/internal/services"
)

func newRepositoryTestRouter(t *testing.T) (*gin.Engine, *services.JobService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jobService := newJobService(t)
	handler := NewRepositoryHandler(jobService)

	router := gin.New()
	router.POST("/repositories/analyze", handler.Analyze)
	return router, jobService
}

func TestAnalyzeEnqueuesJob(t *testing.T) {
	router, jobService := newRepositoryTestRouter(t)

	body := `{"repo_url":"https://github.com/golang/go"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/repositories/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	jobs, err := jobService.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobTypeRepoAnalysis, jobs[0].JobType)
}

func TestAnalyzeRejectsInvalidURL(t *testing.T) {
	router, jobService := newRepositoryTestRouter(t)

	body := `{"repo_url":"https://gitlab.com/golang/go"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/repositories/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	jobs, err := jobService.ListJobs()
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestAnalyzeMissingURL(t *testing.T) {
	router, _ := newRepositoryTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/repositories/analyze", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

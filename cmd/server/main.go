package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/gitscore/internal/ghapi"
	"github.com/hirewire/gitscore/internal/handlers"
	"github.com/hirewire/gitscore/internal/middleware"
	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/internal/repositories"
	"github.com/hirewire/gitscore/internal/services"
	"github.com/hirewire/gitscore/internal/workers"
	"github.com/hirewire/gitscore/pkg/config"
	"github.com/hirewire/gitscore/pkg/database"
	"github.com/hirewire/gitscore/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init()
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// GitHub API plumbing
	fetcher := ghapi.NewFetcher(cfg.GitHub.Token, cfg.GitHub.MaxRetries)
	collector := ghapi.NewCollector(cfg.GitHub.MaxPages, cfg.GitHub.RequestsPerSec)
	graphql := ghapi.NewGraphQLClient(fetcher, cfg.GitHub.MaxRetries)

	// Repositories
	candidateRepo := repositories.NewCandidateRepository(database.DB)
	jobRepo := repositories.NewJobRepository(database.DB)

	// Services
	profileService := services.NewProfileService(fetcher, collector, graphql)
	heatmapService := services.NewHeatmapService(cfg.Scoring.HeatmapYears)
	consistencyService := services.NewConsistencyService()
	gitScoreService := services.NewGitScoreService(models.ScoreWeights{
		PRActivity:     cfg.Scoring.WeightPRActivity,
		Consistency:    cfg.Scoring.WeightConsistency,
		CommentQuality: cfg.Scoring.WeightCommentQuality,
		PRQuality:      cfg.Scoring.WeightPRQuality,
		TimeTaken:      cfg.Scoring.WeightTimeTaken,
		NumRepos:       cfg.Scoring.WeightNumRepos,
	})
	candidateService := services.NewCandidateService(
		profileService, heatmapService, consistencyService, gitScoreService,
		candidateRepo, cfg.Scoring.HeatmapYears,
	)
	sampler := services.NewContributorSampler(cfg.Scoring.MinPopulation)
	prQualityService := services.NewPRQualityService()
	contributorService := services.NewContributorService(fetcher, collector, sampler, prQualityService)
	jobService := services.NewJobService(jobRepo)
	exportService := services.NewExportService()

	// Workers
	workerManager := workers.NewWorkerManager(jobService, candidateService, contributorService)

	// Router
	router := gin.Default()
	setupRoutes(router, cfg.API.Key, candidateService, jobService, exportService, workerManager)

	if err := workerManager.StartAll(); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("shutting down server...")
}

func setupRoutes(
	router *gin.Engine,
	apiKey string,
	candidateService *services.CandidateService,
	jobService *services.JobService,
	exportService *services.ExportService,
	workerManager *workers.WorkerManager,
) {
	candidateHandler := handlers.NewCandidateHandler(candidateService, jobService, exportService)
	repositoryHandler := handlers.NewRepositoryHandler(jobService)
	jobHandler := handlers.NewJobHandler(jobService)
	healthHandler := handlers.NewHealthHandler(workerManager)

	router.GET("/health", healthHandler.Health)

	api := router.Group("/")
	api.Use(middleware.APIKeyAuth(apiKey))
	{
		api.POST("/candidates", candidateHandler.Create)
		api.POST("/candidates/batch", candidateHandler.CreateBatch)
		api.GET("/candidates", candidateHandler.List)
		api.GET("/candidates/export", candidateHandler.Export)
		api.GET("/candidates/:username", candidateHandler.Get)
		api.PATCH("/candidates/:username/status", candidateHandler.UpdateStatus)

		api.POST("/repositories/analyze", repositoryHandler.Analyze)

		api.GET("/jobs", jobHandler.List)
		api.GET("/jobs/:id", jobHandler.Get)
	}
}

package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hirewire/gitscore/internal/ghapi"
	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/internal/repositories"
	"github.com/hirewire/gitscore/internal/services"
	"github.com/hirewire/gitscore/pkg/config"
	"github.com/hirewire/gitscore/pkg/database"
	"github.com/hirewire/gitscore/pkg/logger"
)

var (
	flagLimit        int
	flagAgentMetrics string
	flagOutput       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scorer",
		Short: "Score GitHub candidates from the command line",
	}

	scoreCmd := &cobra.Command{
		Use:   "score <username>",
		Short: "Score a single candidate and print the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScore,
	}
	scoreCmd.Flags().StringVar(&flagAgentMetrics, "agent-metrics", "", "path to a JSON file of per-candidate review agent metrics")

	batchCmd := &cobra.Command{
		Use:   "batch <candidates.csv>",
		Short: "Score candidates from a CSV file with a Username column",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&flagLimit, "limit", 10, "maximum number of candidates to score")
	batchCmd.Flags().StringVar(&flagAgentMetrics, "agent-metrics", "", "path to a JSON file of per-candidate review agent metrics")
	batchCmd.Flags().StringVar(&flagOutput, "output", "git_scores_results.json", "path for the results JSON file")

	exportCmd := &cobra.Command{
		Use:   "export <candidates.xlsx>",
		Short: "Export all scored candidates to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	rootCmd.AddCommand(scoreCmd, batchCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	candidateService *services.CandidateService
	exportService    *services.ExportService
}

func newApp() (*app, func(), error) {
	if err := config.Load(); err != nil {
		return nil, nil, err
	}
	cfg := config.AppConfig
	logger.Init()

	if err := database.Init(cfg.Database.Path); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	fetcher := ghapi.NewFetcher(cfg.GitHub.Token, cfg.GitHub.MaxRetries)
	collector := ghapi.NewCollector(cfg.GitHub.MaxPages, cfg.GitHub.RequestsPerSec)
	graphql := ghapi.NewGraphQLClient(fetcher, cfg.GitHub.MaxRetries)

	candidateRepo := repositories.NewCandidateRepository(database.DB)

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

	a := &app{
		candidateService: services.NewCandidateService(
			profileService, heatmapService, consistencyService, gitScoreService,
			candidateRepo, cfg.Scoring.HeatmapYears,
		),
		exportService: services.NewExportService(),
	}
	return a, func() { database.Close() }, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	username := args[0]
	agentMetrics, err := loadAgentMetrics(flagAgentMetrics)
	if err != nil {
		return err
	}

	candidate, err := a.candidateService.ScoreCandidate(context.Background(), username, agentMetrics[username])
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(candidate)
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	usernames, err := readUsernamesFromCSV(args[0], flagLimit)
	if err != nil {
		return err
	}
	if len(usernames) == 0 {
		return fmt.Errorf("no usernames found in %s", args[0])
	}

	agentMetrics, err := loadAgentMetrics(flagAgentMetrics)
	if err != nil {
		return err
	}

	result, batchErr := a.candidateService.ScoreBatch(context.Background(), usernames, agentMetrics)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(flagOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed: %d, failed: %d, skipped: %d\n", result.Processed, result.Failed, result.Skipped)
	fmt.Fprintf(cmd.OutOrStdout(), "results saved to %s\n", flagOutput)
	return batchErr
}

func runExport(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	candidates, err := a.candidateService.ListCandidates()
	if err != nil {
		return err
	}

	workbook, err := a.exportService.CandidatesToExcel(candidates)
	if err != nil {
		return err
	}
	defer workbook.Close()

	if err := workbook.SaveAs(args[0]); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d candidates to %s\n", len(candidates), args[0])
	return nil
}

// readUsernamesFromCSV reads up to limit usernames from the CSV's Username
// column, matched case-insensitively.
func readUsernamesFromCSV(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	usernameCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "username") {
			usernameCol = i
			break
		}
	}
	if usernameCol == -1 {
		return nil, fmt.Errorf("no Username column found in %s", path)
	}

	var usernames []string
	for len(usernames) < limit {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if usernameCol >= len(record) {
			continue
		}
		if username := strings.TrimSpace(record[usernameCol]); username != "" {
			usernames = append(usernames, username)
		}
	}
	return usernames, nil
}

type agentMetricsFile map[string]struct {
	CommentQuality *float64 `json:"comment_quality"`
	PRQuality      *float64 `json:"pr_quality"`
	TimeTaken      *float64 `json:"time_taken"`
}

// loadAgentMetrics reads per-candidate review agent metrics from a JSON file.
// Missing file path means no agent metrics; the aggregator substitutes
// neutral defaults.
func loadAgentMetrics(path string) (map[string]models.AgentMetrics, error) {
	metrics := make(map[string]models.AgentMetrics)
	if path == "" {
		return metrics, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent metrics: %w", err)
	}

	var parsed agentMetricsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse agent metrics: %w", err)
	}

	for username, entry := range parsed {
		metrics[username] = models.AgentMetrics{
			CommentQuality: entry.CommentQuality,
			PRQuality:      entry.PRQuality,
			TimeTaken:      entry.TimeTaken,
		}
	}
	return metrics, nil
}

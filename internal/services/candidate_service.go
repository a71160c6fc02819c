package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hirewire/gitscore/internal/ghapi"
	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/internal/repositories"
	"github.com/hirewire/gitscore/pkg/logger"
)

// ErrBotUser marks a candidate that was skipped because the account is a bot.
var ErrBotUser = errors.New("account is a bot")

// ErrCandidateNotFound marks a lookup for a candidate that was never scored.
var ErrCandidateNotFound = errors.New("candidate not found")

// CandidateService runs the end-to-end scoring pipeline for individual
// candidates and batches.
type CandidateService struct {
	profiles      *ProfileService
	heatmaps      *HeatmapService
	consistency   *ConsistencyService
	gitScore      *GitScoreService
	candidateRepo *repositories.CandidateRepository
	years         []int
}

// NewCandidateService creates a new CandidateService
func NewCandidateService(
	profiles *ProfileService,
	heatmaps *HeatmapService,
	consistency *ConsistencyService,
	gitScore *GitScoreService,
	candidateRepo *repositories.CandidateRepository,
	years []int,
) *CandidateService {
	return &CandidateService{
		profiles:      profiles,
		heatmaps:      heatmaps,
		consistency:   consistency,
		gitScore:      gitScore,
		candidateRepo: candidateRepo,
		years:         years,
	}
}

// ScoreCandidate runs the full pipeline for one username: profile fetches,
// heatmap, consistency, aggregation, then persistence. Bot accounts return
// ErrBotUser without any further fetching.
func (s *CandidateService) ScoreCandidate(ctx context.Context, username string, agent models.AgentMetrics) (*models.Candidate, error) {
	user, err := s.profiles.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if s.profiles.IsBot(username, user) {
		return nil, fmt.Errorf("%s: %w", username, ErrBotUser)
	}

	prData, err := s.profiles.FetchMergedPRs(ctx, username)
	if err != nil {
		return nil, err
	}

	source, err := s.profiles.FetchContributions(ctx, username, s.years)
	if err != nil {
		return nil, err
	}

	techStack, err := s.profiles.FetchTechStack(ctx, username)
	if err != nil {
		return nil, err
	}

	heatmap := s.heatmaps.Build(source, prData.PRs)
	consistencyScore := s.consistency.Score(username, heatmap)

	profile := models.ProfileMetrics{
		TotalPRsMerged:   prData.TotalPRsMerged,
		AvgPRsPerWeek:    prData.AvgPRsPerWeek,
		ConsistencyScore: consistencyScore,
		NumRepos:         user.GetPublicRepos(),
		TechStack:        techStack,
		Heatmap:          heatmap,
	}

	result := s.gitScore.Calculate(profile, agent)

	candidate := models.NewCandidate(username)
	candidate.GitScore = result.GitScore
	candidate.Breakdown = result.Breakdown
	candidate.TotalPRsMerged = profile.TotalPRsMerged
	candidate.AvgPRsPerWeek = profile.AvgPRsPerWeek
	candidate.NumRepos = profile.NumRepos
	candidate.TechStack = profile.TechStack
	candidate.Heatmap = profile.Heatmap

	if err := candidate.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candidate %s: %w", username, err)
	}
	if err := s.candidateRepo.Upsert(candidate); err != nil {
		return nil, fmt.Errorf("failed to save candidate %s: %w", username, err)
	}

	logger.WithFields(map[string]interface{}{
		"username":  username,
		"git_score": candidate.GitScore,
	}).Infof("scored candidate")

	return candidate, nil
}

// BatchResult summarizes a batch scoring run.
type BatchResult struct {
	Processed  int                 `json:"processed"`
	Failed     int                 `json:"failed"`
	Skipped    int                 `json:"skipped"`
	Candidates []*models.Candidate `json:"candidates"`
}

// ScoreBatch scores candidates one at a time. One candidate's failure never
// stops the batch; bots are counted as skipped. The exceptions are an
// exhausted rate limit and a bad token, which would doom every remaining
// candidate, so the batch aborts and returns the partial result alongside
// the error.
func (s *CandidateService) ScoreBatch(ctx context.Context, usernames []string, agentMetrics map[string]models.AgentMetrics) (*BatchResult, error) {
	result := &BatchResult{}

	for _, username := range usernames {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		candidate, err := s.ScoreCandidate(ctx, username, agentMetrics[username])
		if err != nil {
			if errors.Is(err, ErrBotUser) {
				result.Skipped++
				logger.WithField("username", username).Infof("skipping bot account")
				continue
			}
			if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
				result.Failed++
				return result, fmt.Errorf("aborting batch at %s: %w", username, err)
			}
			result.Failed++
			logger.WithError(err).Errorf("failed to score %s", username)
			continue
		}

		result.Processed++
		result.Candidates = append(result.Candidates, candidate)
	}

	logger.WithFields(map[string]interface{}{
		"processed": result.Processed,
		"failed":    result.Failed,
		"skipped":   result.Skipped,
	}).Infof("finished batch scoring")

	return result, nil
}

// GetCandidate returns a previously scored candidate.
func (s *CandidateService) GetCandidate(username string) (*models.Candidate, error) {
	candidate, err := s.candidateRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", username, ErrCandidateNotFound)
		}
		return nil, err
	}
	return candidate, nil
}

// ListCandidates returns all scored candidates, highest score first.
func (s *CandidateService) ListCandidates() ([]*models.Candidate, error) {
	return s.candidateRepo.List()
}

// UpdateCandidateStatus moves a candidate through the hiring funnel.
func (s *CandidateService) UpdateCandidateStatus(username string, status models.CandidateStatus) error {
	err := s.candidateRepo.UpdateStatus(username, status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", username, ErrCandidateNotFound)
	}
	return err
}

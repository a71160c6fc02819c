package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/hirewire/gitscore/internal/ghapi"
	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/pkg/logger"
)

const (
	topContributorsLimit = 100
	prsPerContributor    = 100
	topPRsPerContributor = 3
)

// ContributorAnalysis is the result of analyzing one sampled contributor.
type ContributorAnalysis struct {
	Contributor models.Contributor          `json:"contributor"`
	TopPRs      []*models.ScoredPullRequest `json:"top_prs"`
	TotalPRs    int                         `json:"total_prs"`
}

// ContributorService analyzes a repository's contributor pool: it ranks the
// top contributors, samples a representative subset, and scores each sampled
// contributor's best pull requests from across their whole profile.
type ContributorService struct {
	fetcher   *ghapi.Fetcher
	collector *ghapi.Collector
	sampler   *ContributorSampler
	prQuality *PRQualityService
}

// NewContributorService creates a new ContributorService
func NewContributorService(fetcher *ghapi.Fetcher, collector *ghapi.Collector, sampler *ContributorSampler, prQuality *PRQualityService) *ContributorService {
	return &ContributorService{
		fetcher:   fetcher,
		collector: collector,
		sampler:   sampler,
		prQuality: prQuality,
	}
}

// AnalyzeRepository runs the full pipeline for a repository URL: top-100
// contributor ranking, stratified sampling, then per-contributor PR analysis.
// A failure on one contributor skips that contributor, not the run.
func (s *ContributorService) AnalyzeRepository(ctx context.Context, repoURL string) ([]*ContributorAnalysis, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	contributors, err := s.FetchTopContributors(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	sampled := s.sampler.Select(contributors)
	if len(sampled) == 0 {
		logger.WithFields(map[string]interface{}{
			"repo":         fmt.Sprintf("%s/%s", owner, repo),
			"contributors": len(contributors),
		}).Warnf("contributor pool too small to sample")
		return nil, nil
	}

	analyses := make([]*ContributorAnalysis, 0, len(sampled))
	for _, contributor := range sampled {
		analysis, err := s.analyzeContributor(ctx, contributor)
		if err != nil {
			if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
				return analyses, err
			}
			logger.WithError(err).Warnf("skipping contributor %s", contributor.Login)
			continue
		}
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

// FetchTopContributors returns the repository's contributors ordered by
// contribution count, capped at 100. Rank is positional within this snapshot.
func (s *ContributorService) FetchTopContributors(ctx context.Context, owner, repo string) ([]models.Contributor, error) {
	var all []*github.Contributor

	err := s.collector.CollectPages(ctx, 100, func(page int) (int, *github.Response, error) {
		opts := &github.ListContributorsOptions{
			ListOptions: github.ListOptions{PerPage: 100, Page: page},
		}

		var contributors []*github.Contributor
		var resp *github.Response
		err := s.fetcher.Do(ctx, "list contributors", func() (*github.Response, error) {
			var err error
			contributors, resp, err = s.fetcher.Client().Repositories.ListContributors(ctx, owner, repo, opts)
			return resp, err
		})
		if err != nil {
			return 0, nil, err
		}

		all = append(all, contributors...)
		return len(contributors), resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contributors for %s/%s: %w", owner, repo, err)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].GetContributions() > all[j].GetContributions()
	})
	if len(all) > topContributorsLimit {
		all = all[:topContributorsLimit]
	}

	ranked := make([]models.Contributor, len(all))
	for i, c := range all {
		ranked[i] = models.Contributor{
			Login:         c.GetLogin(),
			Rank:          i + 1,
			Contributions: c.GetContributions(),
		}
	}
	return ranked, nil
}

// analyzeContributor fetches the contributor's merged PRs from across all
// repositories, scores each one, and keeps the top 3.
func (s *ContributorService) analyzeContributor(ctx context.Context, contributor models.Contributor) (*ContributorAnalysis, error) {
	prs, err := s.fetchContributorPRs(ctx, contributor.Login)
	if err != nil {
		return nil, err
	}

	scored := make([]*models.ScoredPullRequest, 0, len(prs))
	for _, pr := range prs {
		if err := s.enrichPullRequest(ctx, pr); err != nil {
			if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
				return nil, err
			}
			logger.WithError(err).Debugf("partial enrichment for PR #%d in %s/%s", pr.Number, pr.RepoOwner, pr.RepoName)
		}
		scored = append(scored, s.prQuality.Score(pr))
	}

	analysis := &ContributorAnalysis{
		Contributor: contributor,
		TopPRs:      s.prQuality.TopN(scored, topPRsPerContributor),
		TotalPRs:    len(prs),
	}

	logger.WithFields(map[string]interface{}{
		"contributor": contributor.Login,
		"total_prs":   analysis.TotalPRs,
		"top_prs":     len(analysis.TopPRs),
	}).Infof("analyzed contributor")

	return analysis, nil
}

// fetchContributorPRs searches the contributor's merged PRs profile-wide and
// resolves each search hit into a full PR. Capped at one search page.
func (s *ContributorService) fetchContributorPRs(ctx context.Context, login string) ([]*models.PullRequest, error) {
	if err := s.collector.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("author:%s type:pr is:merged", login)
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: prsPerContributor},
	}

	var result *github.IssuesSearchResult
	err := s.fetcher.Do(ctx, "search contributor prs", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		result, resp, err = s.fetcher.Client().Search.Issues(ctx, query, opts)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search PRs for %s: %w", login, err)
	}

	var prs []*models.PullRequest
	for _, issue := range result.Issues {
		owner, repo, err := splitRepoFromIssueURL(issue.GetHTMLURL())
		if err != nil {
			logger.WithError(err).Debugf("skipping search hit with bad URL")
			continue
		}

		if err := s.collector.Wait(ctx); err != nil {
			return nil, err
		}

		var fullPR *github.PullRequest
		err = s.fetcher.Do(ctx, "get pull request", func() (*github.Response, error) {
			var resp *github.Response
			var err error
			fullPR, resp, err = s.fetcher.Client().PullRequests.Get(ctx, owner, repo, issue.GetNumber())
			return resp, err
		})
		if err != nil {
			if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
				return nil, err
			}
			logger.WithError(err).Warnf("skipping PR #%d in %s/%s", issue.GetNumber(), owner, repo)
			continue
		}

		if pr := convertPullRequest(owner, repo, fullPR); pr != nil && pr.IsMerged() {
			prs = append(prs, pr)
		}
	}
	return prs, nil
}

// enrichPullRequest fills in the file, commit, and linked-issue details the
// base PR object lacks. Each sub-fetch is independent; a missing timeline
// leaves the PR scoreable on its remaining signals.
func (s *ContributorService) enrichPullRequest(ctx context.Context, pr *models.PullRequest) error {
	var firstErr error

	if err := s.enrichFiles(ctx, pr); err != nil {
		if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
			return err
		}
		firstErr = err
	}
	if err := s.enrichCommits(ctx, pr); err != nil {
		if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := s.enrichLinkedIssues(ctx, pr); err != nil {
		if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
			return err
		}
		// The timeline endpoint 404s on many repos. Expected, not an error
		// worth surfacing.
		if firstErr == nil && !ghapi.IsNotFound(err) {
			firstErr = err
		}
	}
	return firstErr
}

func (s *ContributorService) enrichFiles(ctx context.Context, pr *models.PullRequest) error {
	filesChanged := 0
	linesOfCode := 0

	err := s.collector.CollectPages(ctx, 100, func(page int) (int, *github.Response, error) {
		opts := &github.ListOptions{PerPage: 100, Page: page}

		var files []*github.CommitFile
		var resp *github.Response
		err := s.fetcher.Do(ctx, "list pr files", func() (*github.Response, error) {
			var err error
			files, resp, err = s.fetcher.Client().PullRequests.ListFiles(ctx, pr.RepoOwner, pr.RepoName, pr.Number, opts)
			return resp, err
		})
		if err != nil {
			return 0, nil, err
		}

		filesChanged += len(files)
		for _, file := range files {
			linesOfCode += file.GetAdditions() + file.GetDeletions()
		}
		return len(files), resp, nil
	})
	if err != nil {
		return fmt.Errorf("failed to fetch files for PR #%d: %w", pr.Number, err)
	}

	pr.ChangedFiles = filesChanged
	pr.Additions = linesOfCode
	pr.Deletions = 0
	return nil
}

func (s *ContributorService) enrichCommits(ctx context.Context, pr *models.PullRequest) error {
	commitCount := 0

	err := s.collector.CollectPages(ctx, 100, func(page int) (int, *github.Response, error) {
		opts := &github.ListOptions{PerPage: 100, Page: page}

		var commits []*github.RepositoryCommit
		var resp *github.Response
		err := s.fetcher.Do(ctx, "list pr commits", func() (*github.Response, error) {
			var err error
			commits, resp, err = s.fetcher.Client().PullRequests.ListCommits(ctx, pr.RepoOwner, pr.RepoName, pr.Number, opts)
			return resp, err
		})
		if err != nil {
			return 0, nil, err
		}

		commitCount += len(commits)
		return len(commits), resp, nil
	})
	if err != nil {
		return fmt.Errorf("failed to fetch commits for PR #%d: %w", pr.Number, err)
	}

	pr.CommitsCount = commitCount
	return nil
}

func (s *ContributorService) enrichLinkedIssues(ctx context.Context, pr *models.PullRequest) error {
	var linked []string

	err := s.collector.CollectPages(ctx, 100, func(page int) (int, *github.Response, error) {
		opts := &github.ListOptions{PerPage: 100, Page: page}

		var events []*github.Timeline
		var resp *github.Response
		err := s.fetcher.Do(ctx, "list pr timeline", func() (*github.Response, error) {
			var err error
			events, resp, err = s.fetcher.Client().Issues.ListIssueTimeline(ctx, pr.RepoOwner, pr.RepoName, pr.Number, opts)
			return resp, err
		})
		if err != nil {
			return 0, nil, err
		}

		for _, event := range events {
			if event.GetEvent() != "cross-referenced" {
				continue
			}
			source := event.GetSource()
			if source == nil || source.GetType() != "issue" || source.Issue == nil {
				continue
			}

			issue := source.Issue
			issueOwner := pr.RepoOwner
			issueRepo := pr.RepoName
			if repo := issue.GetRepository(); repo != nil {
				if login := repo.GetOwner().GetLogin(); login != "" {
					issueOwner = login
				}
				if name := repo.GetName(); name != "" {
					issueRepo = name
				}
			}
			linked = append(linked, fmt.Sprintf("https://github.com/%s/%s/issues/%d", issueOwner, issueRepo, issue.GetNumber()))
		}
		return len(events), resp, nil
	})
	if err != nil {
		return fmt.Errorf("failed to fetch timeline for PR #%d: %w", pr.Number, err)
	}

	pr.LinkedIssues = linked
	return nil
}

// ParseRepoURL extracts owner and repo from a GitHub repository URL such as
// https://github.com/owner/repo or git@github.com:owner/repo.git.
func ParseRepoURL(repoURL string) (string, string, error) {
	trimmed := strings.TrimSpace(repoURL)
	trimmed = strings.TrimSuffix(trimmed, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	for _, prefix := range []string{"https://github.com/", "http://github.com/", "git@github.com:", "github.com/"} {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimPrefix(trimmed, prefix)
			parts := strings.Split(trimmed, "/")
			if len(parts) >= 2 && parts[0] != "" && parts[1] != "" {
				return parts[0], parts[1], nil
			}
			break
		}
	}
	return "", "", fmt.Errorf("invalid repository URL: %s", repoURL)
}

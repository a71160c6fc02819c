package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/hirewire/gitscore/internal/ghapi"
	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/pkg/logger"
)

// eventsMaxPages pages deeper than the default ceiling because the events
// feed is the only commit source when the contribution calendar is
// unavailable.
const eventsMaxPages = 30

var knownBots = map[string]bool{
	"dependabot":       true,
	"renovate":         true,
	"greenkeeper":      true,
	"snyk-bot":         true,
	"codecov":          true,
	"allcontributors":  true,
	"stale":            true,
	"mergify":          true,
	"imgbot":           true,
	"github-actions":   true,
	"actions-user":     true,
	"prettier-ci":      true,
	"semantic-release": true,
}

// frameworkKeywords maps a framework name to the patterns that identify it in
// repository names, descriptions, and topics. Patterns are matched with word
// boundaries against names and descriptions to avoid false positives.
var frameworkKeywords = map[string][]string{
	"React":       {"react", "reactjs", "react.js"},
	"Spring Boot": {"spring-boot", "springboot", "spring boot"},
	"Django":      {"django"},
	"Node.js":     {"node.js", "nodejs", "node"},
	".NET":        {"dotnet", ".net", "asp.net", "csharp"},
	"Angular":     {"angular", "angularjs", "angular.js"},
	"Go":          {"go", "golang"},
	"Vue.js":      {"vue", "vuejs", "vue.js"},
	"Next.js":     {"next.js", "nextjs", "next"},
	"Express":     {"express", "expressjs"},
	"Flask":       {"flask"},
	"FastAPI":     {"fastapi", "fast-api"},
	"Laravel":     {"laravel"},
	"Rails":       {"rails", "ruby-on-rails"},
	"Spring":      {"spring"},
	"TensorFlow":  {"tensorflow", "tf"},
	"PyTorch":     {"pytorch"},
	"Kubernetes":  {"kubernetes", "k8s"},
	"Docker":      {"docker"},
	"TypeScript":  {"typescript", "ts"},
	"Svelte":      {"svelte"},
	"Nuxt":        {"nuxt", "nuxtjs"},
}

// ProfileService fetches the raw GitHub activity a candidate's profile
// metrics are computed from.
type ProfileService struct {
	fetcher   *ghapi.Fetcher
	collector *ghapi.Collector
	graphql   *ghapi.GraphQLClient
}

// NewProfileService creates a new ProfileService
func NewProfileService(fetcher *ghapi.Fetcher, collector *ghapi.Collector, graphql *ghapi.GraphQLClient) *ProfileService {
	return &ProfileService{
		fetcher:   fetcher,
		collector: collector,
		graphql:   graphql,
	}
}

// IsBotLogin reports whether the username alone marks the account as a bot.
func IsBotLogin(username string) bool {
	lower := strings.ToLower(username)
	switch {
	case strings.HasSuffix(lower, "[bot]"),
		strings.HasSuffix(lower, "-bot"),
		strings.HasSuffix(lower, "_bot"),
		strings.HasPrefix(lower, "bot-"),
		strings.HasPrefix(lower, "bot_"):
		return true
	}
	return knownBots[lower]
}

// IsBot combines the username check with the API-reported account type.
func (s *ProfileService) IsBot(username string, user *github.User) bool {
	if IsBotLogin(username) {
		logger.WithField("username", username).Infof("detected bot account by username pattern")
		return true
	}
	if user != nil && strings.EqualFold(user.GetType(), "Bot") {
		logger.WithField("username", username).Infof("detected bot account by API type")
		return true
	}
	return false
}

// FetchUser fetches the user's profile.
func (s *ProfileService) FetchUser(ctx context.Context, username string) (*github.User, error) {
	var user *github.User
	err := s.fetcher.Do(ctx, "get user", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		user, resp, err = s.fetcher.Client().Users.Get(ctx, username)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", username, err)
	}
	return user, nil
}

// FetchRepoCount returns the number of public repositories the user owns.
// Contributed-to repositories are deliberately not counted.
func (s *ProfileService) FetchRepoCount(ctx context.Context, username string) (int, error) {
	user, err := s.FetchUser(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.GetPublicRepos(), nil
}

// MergedPRData is the result of FetchMergedPRs.
type MergedPRData struct {
	TotalPRsMerged int
	AvgPRsPerWeek  float64
	PRs            []*models.PullRequest
}

// FetchMergedPRs collects the user's merged PRs across all repositories via
// the search API, then fetches each PR for its merge date. The weekly average
// covers the last 365 days only, over the weeks elapsed since the first PR in
// that window (capped at 52 so long-tenured contributors are not diluted).
//
// Failures on individual PRs are logged and skipped; an exhausted rate limit
// or a bad token aborts the whole fetch.
func (s *ProfileService) FetchMergedPRs(ctx context.Context, username string) (*MergedPRData, error) {
	query := fmt.Sprintf("author:%s type:pr is:merged", username)
	var prs []*models.PullRequest

	err := s.collector.CollectPages(ctx, 100, func(page int) (int, *github.Response, error) {
		opts := &github.SearchOptions{
			Sort:        "updated",
			Order:       "desc",
			ListOptions: github.ListOptions{PerPage: 100, Page: page},
		}

		var result *github.IssuesSearchResult
		var resp *github.Response
		err := s.fetcher.Do(ctx, "search merged prs", func() (*github.Response, error) {
			var err error
			result, resp, err = s.fetcher.Client().Search.Issues(ctx, query, opts)
			return resp, err
		})
		if err != nil {
			return 0, nil, err
		}

		for _, issue := range result.Issues {
			pr, err := s.fetchFullPR(ctx, issue)
			if err != nil {
				if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
					return 0, nil, err
				}
				logger.WithError(err).Warnf("skipping PR #%d", issue.GetNumber())
				continue
			}
			if pr != nil && pr.IsMerged() {
				prs = append(prs, pr)
			}
		}
		return len(result.Issues), resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merged PRs for %s: %w", username, err)
	}

	data := &MergedPRData{
		TotalPRsMerged: len(prs),
		AvgPRsPerWeek:  averagePRsPerWeek(prs, time.Now().UTC()),
		PRs:            prs,
	}

	logger.WithFields(map[string]interface{}{
		"username":         username,
		"total_prs_merged": data.TotalPRsMerged,
		"avg_prs_per_week": data.AvgPRsPerWeek,
	}).Infof("fetched merged PRs")

	return data, nil
}

func (s *ProfileService) fetchFullPR(ctx context.Context, issue *github.Issue) (*models.PullRequest, error) {
	owner, repo, err := splitRepoFromIssueURL(issue.GetHTMLURL())
	if err != nil {
		return nil, err
	}

	if err := s.collector.Wait(ctx); err != nil {
		return nil, err
	}

	var pr *github.PullRequest
	err = s.fetcher.Do(ctx, "get pull request", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		pr, resp, err = s.fetcher.Client().PullRequests.Get(ctx, owner, repo, issue.GetNumber())
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	return convertPullRequest(owner, repo, pr), nil
}

// averagePRsPerWeek computes the merge rate over PRs from the last 365 days.
// The denominator is the days since the earliest such PR, in weeks, clamped
// to [1, 52].
func averagePRsPerWeek(prs []*models.PullRequest, now time.Time) float64 {
	oneYearAgo := now.AddDate(0, 0, -365)

	var lastYear []time.Time
	for _, pr := range prs {
		if pr.MergedAt != nil && !pr.MergedAt.Before(oneYearAgo) {
			lastYear = append(lastYear, *pr.MergedAt)
		}
	}
	if len(lastYear) == 0 {
		return 0.0
	}

	earliest := lastYear[0]
	for _, t := range lastYear[1:] {
		if t.Before(earliest) {
			earliest = t
		}
	}

	days := int(now.Sub(earliest).Hours() / 24)
	weeks := float64(days) / 7.0
	if weeks < 1 {
		weeks = 1
	}
	if weeks > 52 {
		weeks = 52
	}
	return round2(float64(len(lastYear)) / weeks)
}

// FetchTechStack collects the languages and frameworks the user works with by
// combining the per-repository languages API with keyword scans of repo
// names, descriptions, and topics. A rate limit mid-scan keeps whatever was
// gathered so far instead of failing the candidate.
func (s *ProfileService) FetchTechStack(ctx context.Context, username string) ([]string, error) {
	technologies := make(map[string]bool)

	err := s.collector.CollectPages(ctx, 100, func(page int) (int, *github.Response, error) {
		opts := &github.RepositoryListOptions{
			Type:        "all",
			Sort:        "updated",
			ListOptions: github.ListOptions{PerPage: 100, Page: page},
		}

		var repos []*github.Repository
		var resp *github.Response
		err := s.fetcher.Do(ctx, "list repos", func() (*github.Response, error) {
			var err error
			repos, resp, err = s.fetcher.Client().Repositories.List(ctx, username, opts)
			return resp, err
		})
		if err != nil {
			return 0, nil, err
		}

		for _, repo := range repos {
			if err := s.addRepoLanguages(ctx, repo, technologies); err != nil {
				if ghapi.IsRateLimited(err) {
					logger.Warnf("rate limit hit while fetching languages, keeping %d technologies gathered so far", len(technologies))
					return 0, nil, nil
				}
				logger.WithError(err).Debugf("skipping languages for %s", repo.GetFullName())
			}
			scanRepoForFrameworks(repo, technologies)
		}
		return len(repos), resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tech stack for %s: %w", username, err)
	}

	stack := make([]string, 0, len(technologies))
	for tech := range technologies {
		stack = append(stack, tech)
	}
	sort.Strings(stack)

	logger.WithFields(map[string]interface{}{
		"username":     username,
		"technologies": len(stack),
	}).Infof("fetched tech stack")

	return stack, nil
}

func (s *ProfileService) addRepoLanguages(ctx context.Context, repo *github.Repository, technologies map[string]bool) error {
	if err := s.collector.Wait(ctx); err != nil {
		return err
	}

	var languages map[string]int
	err := s.fetcher.Do(ctx, "list languages", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		languages, resp, err = s.fetcher.Client().Repositories.ListLanguages(ctx, repo.GetOwner().GetLogin(), repo.GetName())
		return resp, err
	})
	if err != nil {
		return err
	}

	for lang := range languages {
		technologies[lang] = true
	}
	return nil
}

func scanRepoForFrameworks(repo *github.Repository, technologies map[string]bool) {
	name := strings.ToLower(repo.GetName())
	description := strings.ToLower(repo.GetDescription())
	topics := make([]string, len(repo.Topics))
	for i, topic := range repo.Topics {
		topics[i] = strings.ToLower(topic)
	}

	for framework, keywords := range frameworkKeywords {
		if matchesFramework(keywords, name, description, topics) {
			technologies[framework] = true
		}
	}
}

func matchesFramework(keywords []string, name, description string, topics []string) bool {
	for _, kw := range keywords {
		for _, topic := range topics {
			if strings.Contains(topic, kw) {
				return true
			}
		}
	}
	for _, kw := range keywords {
		pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			continue
		}
		if pattern.MatchString(name) || pattern.MatchString(description) {
			return true
		}
	}
	return false
}

// FetchContributions returns the candidate's contribution history, preferring
// the GraphQL contribution calendar and falling back to the public events
// feed when the calendar is unavailable or empty. The two feeds are never
// combined: they overlap, and merging them would double count.
func (s *ProfileService) FetchContributions(ctx context.Context, username string, years []int) (models.HeatmapSource, error) {
	var calendar []models.ContributionEvent
	calendarOK := true
	for _, year := range years {
		events, err := s.graphql.ContributionCalendar(ctx, username, year)
		if err != nil {
			if ghapi.IsRateLimited(err) || ghapi.IsUnauthorized(err) {
				return models.HeatmapSource{}, err
			}
			logger.WithError(err).Warnf("contribution calendar unavailable for %s year %d", username, year)
			calendarOK = false
			break
		}
		calendar = append(calendar, events...)
	}

	if calendarOK && len(calendar) > 0 {
		return models.CalendarSource(calendar), nil
	}

	logger.WithField("username", username).Infof("falling back to events feed for contributions")
	events, err := s.fetchCommitEvents(ctx, username)
	if err != nil {
		return models.HeatmapSource{}, err
	}
	return models.EventSource(events), nil
}

// fetchCommitEvents reconstructs commit activity from the public events feed.
// Push payloads carry at most 20 commits, so the push size field is the
// authoritative count. When the feed yields nothing, the commit search API is
// tried as a last resort.
func (s *ProfileService) fetchCommitEvents(ctx context.Context, username string) ([]models.ContributionEvent, error) {
	var events []models.ContributionEvent

	err := s.collector.CollectPagesLimit(ctx, eventsMaxPages, 100, func(page int) (int, *github.Response, error) {
		opts := &github.ListOptions{PerPage: 100, Page: page}

		var feed []*github.Event
		var resp *github.Response
		err := s.fetcher.Do(ctx, "list user events", func() (*github.Response, error) {
			var err error
			feed, resp, err = s.fetcher.Client().Activity.ListEventsPerformedByUser(ctx, username, true, opts)
			return resp, err
		})
		if err != nil {
			return 0, nil, err
		}

		for _, event := range feed {
			if event.GetType() != "PushEvent" {
				continue
			}
			payload, err := event.ParsePayload()
			if err != nil {
				logger.WithError(err).Debugf("skipping unparseable push event")
				continue
			}
			push, ok := payload.(*github.PushEvent)
			if !ok {
				continue
			}

			count := push.GetSize()
			if count == 0 {
				count = len(push.Commits)
			}
			if count == 0 {
				continue
			}
			events = append(events, models.ContributionEvent{
				Date:  event.GetCreatedAt().Time,
				Count: count,
			})
		}
		return len(feed), resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for %s: %w", username, err)
	}

	if len(events) == 0 {
		logger.WithField("username", username).Warnf("no push events found, trying commit search")
		return s.searchCommits(ctx, username)
	}
	return events, nil
}

func (s *ProfileService) searchCommits(ctx context.Context, username string) ([]models.ContributionEvent, error) {
	if err := s.collector.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("author:%s", username)
	opts := &github.SearchOptions{
		Sort:        "author-date",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var result *github.CommitsSearchResult
	err := s.fetcher.Do(ctx, "search commits", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		result, resp, err = s.fetcher.Client().Search.Commits(ctx, query, opts)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search commits for %s: %w", username, err)
	}

	var events []models.ContributionEvent
	for _, item := range result.Commits {
		date := item.GetCommit().GetAuthor().GetDate()
		if date.IsZero() {
			continue
		}
		events = append(events, models.ContributionEvent{Date: date.Time, Count: 1})
	}
	return events, nil
}

// splitRepoFromIssueURL extracts owner and repo from an issue's HTML URL,
// e.g. https://github.com/owner/repo/pull/42.
func splitRepoFromIssueURL(htmlURL string) (string, string, error) {
	trimmed := strings.TrimPrefix(htmlURL, "https://github.com/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("cannot parse repository from URL %q", htmlURL)
	}
	return parts[0], parts[1], nil
}

func convertPullRequest(owner, repo string, pr *github.PullRequest) *models.PullRequest {
	if pr == nil {
		return nil
	}

	labels := make([]string, 0, len(pr.Labels))
	for _, label := range pr.Labels {
		labels = append(labels, label.GetName())
	}

	converted := &models.PullRequest{
		Number:       pr.GetNumber(),
		RepoOwner:    owner,
		RepoName:     repo,
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		URL:          pr.GetHTMLURL(),
		Labels:       labels,
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		CommitsCount: pr.GetCommits(),
		Author:       pr.GetUser().GetLogin(),
	}
	if pr.CreatedAt != nil {
		t := pr.CreatedAt.Time
		converted.CreatedAt = &t
	}
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time
		converted.MergedAt = &t
	}
	if pr.ClosedAt != nil {
		t := pr.ClosedAt.Time
		converted.ClosedAt = &t
	}
	return converted
}

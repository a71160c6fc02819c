package models

import "time"

// PullRequest represents a pull request fetched from the GitHub API.
// It is built in two passes: the base object from the search/listing endpoint,
// then files, commits, and linked issues from per-PR sub-fetches. It is not
// mutated after enrichment; scoring attaches derived fields onto a ScoredPullRequest copy.
type PullRequest struct {
	Number       int        `json:"number"`
	RepoOwner    string     `json:"repo_owner"`
	RepoName     string     `json:"repo_name"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	URL          string     `json:"url"`
	Labels       []string   `json:"labels"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changed_files"`
	CommitsCount int        `json:"commits_count"`
	Author       string     `json:"author"`
	LinkedIssues []string   `json:"linked_issues"`
	CreatedAt    *time.Time `json:"created_at"`
	MergedAt     *time.Time `json:"merged_at"`
	ClosedAt     *time.Time `json:"closed_at"`
}

// IsMerged reports whether the pull request was merged. Unmerged PRs are
// excluded from all scoring.
func (pr *PullRequest) IsMerged() bool {
	return pr.MergedAt != nil
}

// ScoredPullRequest is a scored copy of a pull request with the structural
// quality score attached.
type ScoredPullRequest struct {
	PullRequest
	Score       float64 `json:"score"`
	LabelScore  float64 `json:"label_score"`
	LinesOfCode int     `json:"lines_of_code"`
}

package models

// Contributor represents a repository contributor at fetch time.
// Rank is 1-based and positional within a single fetch snapshot; re-fetching
// may reorder ties, so rank is never persisted as a stable identifier.
type Contributor struct {
	Login         string `json:"login"`
	Rank          int    `json:"rank"`
	Contributions int    `json:"contributions"`
}

package models

// ScoreBreakdown holds the six sub-scores that make up a git score, each on a
// 0-100 scale.
type ScoreBreakdown struct {
	PRActivity     float64 `json:"pr_activity"`
	Consistency    float64 `json:"consistency"`
	CommentQuality float64 `json:"comment_quality"`
	PRQuality      float64 `json:"pr_quality"`
	TimeTaken      float64 `json:"time_taken"`
	NumRepos       float64 `json:"num_repos"`
}

// ProfileMetrics are the raw metrics mined from a candidate's GitHub profile.
type ProfileMetrics struct {
	TotalPRsMerged   int          `json:"total_prs_merged"`
	AvgPRsPerWeek    float64      `json:"avg_prs_per_week"`
	ConsistencyScore float64      `json:"consistency_score"`
	NumRepos         int          `json:"num_repos"`
	TechStack        []string     `json:"tech_stack"`
	Heatmap          YearHeatmaps `json:"contribution_heatmap"`
}

// AgentMetrics are optional 0-5 scores produced by the external review agent.
// A nil field means the agent did not score that dimension; the aggregator
// substitutes the neutral midpoint.
type AgentMetrics struct {
	CommentQuality *float64 `json:"comment_quality"`
	PRQuality      *float64 `json:"pr_quality"`
	TimeTaken      *float64 `json:"time_taken"`
}

// ScoreWeights is the relative weight of each sub-score in the final git
// score. Weights need not sum to one; the aggregator normalizes.
type ScoreWeights struct {
	PRActivity     float64
	Consistency    float64
	CommentQuality float64
	PRQuality      float64
	TimeTaken      float64
	NumRepos       float64
}

// DefaultScoreWeights returns equal weighting across all six metrics.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		PRActivity:     1.0,
		Consistency:    1.0,
		CommentQuality: 1.0,
		PRQuality:      1.0,
		TimeTaken:      1.0,
		NumRepos:       1.0,
	}
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.PRActivity + w.Consistency + w.CommentQuality + w.PRQuality + w.TimeTaken + w.NumRepos
}

// GitScoreResult is the final score plus its per-metric breakdown.
type GitScoreResult struct {
	GitScore  float64        `json:"git_score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

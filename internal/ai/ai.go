package ai

import "context"

// ScoredCandidate is the scorer's verdict on a single resume. Score is an
// integer in [0, 100]; Summary, MatchReason and Gaps are short free-text
// fields produced by the model.
type ScoredCandidate struct {
	ID          string `json:"id" mapstructure:"id"`
	Score       int    `json:"score" mapstructure:"score"`
	Summary     string `json:"summary" mapstructure:"summary"`
	MatchReason string `json:"match_reason" mapstructure:"match_reason"`
	Gaps        string `json:"gaps" mapstructure:"gaps"`
}

// CandidateExcerpt is what the scorer sees of a resume: its id, the
// candidate's display name, and a bounded excerpt of the extracted text.
type CandidateExcerpt struct {
	ID      string
	Name    string
	Excerpt string
}

// Scorer judges a set of candidates against a free-text job query in a
// single call. Output order is not guaranteed; callers re-sort. Scorer
// implementations degrade internally on provider failures and only return
// an error when they cannot produce even a fallback ranking.
type Scorer interface {
	Score(ctx context.Context, query string, candidates []CandidateExcerpt) ([]ScoredCandidate, error)
}

// Embedder converts text into a fixed-length vector. Implementations
// truncate over-long input rather than rejecting it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NameExtractor pulls a candidate's display name out of raw resume text.
type NameExtractor interface {
	ExtractName(ctx context.Context, resumeText string) (string, error)
}

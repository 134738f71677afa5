package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dshevko/talentsift/internal/ai"
	"github.com/dshevko/talentsift/internal/logger"
	"github.com/dshevko/talentsift/internal/store"
	"go.uber.org/zap"
)

const (
	// DefaultTopK is the similarity-search result limit used when the
	// caller does not ask for a specific one.
	DefaultTopK = 20

	// maxExcerptChars bounds the per-candidate resume excerpt sent to the
	// scorer, keeping the single scoring call within token limits.
	maxExcerptChars = 1500
)

// ErrEmptyQuery is returned when the query is empty or whitespace-only.
var ErrEmptyQuery = errors.New("query must not be empty")

// SimilaritySearcher answers nearest-K by cosine similarity, optionally
// restricted to a set of batch labels.
type SimilaritySearcher interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, batchFilter []string, limit int) ([]store.CandidateMatch, error)
}

// RankedCandidate is a retrieved resume with the scorer's verdict attached.
type RankedCandidate struct {
	ResumeID       string `json:"resume_id"`
	CandidateName  string `json:"candidate_name"`
	BatchName      string `json:"batch_name"`
	FileName       string `json:"file_name"`
	StoragePath    string `json:"storage_path"`
	SimilarityRank int    `json:"similarity_rank"`
	Score          int    `json:"score"`
	Summary        string `json:"summary,omitempty"`
	MatchReason    string `json:"match_reason"`
	Gaps           string `json:"gaps,omitempty"`
}

// Pipeline orchestrates embedding, similarity retrieval and LLM scoring
// for one query. It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	embedder ai.Embedder
	searcher SimilaritySearcher
	scorer   ai.Scorer
	logger   *zap.Logger
}

func New(embedder ai.Embedder, searcher SimilaritySearcher, scorer ai.Scorer, log *zap.Logger) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		searcher: searcher,
		scorer:   scorer,
		logger:   log,
	}
}

// Rank runs the full retrieval-and-ranking pass: embed the query, retrieve
// the nearest resumes, score the batch in one LLM call, and merge.
//
// Embedding and retrieval errors propagate. Scoring failures never do: the
// scorer degrades to zero-score fallback entries, so whenever retrieval
// found anything the caller gets a renderable list. An empty slice with a
// nil error means no matches, which is an outcome, not an error.
//
// Candidates are ordered by descending score. Equal scores keep the
// store's similarity order.
func (p *Pipeline) Rank(ctx context.Context, query string, batchFilter []string, topK int) ([]RankedCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if topK <= 0 {
		topK = DefaultTopK
	}

	p.logger.Info("ranking candidates",
		zap.String("query_preview", logger.TruncateForLog(query, 80)),
		zap.Strings("batch_filter", batchFilter),
		zap.Int("top_k", topK),
	)

	embedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := p.searcher.SearchByEmbedding(ctx, embedding, batchFilter, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	if len(matches) == 0 {
		p.logger.Info("no matching resumes found")
		return []RankedCandidate{}, nil
	}

	excerpts := make([]ai.CandidateExcerpt, 0, len(matches))
	for _, m := range matches {
		excerpts = append(excerpts, ai.CandidateExcerpt{
			ID:      m.ID,
			Name:    m.CandidateName,
			Excerpt: truncateRunes(m.ExtractedText, maxExcerptChars),
		})
	}

	scored, err := p.scorer.Score(ctx, query, excerpts)
	if err != nil {
		// The gemini scorer degrades internally; this guards custom
		// ai.Scorer implementations that surface errors instead.
		p.logger.Warn("scorer returned an error, using fallback ranking", zap.Error(err))
		scored = make([]ai.ScoredCandidate, 0, len(excerpts))
		for _, e := range excerpts {
			scored = append(scored, ai.ScoredCandidate{
				ID:          e.ID,
				MatchReason: fmt.Sprintf("Scoring failed: %v", err),
			})
		}
	}

	ranked := merge(matches, scored)

	p.logger.Info("ranking complete",
		zap.Int("retrieved", len(matches)),
		zap.Int("ranked", len(ranked)),
	)

	return ranked, nil
}

// merge walks the matches in similarity order, attaches scores by resume
// id, and stable-sorts by descending score. Scorer entries referencing
// unknown ids are dropped; matches the scorer skipped are dropped too.
func merge(matches []store.CandidateMatch, scored []ai.ScoredCandidate) []RankedCandidate {
	scoreByID := make(map[string]ai.ScoredCandidate, len(scored))
	for _, s := range scored {
		if _, ok := scoreByID[s.ID]; !ok {
			scoreByID[s.ID] = s
		}
	}

	ranked := make([]RankedCandidate, 0, len(matches))
	for _, m := range matches {
		s, ok := scoreByID[m.ID]
		if !ok {
			continue
		}
		ranked = append(ranked, RankedCandidate{
			ResumeID:       m.ID,
			CandidateName:  m.CandidateName,
			BatchName:      m.BatchName,
			FileName:       m.FileName,
			StoragePath:    m.StoragePath,
			SimilarityRank: m.Rank,
			Score:          s.Score,
			Summary:        s.Summary,
			MatchReason:    s.MatchReason,
			Gaps:           s.Gaps,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

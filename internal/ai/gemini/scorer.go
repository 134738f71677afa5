package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/dshevko/talentsift/internal/ai"
	"github.com/dshevko/talentsift/internal/logger"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// RetryPolicy bounds retries on rate-limit errors. Backoff holds the delay
// before each extra attempt; Sleep is injectable for tests.
type RetryPolicy struct {
	Backoff []time.Duration
	Sleep   func(time.Duration)
}

func defaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Backoff: []time.Duration{time.Minute, 2 * time.Minute},
		Sleep:   time.Sleep,
	}
}

// Scorer asks Gemini to score a whole candidate batch against a job query
// in one call. Provider failures degrade to a zero-score fallback ranking
// instead of propagating, so callers always have a renderable list.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	retry     RetryPolicy
	now       func() time.Time
	maxLogLen int
}

func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		retry:     defaultRetryPolicy(),
		now:       time.Now,
		maxLogLen: maxLogLength,
	}
}

// Score implements ai.Scorer. The returned slice is sorted by descending
// score; its ids are always a subset of the input ids.
func (s *Scorer) Score(ctx context.Context, query string, candidates []ai.CandidateExcerpt) ([]ai.ScoredCandidate, error) {
	if len(candidates) == 0 {
		return []ai.ScoredCandidate{}, nil
	}

	prompt := buildScoringPrompt(query, candidates, s.now())

	s.logger.Debug("gemini scoring request",
		zap.Int("candidates", len(candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("scoring degraded to fallback ranking", zap.Error(err))
		return fallbackScores(candidates, err), nil
	}

	s.logger.Debug("gemini scoring response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	scored, err := parseScores(raw, candidates)
	if err != nil {
		s.logger.Warn("scoring response unparseable, falling back", zap.Error(err))
		return fallbackScores(candidates, err), nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored, nil
}

// generate calls the model, retrying a bounded number of times when the
// provider signals rate limiting. Other errors fail immediately.
func (s *Scorer) generate(ctx context.Context, prompt string) (string, error) {
	attempts := len(s.retry.Backoff) + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		raw, err := s.generator.GenerateContent(ctx, prompt)
		if err == nil {
			return raw, nil
		}

		lastErr = err
		if !isRateLimited(err) || attempt == attempts-1 {
			return "", err
		}

		delay := s.retry.Backoff[attempt]
		s.logger.Warn("gemini rate limited, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		s.retry.Sleep(delay)
	}

	return "", lastErr
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}

func buildScoringPrompt(query string, candidates []ai.CandidateExcerpt, now time.Time) string {
	blocks := make([]string, 0, len(candidates))
	for i, c := range candidates {
		blocks = append(blocks, fmt.Sprintf(
			"CANDIDATE %d\nID: %s\nName: %s\nResume excerpt:\n%s\n",
			i+1, c.ID, c.Name, c.Excerpt,
		))
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{CURRENT_DATE}}", now.Format("2006-01-02"))
	prompt = strings.ReplaceAll(prompt, "{{JOB_QUERY}}", query)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES}}", strings.Join(blocks, "\n---\n"))

	return prompt
}

// parseScores decodes the model's JSON array into ScoredCandidates. It
// tolerates code fences, the legacy "reason" field name, and stringified
// numbers; entries referencing ids outside the input set are dropped.
func parseScores(raw string, candidates []ai.CandidateExcerpt) ([]ai.ScoredCandidate, error) {
	cleaned := extractJSON(raw)

	var items []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("parse scoring response: %w", err)
	}

	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}

	scored := make([]ai.ScoredCandidate, 0, len(items))
	for _, item := range items {
		if _, ok := item["match_reason"]; !ok {
			if reason, ok := item["reason"]; ok {
				item["match_reason"] = reason
			}
		}

		var sc ai.ScoredCandidate
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &sc,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, fmt.Errorf("build score decoder: %w", err)
		}
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("decode score entry: %w", err)
		}

		if _, ok := known[sc.ID]; !ok {
			continue
		}

		if sc.Score < 0 {
			sc.Score = 0
		}
		if sc.Score > 100 {
			sc.Score = 100
		}

		scored = append(scored, sc)
	}

	return scored, nil
}

// fallbackScores gives every candidate a zero score with a rationale naming
// the failure, so retrieval results stay renderable.
func fallbackScores(candidates []ai.CandidateExcerpt, cause error) []ai.ScoredCandidate {
	scored := make([]ai.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, ai.ScoredCandidate{
			ID:          c.ID,
			Score:       0,
			MatchReason: fmt.Sprintf("Scoring failed: %v", cause),
		})
	}
	return scored
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

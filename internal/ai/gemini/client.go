package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultEmbeddingModel = "text-embedding-004"

	// Embedding models enforce input-length limits; over-long text is
	// truncated, not rejected, since resumes and queries front-load the
	// salient content.
	maxEmbedChars = 8000

	// The candidate name lives at the top of a resume.
	maxNameSnippetChars = 400
	maxNameLength       = 80
)

// modelsAPI is the slice of genai.Models the client needs. Kept narrow so
// tests can substitute a fake.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Client wraps the Google GenAI client for text generation and embeddings.
type Client struct {
	models     modelsAPI
	model      string
	embedModel string
	logger     *zap.Logger
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model, embedModel string, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if embedModel = strings.TrimSpace(embedModel); embedModel == "" {
		embedModel = defaultEmbeddingModel
	}

	return &Client{
		models:     client.Models,
		model:      model,
		embedModel: embedModel,
		logger:     logger,
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the textual response.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.models == nil {
		return "", errors.New("gemini client is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Embed returns a fixed-length embedding vector for the given text,
// truncated to the model's input budget first.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c == nil || c.models == nil {
		return nil, errors.New("gemini client is not initialized")
	}

	text = truncateRunes(text, maxEmbedChars)
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text to embed must not be empty")
	}

	cfg := &genai.EmbedContentConfig{TaskType: "RETRIEVAL_DOCUMENT"}

	resp, err := c.models.EmbedContent(ctx, c.embedModel, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	return resp.Embeddings[0].Values, nil
}

// ExtractName asks the model for the candidate's full name from the top of
// the resume. The reply is sanity-checked; anything implausible comes back
// as "Unknown" so callers can fall through to a heuristic.
func (c *Client) ExtractName(ctx context.Context, resumeText string) (string, error) {
	snippet := truncateRunes(resumeText, maxNameSnippetChars)

	prompt := "Extract the candidate's full name from the following resume text. " +
		"Return ONLY the name, nothing else. If you cannot determine the name, return 'Unknown'.\n\n" +
		"Resume text:\n" + snippet

	name, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if len([]rune(name)) > maxNameLength || strings.Contains(name, "\n") {
		return "Unknown", nil
	}

	return name, nil
}

// Model returns the configured generation model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

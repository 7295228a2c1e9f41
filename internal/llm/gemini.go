// Package llm provides the optional Gemini-backed collaborators: an
// embedding function for semantic scoring and a free-text explanation
// generator for flagged repository pairs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/repoguard/repoguard/pkg/models"
	"github.com/repoguard/repoguard/pkg/similarity"
	genai "google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produces no candidates.
var ErrEmptyResponse = errors.New("llm: empty response from model")

const (
	defaultEmbedModel = "gemini-embedding-001"
	defaultTextModel  = "gemini-2.0-flash"
	maxAttempts       = 3
)

// Client is a thin wrapper around the official genai client.
type Client struct {
	cli        *genai.Client
	embedModel string
	textModel  string
}

// Option configures a Client.
type Option func(*Client)

// WithEmbedModel overrides the embedding model.
func WithEmbedModel(model string) Option {
	return func(c *Client) {
		c.embedModel = model
	}
}

// WithTextModel overrides the text generation model.
func WithTextModel(model string) Option {
	return func(c *Client) {
		c.textModel = model
	}
}

// NewClient creates a Gemini client. Credentials come from the
// environment (GEMINI_API_KEY / GOOGLE_API_KEY).
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	c := &Client{
		cli:        cli,
		embedModel: defaultEmbedModel,
		textModel:  defaultTextModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EmbedFunc returns the batch embedding function the similarity engine
// consumes. The engine stays agnostic to model and dimensionality.
func (c *Client) EmbedFunc() similarity.EmbedFunc {
	return func(ctx context.Context, texts []string) ([][]float64, error) {
		contents := make([]*genai.Content, len(texts))
		for i, t := range texts {
			contents[i] = &genai.Content{Parts: []*genai.Part{{Text: t}}}
		}

		var resp *genai.EmbedContentResponse
		var err error
		for attempt := 0; attempt < maxAttempts; attempt++ {
			resp, err = c.cli.Models.EmbedContent(ctx, c.embedModel, contents, nil)
			if err == nil {
				break
			}
			slog.Warn("embedding call failed", "attempt", attempt+1, "err", err)
			time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
		}
		if err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != len(texts) {
			return nil, fmt.Errorf("llm: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
		}

		vectors := make([][]float64, len(resp.Embeddings))
		for i, emb := range resp.Embeddings {
			vec := make([]float64, len(emb.Values))
			for d, v := range emb.Values {
				vec[d] = float64(v)
			}
			vectors[i] = vec
		}
		return vectors, nil
	}
}

// Explain generates a short prose explanation for a flagged repository
// pair. Used through the service's Explainer capability; when the
// capability is absent the report carries an empty explanation instead.
func (c *Client) Explain(ctx context.Context, pair models.RepoPairResult) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Two code repositories were compared for potential reuse.\n")
	fmt.Fprintf(&sb, "Repository A: %s\nRepository B: %s\n", pair.RepoA, pair.RepoB)
	fmt.Fprintf(&sb, "Overall similarity: %.2f\n", pair.RepoSimilarity)
	fmt.Fprintf(&sb, "Top similar file pairs:\n")
	for i, fp := range pair.FilePairs {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "- %s vs %s: %.2f (%s)\n", fp.FileA, fp.FileB, fp.CombinedScore, fp.Band)
	}
	sb.WriteString("\nIn two or three sentences, explain what this similarity level suggests about code reuse between the repositories. Be factual; this is a similarity signal, not a verdict.")

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := c.cli.Models.GenerateContent(ctx, c.textModel,
			[]*genai.Content{{Parts: []*genai.Part{{Text: sb.String()}}}}, nil)
		if err != nil {
			lastErr = err
		} else if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = ErrEmptyResponse
		} else {
			return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
		}
		time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
	}
	return "", lastErr
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hrassist/recruiter/internal/recruiterr"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Generator wraps the Google GenAI client to provide simple prompt-based
// interactions. The generation backend is treated as a pure, retryable,
// possibly-slow call.
type Generator struct {
	client    *genai.Client
	modelName string
	retry     recruiterr.RetryConfig
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int) (*Generator, error) {
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

	retry := recruiterr.DefaultRetry
	if maxRetries > 0 {
		retry.Attempts = maxRetries
	}

	return &Generator{client: client, modelName: model, retry: retry}, nil
}

// GenerateContent sends the prompt to Gemini and returns the joined textual
// response. Transient backend failures are retried a bounded number of times.
func (g *Generator) GenerateContent(ctx context.Context, prompt string, temperature float32) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}

	return recruiterr.Retry(ctx, g.retry, func() (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
		if err != nil {
			return "", recruiterr.Transient(fmt.Errorf("generate content: %w", err))
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
			return "", recruiterr.Transient(errors.New("gemini api returned empty response"))
		}

		return output, nil
	})
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

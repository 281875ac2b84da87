package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiLLM implements LLMClient with the Gemini API.
type GeminiLLM struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature *float64
	MaxTokens   int
	// MaxRetries is the number of extra attempts after a failed request.
	MaxRetries int
}

// geminiRetryDelay is the wait before the first retry; it doubles per attempt.
var geminiRetryDelay = 500 * time.Millisecond

func NewGeminiLLMFromConfig(cfg *LLMSettings) (*GeminiLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing; set GEMINI_API_KEY or llm.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	return &GeminiLLM{
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		MaxRetries:  cfg.MaxRetries,
	}, nil
}

func (g *GeminiLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.BaseURL},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	var contents []*genai.Content
	for _, h := range prompt.History {
		role := genai.Role(genai.RoleUser)
		if h.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(h.Content, role))
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt.User)}
	for _, att := range prompt.Attachments {
		if att.Label != "" {
			parts = append(parts, genai.NewPartFromText(att.Label))
		}
		parts = append(parts, genai.NewPartFromBytes(att.Image.Data, att.Image.MIMEType))
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{}
	if sys := prompt.SystemText(); sys != "" {
		cfg.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	if g.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*g.Temperature))
	}
	if g.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.MaxTokens)
	}
	if prompt.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
	}

	var resp *genai.GenerateContentResponse
	err = withRetries(ctx, g.MaxRetries, geminiRetryDelay, func() error {
		var err error
		resp, err = client.Models.GenerateContent(ctx, g.Model, contents, cfg)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// withRetries calls fn until it succeeds or retries are used up, with
// exponential backoff between attempts. Cancellation ends the wait.
func withRetries(ctx context.Context, retries int, delay time.Duration, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || attempt >= retries || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		t := time.NewTimer(delay << attempt)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

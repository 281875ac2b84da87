package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 4000

// AnthropicLLM implements LLMClient with the Anthropic Messages API.
type AnthropicLLM struct {
	Model       string
	Temperature *float64
	MaxTokens   int64
	Opts        []anthropicoption.RequestOption
}

func NewAnthropicLLMFromConfig(cfg *LLMSettings) (*AnthropicLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key missing; set ANTHROPIC_API_KEY or llm.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []anthropicoption.RequestOption{anthropicoption.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, anthropicoption.WithMaxRetries(cfg.MaxRetries))
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return &AnthropicLLM{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   maxTokens,
		Opts:        opts,
	}, nil
}

func (a *AnthropicLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client := anthropic.NewClient(a.Opts...)

	var msgs []anthropic.MessageParam
	for _, h := range prompt.History {
		if h.Role == "assistant" {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(h.Content)))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(h.Content)))
	}

	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt.User)}
	for _, att := range prompt.Attachments {
		if att.Label != "" {
			blocks = append(blocks, anthropic.NewTextBlock(att.Label))
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(att.Image.MIMEType, att.Image.Base64()))
	}
	msgs = append(msgs, anthropic.NewUserMessage(blocks...))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: a.MaxTokens,
		Messages:  msgs,
	}
	if sys := prompt.SystemText(); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}
	if a.Temperature != nil {
		params.Temperature = anthropic.Float(*a.Temperature)
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic: no text content")
	}
	return sb.String(), nil
}

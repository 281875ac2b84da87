package eval

import (
	"fmt"
	"sort"
	"strings"

	"banner_agent/generator"
)

// Preset is a named judge configuration.
type Preset struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	// APIKeyEnv is the environment variable holding the provider key.
	APIKeyEnv string
}

// Presets are the judges selectable with --evaluator.
var Presets = map[string]Preset{
	"gpt5nano": {Provider: "openai", Model: "gpt-5-nano", Temperature: 1, MaxTokens: 2000, MaxRetries: 2, APIKeyEnv: "OPENAI_API_KEY"},
	"claude":   {Provider: "anthropic", Model: "claude-3-5-sonnet-20241022", Temperature: 0.3, MaxTokens: 200, MaxRetries: 2, APIKeyEnv: "ANTHROPIC_API_KEY"},
	"gemini":   {Provider: "gemini", Model: "gemini-2.5-flash", Temperature: 0.3, MaxTokens: 1000, MaxRetries: 2, APIKeyEnv: "GEMINI_API_KEY"},
	"mock":     {Provider: "mock", Model: "mock"},
}

// LookupPreset returns the preset for name.
func LookupPreset(name string) (Preset, error) {
	p, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		names := make([]string, 0, len(Presets))
		for k := range Presets {
			names = append(names, k)
		}
		sort.Strings(names)
		return Preset{}, fmt.Errorf("unknown evaluator %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return p, nil
}

// Settings converts the preset to provider settings with the given key.
func (p Preset) Settings(apiKey string) generator.LLMSettings {
	t := p.Temperature
	return generator.LLMSettings{
		Provider:    p.Provider,
		Model:       p.Model,
		APIKey:      apiKey,
		Temperature: &t,
		MaxTokens:   p.MaxTokens,
		MaxRetries:  p.MaxRetries,
	}
}

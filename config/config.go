// Package config loads banner_agent settings from JSON or YAML files and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"banner_agent/design"
	"banner_agent/generator"
)

// Config is the full application configuration.
type Config struct {
	LLM            LLMConfig     `json:"llm" yaml:"llm"`
	Canvas         design.Canvas `json:"canvas" yaml:"canvas"`
	MaxIterations  int           `json:"max_iterations" yaml:"max_iterations"`
	Strict         bool          `json:"strict" yaml:"strict"`
	OutputDir      string        `json:"output_dir" yaml:"output_dir"`
	Formats        []string      `json:"formats" yaml:"formats"`
	ArchivePath    string        `json:"archive_path" yaml:"archive_path"`
	ServerAddr     string        `json:"server_addr,omitempty" yaml:"server_addr"`
	RequestTimeout string        `json:"request_timeout" yaml:"request_timeout"`
	Preview        PreviewConfig `json:"preview" yaml:"preview"`
}

// LLMConfig selects the model used by the generator.
type LLMConfig struct {
	Provider    string   `json:"provider,omitempty" yaml:"provider"`
	Model       string   `json:"model,omitempty" yaml:"model"`
	APIKey      string   `json:"api_key,omitempty" yaml:"api_key"`
	APIKeyEnv   string   `json:"api_key_env,omitempty" yaml:"api_key_env"`
	BaseURL     string   `json:"base_url,omitempty" yaml:"base_url"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens"`
	MaxRetries  int      `json:"max_retries,omitempty" yaml:"max_retries"`
}

// PreviewConfig controls the headless-Chrome preview shown to the reviewer.
type PreviewConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	ChromeBin  string `json:"chrome_bin,omitempty" yaml:"chrome_bin"`
	ControlURL string `json:"control_url,omitempty" yaml:"control_url"`
}

var defaultModels = map[string]string{
	"openai":    "gpt-4o",
	"deepseek":  "deepseek-chat",
	"anthropic": "claude-3-5-sonnet-20241022",
	"gemini":    "gemini-2.5-flash",
	"mock":      "mock",
}

var defaultKeyEnvs = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"deepseek":  {"DEEPSEEK_API_KEY", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM:            LLMConfig{Provider: "openai", MaxRetries: 2},
		Canvas:         design.DefaultCanvas,
		MaxIterations:  generator.DefaultMaxIterations,
		OutputDir:      "banners",
		Formats:        []string{"json", "svg"},
		ArchivePath:    filepath.Join("banners", "archive.db"),
		ServerAddr:     ":8080",
		RequestTimeout: "5m",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return cfg, nil
}

// ResolveAPIKey fills LLM.APIKey from the environment when it is empty.
// llm.api_key_env wins over the provider's standard variables.
func (c *Config) ResolveAPIKey(getenv func(string) string) {
	if c.LLM.APIKey != "" {
		return
	}
	names := defaultKeyEnvs[strings.ToLower(c.LLM.Provider)]
	if c.LLM.APIKeyEnv != "" {
		names = []string{c.LLM.APIKeyEnv}
	}
	for _, name := range names {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			c.LLM.APIKey = v
			return
		}
	}
}

// Validate checks the values the pipeline depends on.
func (c Config) Validate() error {
	var errs []error
	provider := strings.ToLower(c.LLM.Provider)
	if _, ok := defaultModels[provider]; !ok {
		errs = append(errs, fmt.Errorf("llm provider %q not supported", c.LLM.Provider))
	}
	if provider == "deepseek" && c.LLM.BaseURL == "" {
		// DeepSeek speaks the OpenAI API and needs base_url.
		errs = append(errs, errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)"))
	}
	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("llm temperature %v outside 0..2", *t))
	}
	if c.LLM.MaxTokens < 0 || c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("llm max_tokens and max_retries must not be negative"))
	}
	if err := c.Canvas.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxIterations < 1 {
		errs = append(errs, generator.ErrInvalidIterations)
	}
	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Timeout parses RequestTimeout; empty means no timeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("request_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("request_timeout %s is negative", d)
	}
	return d, nil
}

// LLMSettings converts the llm block for generator constructors, filling the default model.
func (c Config) LLMSettings() generator.LLMSettings {
	provider := strings.ToLower(c.LLM.Provider)
	model := c.LLM.Model
	if model == "" {
		model = defaultModels[provider]
	}
	return generator.LLMSettings{
		Provider:    provider,
		Model:       model,
		APIKey:      c.LLM.APIKey,
		BaseURL:     c.LLM.BaseURL,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		MaxRetries:  c.LLM.MaxRetries,
	}
}

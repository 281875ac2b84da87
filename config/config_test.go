package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banner_agent/design"
	"banner_agent/generator"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, design.DefaultCanvas, cfg.Canvas)
	assert.Equal(t, 3, cfg.MaxIterations)
}

func TestLoadFormats(t *testing.T) {
	jsonPath := writeConfig(t, "config.json", `{
  "llm": {"provider": "anthropic", "api_key_env": "MY_KEY", "temperature": 0.4},
  "canvas": {"width": 300, "height": 250},
  "formats": ["figma"]
}`)
	yamlPath := writeConfig(t, "config.yaml", `
llm:
  provider: anthropic
  api_key_env: MY_KEY
  temperature: 0.4
canvas:
  width: 300
  height: 250
formats: [figma]
`)
	for _, p := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(p), func(t *testing.T) {
			cfg, err := Load(p)
			require.NoError(t, err)
			assert.Equal(t, "anthropic", cfg.LLM.Provider)
			assert.Equal(t, "MY_KEY", cfg.LLM.APIKeyEnv)
			require.NotNil(t, cfg.LLM.Temperature)
			assert.Equal(t, 0.4, *cfg.LLM.Temperature)
			assert.Equal(t, design.Canvas{Width: 300, Height: 250}, cfg.Canvas)
			assert.Equal(t, []string{"figma"}, cfg.Formats)
			// untouched keys keep their defaults
			assert.Equal(t, 3, cfg.MaxIterations)
			assert.Equal(t, 2, cfg.LLM.MaxRetries)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "bad.json", `{"llm": `))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "config.toml", `x = 1`))
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestResolveAPIKey(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY": "sk-openai",
		"GOOGLE_API_KEY": "g-key",
		"MY_KEY":         " custom ",
	}
	getenv := func(k string) string { return env[k] }

	cases := []struct {
		name string
		llm  LLMConfig
		want string
	}{
		{name: "openai", llm: LLMConfig{Provider: "openai"}, want: "sk-openai"},
		{name: "gemini falls back to google", llm: LLMConfig{Provider: "gemini"}, want: "g-key"},
		{name: "custom env", llm: LLMConfig{Provider: "openai", APIKeyEnv: "MY_KEY"}, want: "custom"},
		{name: "explicit key wins", llm: LLMConfig{Provider: "openai", APIKey: "inline"}, want: "inline"},
		{name: "missing", llm: LLMConfig{Provider: "anthropic"}, want: ""},
		{name: "mock needs none", llm: LLMConfig{Provider: "mock"}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{LLM: tc.llm}
			cfg.ResolveAPIKey(getenv)
			assert.Equal(t, tc.want, cfg.LLM.APIKey)
		})
	}
}

func TestValidate(t *testing.T) {
	hot := 3.0
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "llama" }, want: "not supported"},
		{name: "deepseek without base url", mutate: func(c *Config) { c.LLM.Provider = "deepseek" }, want: "base_url"},
		{name: "temperature", mutate: func(c *Config) { c.LLM.Temperature = &hot }, want: "temperature"},
		{name: "canvas", mutate: func(c *Config) { c.Canvas.Width = 0 }, want: "canvas"},
		{name: "iterations", mutate: func(c *Config) { c.MaxIterations = 0 }, want: "max iterations"},
		{name: "timeout", mutate: func(c *Config) { c.RequestTimeout = "soon" }, want: "request_timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLLMSettingsDefaultsModel(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "Gemini"
	s := cfg.LLMSettings()
	assert.Equal(t, "gemini", s.Provider)
	assert.Equal(t, "gemini-2.5-flash", s.Model)
	assert.Equal(t, 2, s.MaxRetries)

	cfg.LLM.Model = "gemini-2.5-pro"
	assert.Equal(t, "gemini-2.5-pro", cfg.LLMSettings().Model)

	d, err := Default().Timeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)
	assert.Equal(t, generator.DefaultMaxIterations, Default().MaxIterations)
}

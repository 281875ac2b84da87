package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"banner_agent/config"
	"banner_agent/generator"
)

const version = "0.3.0"

// cli holds the global flags and output targets; tests swap the writers.
type cli struct {
	configPath string
	provider   string
	model      string
	verbose    bool

	stdout io.Writer
	log    *logrus.Logger
}

// exitError carries a process exit status other than 1.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		var ee exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, log: logrus.New()}
	c.log.SetOutput(stderr)
	c.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:           "banner",
		Short:         "Generate banner ads with a multi-step LLM design pipeline",
		Long:          "banner turns a short advertising request and an optional logo into a reviewed banner design,\nexported as JSON, SVG, a Figma plugin or an HTML report.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.log.SetLevel(logrus.WarnLevel)
			if c.verbose {
				c.log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "path to config file (.json, .yaml)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logs")
	pf.StringVar(&c.provider, "provider", "", "llm provider: openai, deepseek, anthropic, gemini, mock")
	pf.StringVar(&c.model, "model", "", "llm model name")

	root.AddCommand(
		newCreateCmd(c),
		newEvalCmd(c),
		newServeCmd(c),
		newHistoryCmd(c),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(c.stdout, "banner version %s\n", version)
			},
		},
	)
	return root
}

// loadConfig reads the config file, applies global flags and resolves the API key.
func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.provider != "" && !strings.EqualFold(c.provider, cfg.LLM.Provider) {
		cfg.LLM.Provider = c.provider
		cfg.LLM.Model = ""
	}
	if c.model != "" {
		cfg.LLM.Model = c.model
	}
	cfg.ResolveAPIKey(os.Getenv)
	return cfg, nil
}

func (c *cli) newAgent(cfg config.Config) (*generator.Agent, error) {
	llm, err := buildLLM(cfg.LLMSettings())
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, generator.WithLogger(c.log))
}

func buildLLM(s generator.LLMSettings) (generator.LLMClient, error) {
	if s.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key_env in config")
	}
	switch s.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(&s)
	case "deepseek":
		// DeepSeek speaks the OpenAI API and needs base_url.
		if s.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(&s)
	case "anthropic":
		return generator.NewAnthropicLLMFromConfig(&s)
	case "gemini":
		return generator.NewGeminiLLMFromConfig(&s)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", s.Provider)
	}
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

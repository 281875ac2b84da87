package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"banner_agent/eval"
	"banner_agent/generator"
)

// exitMissingInput is the status used when an input image does not exist.
const exitMissingInput = 4

type evalOptions struct {
	evaluator     string
	metric        string
	imageFile     string
	logoFile      string
	bannerRequest string
	asJSON        bool
}

func newEvalCmd(c *cli) *cobra.Command {
	o := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score a rendered banner image with an LLM judge",
		Long: "Score a rendered banner image on one metric (1-5).\nMetrics: " +
			strings.Join(eval.Codes(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEval(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.evaluator, "evaluator", "gpt5nano", "judge preset: gpt5nano, claude, gemini, mock")
	f.StringVar(&o.metric, "metric", "CPYQ", "metric code: "+strings.Join(eval.Codes(), ", "))
	f.StringVar(&o.imageFile, "image_file", "", "path to the banner image to evaluate")
	f.StringVar(&o.logoFile, "logo_file", "", "path to the advertiser logo")
	f.StringVar(&o.bannerRequest, "banner_request", "", "the original banner request")
	f.BoolVar(&o.asJSON, "json", false, "print the score as JSON")
	return cmd
}

func (c *cli) runEval(cmd *cobra.Command, o *evalOptions) error {
	preset, err := eval.LookupPreset(o.evaluator)
	if err != nil {
		return err
	}
	if _, err := eval.Lookup(o.metric); err != nil {
		return err
	}
	inputs := []string{o.imageFile}
	if o.logoFile != "" {
		inputs = append(inputs, o.logoFile)
	}
	for _, p := range inputs {
		if st, err := os.Stat(p); err != nil || st.IsDir() {
			return exitError{code: exitMissingInput, err: fmt.Errorf("input file %q not found", p)}
		}
	}

	banner, err := generator.LoadImage(o.imageFile)
	if err != nil {
		return err
	}
	req := eval.Request{Metric: o.metric, Banner: banner, BannerRequest: o.bannerRequest}
	if o.logoFile != "" {
		logo, err := generator.LoadImage(o.logoFile)
		if err != nil {
			return err
		}
		req.Logo = &logo
	}

	settings := preset.Settings(os.Getenv(preset.APIKeyEnv))
	if c.model != "" {
		settings.Model = c.model
	}
	llm, err := buildLLM(settings)
	if err != nil {
		return err
	}
	judge, err := eval.New(llm, c.log)
	if err != nil {
		return err
	}
	score, err := judge.Evaluate(cmd.Context(), req)
	if err != nil {
		return err
	}

	if o.asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(score)
	}
	color.New(color.FgCyan).Fprintf(c.stdout, "%s score: %d/5\n", strings.ToUpper(o.metric), score.Score)
	fmt.Fprintln(c.stdout, score.Explanation)
	return nil
}

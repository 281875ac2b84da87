package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"banner_agent/config"
	"banner_agent/generator"
	"banner_agent/publisher"
	"banner_agent/render"
	"banner_agent/store"
)

type createOptions struct {
	request       string
	logo          string
	width         int
	height        int
	maxIterations int
	formats       string
	out           string
	strict        bool
	noReport      bool
}

func newCreateCmd(c *cli) *cobra.Command {
	o := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Design a banner from a request and an optional logo",
		Example: `  banner create --request "Summer sale, 30% off sneakers" --logo logo.png --format all
  banner create --provider mock --request "Coffee subscription" --width 300 --height 250`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			o.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runCreate(cmd.Context(), cfg, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.request, "request", "r", "", "banner request, e.g. product, audience and offer (required)")
	f.StringVarP(&o.logo, "logo", "l", "", "path to the brand logo image")
	f.IntVar(&o.width, "width", 0, "canvas width in px (default from config)")
	f.IntVar(&o.height, "height", 0, "canvas height in px (default from config)")
	f.IntVarP(&o.maxIterations, "max-iterations", "n", 0, "maximum review/refine iterations (default from config)")
	f.StringVarP(&o.formats, "format", "f", "", "export formats: json,svg,figma,html or all (default from config)")
	f.StringVarP(&o.out, "out", "o", "", "output directory (default from config)")
	f.BoolVar(&o.strict, "strict", false, "fail instead of falling back to defaults when a step errors")
	f.BoolVar(&o.noReport, "no-report", false, "do not print the run report")
	cmd.MarkFlagRequired("request")
	return cmd
}

// apply 命令行参数覆盖配置文件。
func (o *createOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if o.width > 0 {
		cfg.Canvas.Width = o.width
	}
	if o.height > 0 {
		cfg.Canvas.Height = o.height
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = o.maxIterations
	}
	if o.formats != "" {
		cfg.Formats = strings.Split(o.formats, ",")
	}
	if o.out != "" {
		cfg.OutputDir = o.out
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = o.strict
	}
}

func (c *cli) runCreate(ctx context.Context, cfg config.Config, o *createOptions) error {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	formats, err := publisher.ParseFormats(strings.Join(cfg.Formats, ","))
	if err != nil {
		return err
	}
	brief := generator.Brief{Request: strings.TrimSpace(o.request), Canvas: cfg.Canvas}
	if brief.Request == "" {
		return fmt.Errorf("--request must not be empty")
	}
	if o.logo != "" {
		logo, err := generator.LoadImage(o.logo)
		if err != nil {
			return err
		}
		brief.Logo = &logo
	}

	agent, err := c.newAgent(cfg)
	if err != nil {
		return err
	}
	raster := c.rasterizer(cfg)
	defer raster.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if timeout, _ := cfg.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cyan.Fprintf(c.stdout, "🎨 Designing %s banner (%s, up to %d review iterations)\n",
		brief.Canvas, cfg.LLMSettings().Provider, cfg.MaxIterations)

	sess := generator.NewSession(uuid.NewString(), brief, agent,
		generator.WithRasterizer(raster),
		generator.WithStrict(cfg.Strict),
	)
	res, err := sess.Run(ctx, cfg.MaxIterations)
	if err != nil {
		return err
	}

	pub, err := publisher.New(cfg.OutputDir, c.log)
	if err != nil {
		return err
	}
	paths, err := pub.Publish(ctx, res, formats...)
	if err != nil {
		return err
	}
	c.archive(ctx, cfg, res)

	for _, w := range res.Warnings {
		yellow.Fprintf(c.stdout, "⚠ %s\n", w)
	}
	if res.Approved {
		green.Fprintf(c.stdout, "✓ Approved after %d iteration(s)\n", len(res.Iterations))
	} else {
		yellow.Fprintf(c.stdout, "• Stopped: %s after %d iteration(s)\n", res.StopReason, len(res.Iterations))
	}
	for _, p := range paths {
		fmt.Fprintf(c.stdout, "  • %s\n", p)
	}
	green.Fprintf(c.stdout, "✨ Run %s written to %s\n", res.RunID, cfg.OutputDir)

	if !o.noReport {
		fmt.Fprint(c.stdout, renderMarkdown(publisher.Markdown(res)))
	}
	return nil
}

func (c *cli) rasterizer(cfg config.Config) render.Rasterizer {
	if !cfg.Preview.Enabled {
		return render.NopRasterizer{}
	}
	return render.NewChromeRasterizer(cfg.Preview.ChromeBin, cfg.Preview.ControlURL)
}

// archive 保存运行记录，失败只告警。
func (c *cli) archive(ctx context.Context, cfg config.Config, res generator.Result) {
	if cfg.ArchivePath == "" {
		return
	}
	st, err := store.Open(cfg.ArchivePath)
	if err != nil {
		c.log.WithError(err).Warn("archive unavailable")
		return
	}
	defer st.Close()
	if err := st.SaveRun(ctx, res); err != nil {
		c.log.WithError(err).Warn("archive save failed")
	}
}

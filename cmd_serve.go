package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"banner_agent/publisher"
	"banner_agent/server"
	"banner_agent/store"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			agent, err := c.newAgent(cfg)
			if err != nil {
				return err
			}
			raster := c.rasterizer(cfg)
			defer raster.Close()

			opts := []server.Option{server.WithLogger(c.log), server.WithRasterizer(raster)}
			if cfg.ArchivePath != "" {
				st, err := store.Open(cfg.ArchivePath)
				if err != nil {
					return err
				}
				defer st.Close()
				opts = append(opts, server.WithArchive(st))
			}
			srv, err := server.New(agent, cfg, opts...)
			if err != nil {
				return err
			}

			listen := cfg.ServerAddr
			if addr != "" {
				listen = addr
			}
			if listen == "" {
				listen = ":8080"
			}
			return c.listen(cmd.Context(), listen, srv.Routes())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "http listen address (overrides config.server_addr)")
	return cmd
}

// listen serves until ctx ends or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (c *cli) listen(ctx context.Context, addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()
	c.log.WithField("addr", addr).Info("starting web server")
	color.New(color.FgCyan).Fprintf(c.stdout, "Listening on %s\n", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List archived runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.ArchivePath == "" {
				return errors.New("archive_path is not configured")
			}
			st, err := store.Open(cfg.ArchivePath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if len(args) == 1 {
				res, err := st.GetRun(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(c.stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(res)
				}
				fmt.Fprint(c.stdout, renderMarkdown(publisher.Markdown(res)))
				return nil
			}

			runs, err := st.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(c.stdout, "No runs archived yet.")
				return nil
			}
			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN ID\tCREATED\tSTATUS\tITER\tREQUEST")
			for _, r := range runs {
				status := yellow(r.StopReason)
				if r.Approved {
					status = green("approved")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), status, r.Iterations, truncate(r.Request, 48))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

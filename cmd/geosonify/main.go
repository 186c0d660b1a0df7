// SPDX-License-Identifier: EPL-2.0

// Command geosonify renders the configured transects into audio tracks.
//
//	geosonify -config sonify.yaml [-site ID ...] [-metrics-addr :9090]
//
// Degraded or skipped transects are reported in the summary and in
// outcomes.json; they do not change the exit status.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/metrics"
	"github.com/ik5/geosonify/pipeline"
)

type options struct {
	configPath  string
	sites       []string
	metricsAddr string
	outputDir   string
	logLevel    string
	logFormat   string
}

func parseFlags(args []string) (options, error) {
	var o options

	fs := flag.NewFlagSet("geosonify", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "YAML configuration; built-in defaults when empty")
	fs.Func("site", "site id to render, repeatable; all sites when omitted", func(v string) error {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				o.sites = append(o.sites, id)
			}
		}
		return nil
	})
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&o.outputDir, "out", "", "override run.output_dir")
	fs.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&o.logFormat, "log-format", "text", "text or json")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return o, nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.outputDir != "" {
		cfg.Run.OutputDir = o.outputDir
	}

	return cfg, cfg.Validate()
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return srv
}

func printSummary(w io.Writer, rep pipeline.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tSTATUS\tCELLS\tINVALID\tDURATION\tREASON")
	for _, o := range rep.Outcomes {
		dur := time.Duration(o.DurationMs * float64(time.Millisecond)).Round(time.Millisecond)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", o.Site, o.Status, o.Cells, o.InvalidCells, dur, o.Reason)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "run %s: %d ok, %d degraded, %d skipped\n", rep.RunID,
		rep.Count(pipeline.StatusOK), rep.Count(pipeline.StatusDegraded), rep.Count(pipeline.StatusSkipped))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, o.logLevel, o.logFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	col, err := metrics.New(promReg)
	if err != nil {
		return err
	}
	if o.metricsAddr != "" {
		srv := serveMetrics(o.metricsAddr, promReg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	rep, err := pipeline.Batch(ctx, cfg, reg, o.sites,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(col),
	)
	printSummary(stdout, rep)

	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "geosonify:", err)
		stop()
		os.Exit(1)
	}
}

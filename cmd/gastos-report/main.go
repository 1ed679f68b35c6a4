package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/metrics"
	"gastos/internal/services"
)

func main() {
	fs := flag.NewFlagSet("gastos-report", flag.ExitOnError)
	year := fs.Int("year", time.Now().Year(), "year to report")
	month := fs.String("month", "all", `month 1-12 or "all"`)
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[1:])

	// Logs go to stderr so the report can be piped.
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentReport, os.Stderr)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	period, err := core.ParsePeriod(strconv.Itoa(*year), *month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := cli.InitBackend(ctx, logger, cfg)
	if store.Cleanup != nil {
		defer func() { _ = store.Cleanup() }()
	}

	dash := services.NewDashboardService(store.Store, services.DashboardConfig{
		Policy:    cli.ABCPolicy(cfg),
		CacheSize: 2,
		CacheTTL:  time.Minute,
	}, metrics.Nop{})

	report := Report{Year: period.Year, Month: period.Month}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.Dashboard, err = dash.Dashboard(gctx, period)
		return err
	})
	g.Go(func() error {
		var err error
		report.CashFlow, err = dash.CashFlow(gctx, period.Year)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Report failed", log.FieldError, err)
		os.Exit(1)
	}

	if *format == "json" {
		err = writeJSONReport(os.Stdout, report)
	} else {
		err = writeTextReport(os.Stdout, report)
	}
	if err != nil {
		logger.Error("Write report failed", log.FieldError, err)
		os.Exit(1)
	}
}


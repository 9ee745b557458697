package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryclabs/docpilot/internal/bootstrap"
	"github.com/ryclabs/docpilot/internal/config"
)

func main() {
	enqueue := flag.Bool("enqueue", false, "publish a run request for the worker instead of running inline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "pipeline")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if *enqueue {
		if err := app.Queue.PublishRunRequested(ctx); err != nil {
			log.Fatalf("enqueue run request: %v", err)
		}
		app.Logger.Info("run_request_published", "subject", cfg.NATSSubject)
		return
	}

	stats, err := app.Pipeline.Run(ctx)
	if err != nil {
		app.Logger.Error("pipeline_run_failed", "error", err)
		os.Exit(1)
	}
	app.Logger.Info("pipeline_run_finished",
		"total", stats.Total,
		"organized", stats.Organized,
		"duplicates", stats.Duplicates,
		"errors", stats.Errors,
	)
}

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
	dir := flag.String("dir", "", "reference documents directory (defaults to reference_path from config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "ingest")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	target := *dir
	if target == "" {
		target = cfg.ReferencePath
	}

	count, err := app.Ingest.IngestDirectory(ctx, target)
	if err != nil {
		app.Logger.Error("reference_ingest_failed", "dir", target, "error", err)
		os.Exit(1)
	}
	app.Logger.Info("reference_ingest_finished", "dir", target, "indexed", count)
}

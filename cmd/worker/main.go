package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ryclabs/docpilot/internal/bootstrap"
	"github.com/ryclabs/docpilot/internal/config"
	"github.com/ryclabs/docpilot/internal/core/domain"
	"github.com/ryclabs/docpilot/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	m := metrics.NewPipelineMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats, err := app.Health.Report(r.Context(), time.Now().Add(-24*time.Hour))
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, stats)
	})
	mux.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
		runs, err := app.Ledger.RecentRuns(r.Context(), 20)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, runs)
	})
	mux.HandleFunc("/runs/{id}/files", func(w http.ResponseWriter, r *http.Request) {
		runID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid run id", http.StatusBadRequest)
			return
		}
		// Default view is one row per file; ?all=true returns the full
		// transition log.
		var files []domain.FileRecord
		if r.URL.Query().Get("all") == "true" {
			files, err = app.Ledger.FilesByRun(r.Context(), runID)
		} else {
			files, err = app.Ledger.LatestFileStatuses(r.Context(), runID)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, files)
	})
	mux.HandleFunc("/errors", func(w http.ResponseWriter, r *http.Request) {
		records, err := app.Ledger.RecentErrors(r.Context(), 50)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, records)
	})

	srv := &http.Server{Addr: ":" + cfg.WorkerMetricsPort, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.Logger.Info("worker_started", "subject", cfg.NATSSubject, "metrics_port", cfg.WorkerMetricsPort)
	err = app.Queue.SubscribeRunRequested(ctx, func(handlerCtx context.Context) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
		defer cancel()

		m.StartRun()
		start := time.Now()
		stats, runErr := app.Pipeline.Run(runCtx)
		status := "success"
		if runErr != nil {
			status = "error"
		}
		m.FinishRun(status, time.Since(start), stats.Organized, stats.Duplicates, stats.Errors)
		return runErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

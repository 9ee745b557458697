package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ryclabs/docpilot/internal/config"
	"github.com/ryclabs/docpilot/internal/core/ports"
	"github.com/ryclabs/docpilot/internal/core/usecase"
	"github.com/ryclabs/docpilot/internal/infrastructure/chunking"
	"github.com/ryclabs/docpilot/internal/infrastructure/extractor"
	"github.com/ryclabs/docpilot/internal/infrastructure/extractor/pdftext"
	"github.com/ryclabs/docpilot/internal/infrastructure/extractor/plaintext"
	"github.com/ryclabs/docpilot/internal/infrastructure/extractor/sheet"
	"github.com/ryclabs/docpilot/internal/infrastructure/fingerprint"
	"github.com/ryclabs/docpilot/internal/infrastructure/llm/ollama"
	"github.com/ryclabs/docpilot/internal/infrastructure/queue/nats"
	"github.com/ryclabs/docpilot/internal/infrastructure/repository/postgres"
	"github.com/ryclabs/docpilot/internal/infrastructure/resilience"
	"github.com/ryclabs/docpilot/internal/infrastructure/source/inbox"
	"github.com/ryclabs/docpilot/internal/infrastructure/storage/localfs"
	"github.com/ryclabs/docpilot/internal/infrastructure/vector/qdrant"
	"github.com/ryclabs/docpilot/internal/observability/logging"
)

// App wires configuration, adapters and use cases for the binaries.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    *nats.Queue
	Ledger   ports.RunLedger
	Pipeline ports.PipelineRunner
	Ingest   ports.ReferenceIngestor
	Health   ports.HealthReporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ledger := postgres.NewRunLedger(db)
	if err := ledger.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy(), logger)

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Executor: executor,
		Logger:   logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init run queue: %w", err)
	}

	llm := ollama.NewClient(ollama.Config{
		BaseURL:        cfg.OllamaURL,
		GenModel:       cfg.OllamaGenModel,
		VisionModel:    cfg.OllamaVisionModel,
		EmbedModel:     cfg.OllamaEmbedModel,
		RequestsPerSec: cfg.LLMRequestsPerSec,
		Timeout:        2 * time.Minute,
	}, executor, logger)

	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, llm)

	extractors := extractor.NewRegistry().
		Register(pdftext.New(cfg.MaxPDFPages), ".pdf").
		Register(sheet.New(0), ".xlsx", ".xlsm").
		Register(plaintext.New(), ".txt", ".md", ".csv")

	store := localfs.New()
	duplicates := fingerprint.New()
	source := inbox.New(cfg.InboundPath)

	dates := usecase.NewDateResolver(llm, extractors, logger)
	classifier := usecase.NewClassifier(index, llm, extractors, logger)
	organizer := usecase.NewOrganizer(store, duplicates, dates, cfg.InboundPath, cfg.StorePath, logger)
	pipeline := usecase.NewPipeline(source, classifier, organizer, ledger, logger)

	chunker := chunking.NewSplitter(cfg.ChunkMaxChars)
	ingest := usecase.NewReferenceIngest(extractors, chunker, llm, index, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:    queue,
		Ledger:   ledger,
		Pipeline: pipeline,
		Ingest:   ingest,
		Health:   usecase.NewHealthReport(ledger),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

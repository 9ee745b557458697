package ports

import (
	"context"
	"time"

	"github.com/ryclabs/docpilot/internal/core/domain"
)

// PipelineRunner executes one full classification/organization pass.
type PipelineRunner interface {
	Run(ctx context.Context) (domain.RunStats, error)
}

// DocumentClassifier assigns a closed-set label. It never fails: any
// internal error downgrades to the next cascade stage.
type DocumentClassifier interface {
	Classify(ctx context.Context, doc domain.Document) domain.DocumentType
	ClassifyBatch(ctx context.Context, docs []domain.Document) map[string]domain.DocumentType
}

// DateResolver produces an 8-digit YYYYMMDD token for a document. It
// always returns a value.
type DateResolver interface {
	Resolve(ctx context.Context, doc domain.Document) string
}

// DocumentOrganizer files classified documents into the managed store.
type DocumentOrganizer interface {
	OrganizeBatch(ctx context.Context, labels map[string]domain.DocumentType) domain.OrganizeResult
}

// ReferenceIngestor indexes labeled reference documents into the
// similarity index.
type ReferenceIngestor interface {
	IngestDirectory(ctx context.Context, dir string) (int, error)
}

// HealthReporter exposes ledger aggregations for operational reporting.
type HealthReporter interface {
	Report(ctx context.Context, since time.Time) (domain.LedgerStats, error)
}

package ports

import (
	"context"
	"time"

	"github.com/ryclabs/docpilot/internal/core/domain"
)

// RunLedger is the persistent run/file tracker. Runs receive exactly one
// terminal update; file and error records are append-only.
type RunLedger interface {
	StartRun(ctx context.Context) (int64, error)
	EndRun(ctx context.Context, runID int64, status domain.RunStatus, stats domain.RunStats, errMessage string) error
	AddFileRecord(ctx context.Context, rec domain.FileRecord) error
	AddError(ctx context.Context, rec domain.ErrorRecord) error

	RecentRuns(ctx context.Context, limit int) ([]domain.Run, error)
	FilesByRun(ctx context.Context, runID int64) ([]domain.FileRecord, error)
	LatestFileStatuses(ctx context.Context, runID int64) ([]domain.FileRecord, error)
	RecentErrors(ctx context.Context, limit int) ([]domain.ErrorRecord, error)
	StatsSince(ctx context.Context, since time.Time) (domain.LedgerStats, error)
}

// AttachmentSource lists files already staged in the inbound directory.
type AttachmentSource interface {
	List(ctx context.Context) ([]domain.Document, error)
}

// SimilarityIndex retrieves the most similar indexed reference documents
// for a query text. It may be absent entirely; callers must degrade.
type SimilarityIndex interface {
	Query(ctx context.Context, text string, k int) ([]domain.Neighbor, error)
	IndexReference(ctx context.Context, label domain.DocumentType, name string, chunks []string, vectors [][]float32) error
}

// TextGenerator is the external inference service. Replies are free
// text; every call site must have a fallback.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, image []byte) (string, error)
}

// Embedder builds vectors for reference chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// TextExtractor pulls plain text out of a staged document, capped to the
// leading pages for paginated formats.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Chunker splits reference text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

// FileStore performs the filesystem moves under the managed store root.
type FileStore interface {
	Move(ctx context.Context, src, dst string) error
	Remove(ctx context.Context, path string) error
	EnsureDir(ctx context.Context, dir string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// DuplicateFinder reports an existing file under root with content
// byte-identical to the candidate, or "" when none exists.
type DuplicateFinder interface {
	FindDuplicate(ctx context.Context, candidatePath, root string) (string, error)
}

// RunQueue delivers pipeline run requests to the worker.
type RunQueue interface {
	PublishRunRequested(ctx context.Context) error
	SubscribeRunRequested(ctx context.Context, handler func(context.Context) error) error
}

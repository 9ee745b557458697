package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryclabs/docpilot/internal/core/domain"
	"github.com/ryclabs/docpilot/internal/core/ports"
)

// ReferenceIngest indexes labeled reference documents into the
// similarity index so the classifier can recognize document families it
// has seen before. Labels come from a filename/content keyword
// heuristic; files that match nothing are indexed as "other".
type ReferenceIngest struct {
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.SimilarityIndex
	logger    *slog.Logger
}

func NewReferenceIngest(
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.SimilarityIndex,
	logger *slog.Logger,
) *ReferenceIngest {
	return &ReferenceIngest{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		logger:    logger,
	}
}

// IngestDirectory indexes every regular file in dir and returns the
// number of documents indexed.
func (r *ReferenceIngest) IngestDirectory(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read reference dir: %w", err)
	}

	indexed := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := r.ingestOne(ctx, filepath.Join(dir, entry.Name()), entry.Name()); err != nil {
			r.logger.Warn("reference document skipped", "filename", entry.Name(), "error", err)
			continue
		}
		indexed++
	}
	return indexed, nil
}

func (r *ReferenceIngest) ingestOne(ctx context.Context, path, filename string) error {
	text, err := r.extractor.Extract(ctx, path)
	if err != nil || strings.TrimSpace(text) == "" {
		// Image references carry no extractable text; index the name.
		text = "Document: " + filename
	}

	label := labelReference(filename, text)
	chunks := r.chunker.Split(text)
	if len(chunks) == 0 {
		return fmt.Errorf("no indexable content")
	}

	vectors, err := r.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed reference chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks))
	}

	if err := r.index.IndexReference(ctx, label, filename, chunks, vectors); err != nil {
		return fmt.Errorf("index reference document: %w", err)
	}
	r.logger.Info("reference document indexed", "filename", filename, "type", label, "chunks", len(chunks))
	return nil
}

// labelReference determines a reference document's type from its
// filename first, then its content.
func labelReference(filename, content string) domain.DocumentType {
	doc := domain.Document{Filename: filename}
	stage := keywordStage{}
	if label, _, _ := stage.attempt(context.Background(), doc, ""); label != domain.TypeOther {
		return label
	}

	lowered := strings.ToLower(content)
	for _, entry := range typeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.label
			}
		}
	}
	return domain.TypeOther
}

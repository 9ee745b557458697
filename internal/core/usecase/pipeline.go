package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/ryclabs/docpilot/internal/core/domain"
	"github.com/ryclabs/docpilot/internal/core/ports"
)

// Pipeline runs one full pass: list staged attachments, classify,
// organize, and record every stage transition in the ledger. Files are
// processed strictly one at a time; a run always terminates in a defined
// terminal status.
type Pipeline struct {
	source     ports.AttachmentSource
	classifier ports.DocumentClassifier
	organizer  ports.DocumentOrganizer
	ledger     ports.RunLedger
	logger     *slog.Logger
}

func NewPipeline(
	source ports.AttachmentSource,
	classifier ports.DocumentClassifier,
	organizer ports.DocumentOrganizer,
	ledger ports.RunLedger,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		source:     source,
		classifier: classifier,
		organizer:  organizer,
		ledger:     ledger,
		logger:     logger,
	}
}

func (p *Pipeline) Run(ctx context.Context) (domain.RunStats, error) {
	runID, err := p.ledger.StartRun(ctx)
	if err != nil {
		return domain.RunStats{}, fmt.Errorf("start run: %w", err)
	}
	p.logger.Info("pipeline run started", "run_id", runID)

	stats, err := p.execute(ctx, runID)
	if err != nil {
		p.recordSystemError(ctx, runID, err)
		if endErr := p.ledger.EndRun(ctx, runID, domain.RunError, stats, err.Error()); endErr != nil {
			p.logger.Error("failed to mark run as error", "run_id", runID, "error", endErr)
		}
		return stats, err
	}

	if err := p.ledger.EndRun(ctx, runID, domain.RunSuccess, stats, ""); err != nil {
		return stats, fmt.Errorf("end run: %w", err)
	}
	p.logger.Info("pipeline run completed",
		"run_id", runID,
		"downloaded", stats.Downloaded,
		"organized", stats.Organized,
		"duplicates", stats.Duplicates,
		"errors", stats.Errors,
	)
	return stats, nil
}

func (p *Pipeline) execute(ctx context.Context, runID int64) (domain.RunStats, error) {
	var stats domain.RunStats

	docs, err := p.source.List(ctx)
	if err != nil {
		p.recordError(ctx, domain.ErrorRecord{
			RunID:   &runID,
			Type:    domain.ErrorIngestion,
			Message: err.Error(),
		})
		return stats, fmt.Errorf("list staged attachments: %w", err)
	}
	if len(docs) == 0 {
		p.logger.Info("no staged files to process", "run_id", runID)
		return stats, nil
	}
	stats.Total = len(docs)
	stats.Downloaded = len(docs)

	for _, doc := range docs {
		if err := p.record(ctx, runID, doc.Filename, doc.SourcePath, "", domain.FileDownloaded, ""); err != nil {
			return stats, err
		}
	}

	labels := p.classifier.ClassifyBatch(ctx, docs)
	stats.Classified = len(labels)
	for _, doc := range docs {
		if err := p.record(ctx, runID, doc.Filename, doc.SourcePath, labels[doc.Filename], domain.FileClassified, ""); err != nil {
			return stats, err
		}
	}

	result := p.organizer.OrganizeBatch(ctx, labels)
	stats.Organized = result.SuccessCount()
	stats.Duplicates = result.DuplicateCount()
	stats.Errors = result.ErrorCount()

	for _, organized := range result.Organized {
		if err := p.record(ctx, runID, organized.Filename, organized.Destination, labels[organized.Filename], domain.FileOrganized, ""); err != nil {
			return stats, err
		}
	}
	for _, filename := range result.Duplicates {
		if err := p.record(ctx, runID, filename, "", labels[filename], domain.FileDuplicate, ""); err != nil {
			return stats, err
		}
	}
	for _, failure := range result.Failures {
		if err := p.record(ctx, runID, failure.Filename, "", labels[failure.Filename], domain.FileError, failure.Message); err != nil {
			return stats, err
		}
		p.recordError(ctx, domain.ErrorRecord{
			RunID:    &runID,
			Type:     domain.ErrorOrganization,
			Message:  failure.Message,
			FilePath: failure.Filename,
		})
	}

	return stats, nil
}

// record appends one stage transition. A given filename accumulates one
// row per stage within a run; rows are never overwritten.
func (p *Pipeline) record(
	ctx context.Context,
	runID int64,
	filename, path string,
	docType domain.DocumentType,
	status domain.FileStatus,
	errMessage string,
) error {
	err := p.ledger.AddFileRecord(ctx, domain.FileRecord{
		RunID:        runID,
		Filename:     filename,
		FilePath:     path,
		DocumentType: docType,
		Status:       status,
		ErrorMessage: errMessage,
	})
	if err != nil {
		return fmt.Errorf("record %s for %s: %w", status, filename, err)
	}
	return nil
}

func (p *Pipeline) recordError(ctx context.Context, rec domain.ErrorRecord) {
	if err := p.ledger.AddError(ctx, rec); err != nil {
		p.logger.Error("failed to append error record", "error", err)
	}
}

func (p *Pipeline) recordSystemError(ctx context.Context, runID int64, cause error) {
	p.recordError(ctx, domain.ErrorRecord{
		RunID:      &runID,
		Type:       domain.ErrorSystem,
		Message:    cause.Error(),
		StackTrace: string(debug.Stack()),
	})
}

// HealthReport aggregates ledger outcomes for operational reporting.
type HealthReport struct {
	ledger ports.RunLedger
}

func NewHealthReport(ledger ports.RunLedger) *HealthReport {
	return &HealthReport{ledger: ledger}
}

func (h *HealthReport) Report(ctx context.Context, since time.Time) (domain.LedgerStats, error) {
	stats, err := h.ledger.StatsSince(ctx, since)
	if err != nil {
		return domain.LedgerStats{}, fmt.Errorf("aggregate ledger stats: %w", err)
	}
	return stats, nil
}

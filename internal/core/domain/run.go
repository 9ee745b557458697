package domain

import "time"

type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

type FileStatus string

const (
	FileDownloaded FileStatus = "downloaded"
	FileClassified FileStatus = "classified"
	FileOrganized  FileStatus = "organized"
	FileDuplicate  FileStatus = "duplicate"
	FileError      FileStatus = "error"
)

type ErrorType string

const (
	ErrorIngestion      ErrorType = "ingestion"
	ErrorClassification ErrorType = "classification"
	ErrorOrganization   ErrorType = "organization"
	ErrorSystem         ErrorType = "system"
)

// RunStats are the per-stage counters written once at run completion.
type RunStats struct {
	Total      int
	Downloaded int
	Classified int
	Organized  int
	Duplicates int
	Errors     int
}

// Run is one pipeline execution. EndTime is nil while the run is open;
// the row receives exactly one terminal update.
type Run struct {
	ID           int64
	StartTime    time.Time
	EndTime      *time.Time
	Status       RunStatus
	Stats        RunStats
	ErrorMessage string
}

// FileRecord is one stage transition for one file within a run. The
// ledger is an event log: a filename appears once per transition, and
// its current status is the latest row for that (run, filename) pair.
type FileRecord struct {
	RunID        int64
	Filename     string
	FilePath     string
	DocumentType DocumentType
	Status       FileStatus
	ErrorMessage string
	RecordedAt   time.Time
}

// ErrorRecord is an append-only error entry. RunID is nil for errors
// that are not scoped to a run.
type ErrorRecord struct {
	RunID      *int64
	Type       ErrorType
	Message    string
	StackTrace string
	FilePath   string
	RecordedAt time.Time
}

// LedgerStats aggregates file and run outcomes over a period.
type LedgerStats struct {
	TotalFiles     int
	Organized      int
	Duplicates     int
	Errors         int
	ByType         map[DocumentType]int
	TotalRuns      int
	SuccessfulRuns int
	FailedRuns     int
}

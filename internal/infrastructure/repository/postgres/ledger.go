package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ryclabs/docpilot/internal/core/domain"
)

// RunLedger persists pipeline runs, per-file stage transitions and
// error records. Runs get exactly one terminal update; file and error
// rows are append-only.
type RunLedger struct {
	db *sql.DB
}

func NewRunLedger(db *sql.DB) *RunLedger {
	return &RunLedger{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RunLedger) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across pipeline/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS processing_runs (
	id BIGSERIAL PRIMARY KEY,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ,
	status TEXT NOT NULL,
	total_files INTEGER NOT NULL DEFAULT 0,
	files_downloaded INTEGER NOT NULL DEFAULT 0,
	files_classified INTEGER NOT NULL DEFAULT 0,
	files_organized INTEGER NOT NULL DEFAULT 0,
	duplicates_found INTEGER NOT NULL DEFAULT 0,
	errors_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS file_records (
	id BIGSERIAL PRIMARY KEY,
	run_id BIGINT NOT NULL REFERENCES processing_runs(id),
	filename TEXT NOT NULL,
	file_path TEXT NOT NULL DEFAULT '',
	document_type TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS error_records (
	id BIGSERIAL PRIMARY KEY,
	run_id BIGINT REFERENCES processing_runs(id),
	error_type TEXT NOT NULL,
	error_message TEXT NOT NULL,
	stack_trace TEXT NOT NULL DEFAULT '',
	file_path TEXT NOT NULL DEFAULT '',
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_start_time ON processing_runs(start_time DESC);
CREATE INDEX IF NOT EXISTS idx_file_records_run ON file_records(run_id, filename, recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_error_records_recorded ON error_records(recorded_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RunLedger) StartRun(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO processing_runs (start_time, status)
VALUES ($1, $2)
RETURNING id
`, time.Now().UTC(), string(domain.RunRunning)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

func (r *RunLedger) EndRun(ctx context.Context, runID int64, status domain.RunStatus, stats domain.RunStats, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE processing_runs
SET end_time = $2, status = $3,
	total_files = $4, files_downloaded = $5, files_classified = $6,
	files_organized = $7, duplicates_found = $8, errors_count = $9,
	error_message = $10
WHERE id = $1 AND status = $11
`, runID, time.Now().UTC(), string(status),
		stats.Total, stats.Downloaded, stats.Classified,
		stats.Organized, stats.Duplicates, stats.Errors,
		errMessage, string(domain.RunRunning))
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end run rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrRunNotFound, "ledger.end_run",
			fmt.Errorf("run %d is missing or already finished", runID))
	}
	return nil
}

func (r *RunLedger) AddFileRecord(ctx context.Context, rec domain.FileRecord) error {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO file_records (run_id, filename, file_path, document_type, status, error_message, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, rec.RunID, rec.Filename, rec.FilePath, string(rec.DocumentType), string(rec.Status), rec.ErrorMessage, recordedAt)
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

func (r *RunLedger) AddError(ctx context.Context, rec domain.ErrorRecord) error {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	var runID sql.NullInt64
	if rec.RunID != nil {
		runID = sql.NullInt64{Int64: *rec.RunID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO error_records (run_id, error_type, error_message, stack_trace, file_path, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, runID, string(rec.Type), rec.Message, rec.StackTrace, rec.FilePath, recordedAt)
	if err != nil {
		return fmt.Errorf("insert error record: %w", err)
	}
	return nil
}

func (r *RunLedger) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, start_time, end_time, status,
	total_files, files_downloaded, files_classified,
	files_organized, duplicates_found, errors_count, error_message
FROM processing_runs
ORDER BY start_time DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		var run domain.Run
		var status string
		var endTime sql.NullTime
		err := rows.Scan(
			&run.ID, &run.StartTime, &endTime, &status,
			&run.Stats.Total, &run.Stats.Downloaded, &run.Stats.Classified,
			&run.Stats.Organized, &run.Stats.Duplicates, &run.Stats.Errors,
			&run.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = domain.RunStatus(status)
		if endTime.Valid {
			t := endTime.Time
			run.EndTime = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *RunLedger) FilesByRun(ctx context.Context, runID int64) ([]domain.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT run_id, filename, file_path, document_type, status, error_message, recorded_at
FROM file_records
WHERE run_id = $1
ORDER BY recorded_at, id
`, runID)
	if err != nil {
		return nil, fmt.Errorf("query files by run: %w", err)
	}
	defer rows.Close()
	return scanFileRecords(rows)
}

// LatestFileStatuses returns one row per filename: the most recent
// stage transition within the run.
func (r *RunLedger) LatestFileStatuses(ctx context.Context, runID int64) ([]domain.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT ON (filename)
	run_id, filename, file_path, document_type, status, error_message, recorded_at
FROM file_records
WHERE run_id = $1
ORDER BY filename, recorded_at DESC, id DESC
`, runID)
	if err != nil {
		return nil, fmt.Errorf("query latest file statuses: %w", err)
	}
	defer rows.Close()
	return scanFileRecords(rows)
}

func (r *RunLedger) RecentErrors(ctx context.Context, limit int) ([]domain.ErrorRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT run_id, error_type, error_message, stack_trace, file_path, recorded_at
FROM error_records
ORDER BY recorded_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent errors: %w", err)
	}
	defer rows.Close()

	var out []domain.ErrorRecord
	for rows.Next() {
		var rec domain.ErrorRecord
		var runID sql.NullInt64
		var errType string
		err := rows.Scan(&runID, &errType, &rec.Message, &rec.StackTrace, &rec.FilePath, &rec.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan error record: %w", err)
		}
		if runID.Valid {
			id := runID.Int64
			rec.RunID = &id
		}
		rec.Type = domain.ErrorType(errType)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RunLedger) StatsSince(ctx context.Context, since time.Time) (domain.LedgerStats, error) {
	stats := domain.LedgerStats{ByType: make(map[domain.DocumentType]int)}

	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*),
	COUNT(*) FILTER (WHERE status = $2),
	COUNT(*) FILTER (WHERE status = $3)
FROM processing_runs
WHERE start_time >= $1
`, since, string(domain.RunSuccess), string(domain.RunError)).
		Scan(&stats.TotalRuns, &stats.SuccessfulRuns, &stats.FailedRuns)
	if err != nil {
		return domain.LedgerStats{}, fmt.Errorf("query run stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT status, document_type
FROM (
	SELECT DISTINCT ON (run_id, filename) status, document_type
	FROM file_records
	WHERE recorded_at >= $1
	ORDER BY run_id, filename, recorded_at DESC, id DESC
) latest
`, since)
	if err != nil {
		return domain.LedgerStats{}, fmt.Errorf("query file stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, docType string
		if err := rows.Scan(&status, &docType); err != nil {
			return domain.LedgerStats{}, fmt.Errorf("scan file stats: %w", err)
		}
		stats.TotalFiles++
		switch domain.FileStatus(status) {
		case domain.FileOrganized:
			stats.Organized++
			if label, ok := domain.ParseDocumentType(docType); ok {
				stats.ByType[label]++
			}
		case domain.FileDuplicate:
			stats.Duplicates++
		case domain.FileError:
			stats.Errors++
		}
	}
	return stats, rows.Err()
}

func scanFileRecords(rows *sql.Rows) ([]domain.FileRecord, error) {
	var out []domain.FileRecord
	for rows.Next() {
		var rec domain.FileRecord
		var docType, status string
		err := rows.Scan(&rec.RunID, &rec.Filename, &rec.FilePath, &docType, &status, &rec.ErrorMessage, &rec.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		rec.DocumentType = domain.DocumentType(docType)
		rec.Status = domain.FileStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

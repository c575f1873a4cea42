package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ziptowebp/internal/config"
)

// Store persists the run ledger in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the ledger at cfg.HistoryPath().
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun inserts a new run row.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return s.exec(ctx,
		`INSERT INTO runs (id, root, dry_run, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Root, boolToInt(run.DryRun), formatTime(run.StartedAt),
	)
}

// FinishRun stores the final counters for a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	return s.exec(ctx,
		`UPDATE runs SET finished_at = ?, archives = ?, succeeded = ?, failed = ? WHERE id = ?`,
		formatTime(run.FinishedAt), run.Archives, run.Succeeded, run.Failed, run.ID,
	)
}

// RecordJob inserts the outcome of one archive conversion.
func (s *Store) RecordJob(ctx context.Context, job Job) error {
	if strings.TrimSpace(job.ID) == "" || strings.TrimSpace(job.RunID) == "" {
		return errors.New("job id and run id are required")
	}
	return s.exec(ctx,
		`INSERT INTO jobs (
			id, run_id, archive_path, output_path, processed_path, outcome,
			failed_stage, error_kind, error_message, images, converted,
			started_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.RunID, job.ArchivePath,
		nullableString(job.OutputPath), nullableString(job.ProcessedPath), job.Outcome,
		nullableString(job.FailedStage), nullableString(job.ErrorKind), nullableString(job.ErrorMessage),
		job.Images, job.Converted,
		formatTime(job.StartedAt), job.Duration.Milliseconds(),
	)
}

// RecentJobs returns up to limit jobs, newest first. When failedOnly is set
// only failed jobs are returned.
func (s *Store) RecentJobs(ctx context.Context, limit int, failedOnly bool) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, run_id, archive_path, output_path, processed_path, outcome,
		failed_stage, error_kind, error_message, images, converted, started_at, duration_ms
		FROM jobs`
	args := []any{}
	if failedOnly {
		query += ` WHERE outcome = ?`
		args = append(args, OutcomeFailed)
	}
	query += ` ORDER BY started_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// RunByID returns the run with id, or nil when it does not exist.
func (s *Store) RunByID(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT id, root, dry_run, started_at, finished_at, archives, succeeded, failed FROM runs WHERE id = ?`, id)

	var (
		run        Run
		dryRun     int
		startedAt  string
		finishedAt sql.NullString
	)
	err := row.Scan(&run.ID, &run.Root, &dryRun, &startedAt, &finishedAt, &run.Archives, &run.Succeeded, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.DryRun = dryRun != 0
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse run start: %w", err)
	}
	if finishedAt.Valid {
		if run.FinishedAt, err = parseTime(finishedAt.String); err != nil {
			return nil, fmt.Errorf("parse run finish: %w", err)
		}
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (Job, error) {
	var (
		job                                     Job
		output, processed, stage, kind, message sql.NullString
		startedAt                               string
		durationMS                              int64
	)
	if err := row.Scan(
		&job.ID, &job.RunID, &job.ArchivePath, &output, &processed, &job.Outcome,
		&stage, &kind, &message, &job.Images, &job.Converted, &startedAt, &durationMS,
	); err != nil {
		return Job{}, fmt.Errorf("scan job: %w", err)
	}
	job.OutputPath = output.String
	job.ProcessedPath = processed.String
	job.FailedStage = stage.String
	job.ErrorKind = kind.String
	job.ErrorMessage = message.String
	job.Duration = time.Duration(durationMS) * time.Millisecond

	started, err := parseTime(startedAt)
	if err != nil {
		return Job{}, fmt.Errorf("parse job start: %w", err)
	}
	job.StartedAt = started
	return job, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// timeLayout is RFC 3339 with a fixed-width fraction so stored timestamps
// sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

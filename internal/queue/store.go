package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"wemscribe/internal/config"
)

// Store manages the pipeline run journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

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

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the journal database location.
func (s *Store) Path() string {
	return s.path
}

// NewAsset inserts a pending item for a located asset. Items are inserted in
// request order, so ascending IDs within a run preserve that order.
func (s *Store) NewAsset(ctx context.Context, runID, filename, sourcePath string) (*Item, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errors.New("run ID required")
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, errors.New("filename required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pipeline_items (
            run_id, filename, source_path, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		filename,
		nullableString(sourcePath),
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a pipeline item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM pipeline_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing pipeline item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE pipeline_items
         SET run_id = ?, filename = ?, source_path = ?, staged_path = ?,
             decoded_path = ?, output_path = ?, transcript = ?,
             detected_language = ?, status = ?, error_message = ?,
             progress_stage = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		item.RunID,
		item.Filename,
		nullableString(item.SourcePath),
		nullableString(item.StagedPath),
		nullableString(item.DecodedPath),
		nullableString(item.OutputPath),
		nullableTranscript(item),
		nullableString(item.DetectedLanguage),
		item.Status,
		nullableString(item.ErrorMessage),
		nullableString(item.ProgressStage),
		nullableString(item.ProgressMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// ItemsForRun returns the run's items in request order.
func (s *Store) ItemsForRun(ctx context.Context, runID string) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM pipeline_items WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// List returns items across all runs, optionally filtered by status, newest
// run first and request order within a run.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM pipeline_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// Clear deletes items in the given statuses, or every item when none are
// given. Returns the number of removed rows.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := `DELETE FROM pipeline_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear items: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

// FailRemaining marks every non-terminal item of a run as failed with the
// given reason. Used when a run aborts so retained workspace copies line up
// with the journal.
func (s *Store) FailRemaining(ctx context.Context, runID, reason string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE pipeline_items
         SET status = ?, error_message = ?, progress_stage = 'Failed',
             progress_message = ?, updated_at = ?
         WHERE run_id = ? AND status NOT IN (?, ?)`,
		StatusFailed,
		reason,
		reason,
		timestamp,
		runID,
		StatusCompleted,
		StatusFailed,
	)
	if err != nil {
		return 0, fmt.Errorf("fail remaining: %w", err)
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return updated, nil
}

const itemColumns = `id, run_id, filename, source_path, staged_path, decoded_path,
    output_path, transcript, detected_language, status, error_message,
    progress_stage, progress_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item             Item
		sourcePath       sql.NullString
		stagedPath       sql.NullString
		decodedPath      sql.NullString
		outputPath       sql.NullString
		transcript       sql.NullString
		detectedLanguage sql.NullString
		errorMessage     sql.NullString
		progressStage    sql.NullString
		progressMessage  sql.NullString
		createdAt        string
		updatedAt        string
	)
	if err := row.Scan(
		&item.ID,
		&item.RunID,
		&item.Filename,
		&sourcePath,
		&stagedPath,
		&decodedPath,
		&outputPath,
		&transcript,
		&detectedLanguage,
		&item.Status,
		&errorMessage,
		&progressStage,
		&progressMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	item.SourcePath = sourcePath.String
	item.StagedPath = stagedPath.String
	item.DecodedPath = decodedPath.String
	item.OutputPath = outputPath.String
	item.Transcript = transcript.String
	item.DetectedLanguage = detectedLanguage.String
	item.ErrorMessage = errorMessage.String
	item.ProgressStage = progressStage.String
	item.ProgressMessage = progressMessage.String
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)
	return &item, nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// nullableTranscript preserves the distinction between "no transcript yet"
// and a valid empty transcript from silent audio.
func nullableTranscript(item *Item) any {
	if item.Transcript == "" && item.Status != StatusTranscribed &&
		item.Status != StatusRecording && item.Status != StatusCompleted {
		return nil
	}
	return item.Transcript
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultHistoryLimit = 50

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertRenderStmt     *sql.Stmt
	insertValidationStmt *sql.Stmt
}

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := st.prepareStatements(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS renders (
			id TEXT PRIMARY KEY,
			pack_id TEXT NOT NULL,
			pack_version TEXT NOT NULL,
			prompt_name TEXT NOT NULL,
			model TEXT NOT NULL,
			strict INTEGER NOT NULL,
			variables_json TEXT,
			output_chars INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS validations (
			id TEXT PRIMARY KEY,
			pack_id TEXT NOT NULL,
			prompt_name TEXT NOT NULL,
			content_chars INTEGER NOT NULL,
			is_valid INTEGER NOT NULL,
			blocking INTEGER NOT NULL,
			violations_json TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_pack ON renders(pack_id, prompt_name)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_created_at ON renders(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_validations_pack ON validations(pack_id, prompt_name)`,
		`CREATE INDEX IF NOT EXISTS idx_validations_created_at ON validations(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	if s == nil || s.db == nil {
		return errors.New("store: nil sqlite store")
	}

	ctx := context.Background()

	var err error
	s.insertRenderStmt, err = s.db.PrepareContext(ctx,
		`INSERT INTO renders (id, pack_id, pack_version, prompt_name, model, strict,
			variables_json, output_chars, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert render: %w", err)
	}

	s.insertValidationStmt, err = s.db.PrepareContext(ctx,
		`INSERT INTO validations (id, pack_id, prompt_name, content_chars, is_valid,
			blocking, violations_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert validation: %w", err)
	}
	return nil
}

// SaveRender persists one render event.
func (s *SQLiteStore) SaveRender(ctx context.Context, rec *RenderRecord) error {
	if rec == nil {
		return errors.New("store: nil render record")
	}
	varsJSON, err := json.Marshal(rec.Variables)
	if err != nil {
		return fmt.Errorf("store: marshal variables: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.insertRenderStmt.ExecContext(ctx,
		rec.ID, rec.PackID, rec.PackVersion, rec.PromptName, rec.Model,
		boolToInt(rec.Strict), string(varsJSON), rec.OutputChars, rec.DurationMs,
		createdAt.Unix())
	if err != nil {
		return fmt.Errorf("store: insert render: %w", err)
	}
	return nil
}

// SaveValidation persists one guardrail batch outcome.
func (s *SQLiteStore) SaveValidation(ctx context.Context, rec *ValidationRecord) error {
	if rec == nil {
		return errors.New("store: nil validation record")
	}
	violationsJSON, err := json.Marshal(rec.Violations)
	if err != nil {
		return fmt.Errorf("store: marshal violations: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.insertValidationStmt.ExecContext(ctx,
		rec.ID, rec.PackID, rec.PromptName, rec.ContentChars,
		boolToInt(rec.IsValid), boolToInt(rec.Blocking), string(violationsJSON),
		createdAt.Unix())
	if err != nil {
		return fmt.Errorf("store: insert validation: %w", err)
	}
	return nil
}

// ListRenders returns recorded render events, newest first.
func (s *SQLiteStore) ListRenders(ctx context.Context, filter HistoryFilter) ([]*RenderRecord, error) {
	query := `SELECT id, pack_id, pack_version, prompt_name, model, strict,
		variables_json, output_chars, duration_ms, created_at FROM renders`
	where, args := filterClauses(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, historyLimit(filter))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list renders: %w", err)
	}
	defer rows.Close()

	var out []*RenderRecord
	for rows.Next() {
		var rec RenderRecord
		var strict int
		var varsJSON string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.PackID, &rec.PackVersion, &rec.PromptName,
			&rec.Model, &strict, &varsJSON, &rec.OutputChars, &rec.DurationMs,
			&createdAt); err != nil {
			return nil, fmt.Errorf("store: scan render: %w", err)
		}
		rec.Strict = strict != 0
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		if varsJSON != "" {
			if err := json.Unmarshal([]byte(varsJSON), &rec.Variables); err != nil {
				return nil, fmt.Errorf("store: unmarshal variables: %w", err)
			}
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// ListValidations returns recorded validation outcomes, newest first.
func (s *SQLiteStore) ListValidations(ctx context.Context, filter HistoryFilter) ([]*ValidationRecord, error) {
	query := `SELECT id, pack_id, prompt_name, content_chars, is_valid, blocking,
		violations_json, created_at FROM validations`
	where, args := filterClauses(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, historyLimit(filter))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list validations: %w", err)
	}
	defer rows.Close()

	var out []*ValidationRecord
	for rows.Next() {
		var rec ValidationRecord
		var isValid, blocking int
		var violationsJSON string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.PackID, &rec.PromptName, &rec.ContentChars,
			&isValid, &blocking, &violationsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan validation: %w", err)
		}
		rec.IsValid = isValid != 0
		rec.Blocking = blocking != 0
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		if err := json.Unmarshal([]byte(violationsJSON), &rec.Violations); err != nil {
			return nil, fmt.Errorf("store: unmarshal violations: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Close releases prepared statements and the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	for _, stmt := range []*sql.Stmt{s.insertRenderStmt, s.insertValidationStmt} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func filterClauses(filter HistoryFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.PackID != "" {
		clauses = append(clauses, "pack_id = ?")
		args = append(args, filter.PackID)
	}
	if filter.PromptName != "" {
		clauses = append(clauses, "prompt_name = ?")
		args = append(args, filter.PromptName)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.Unix())
	}
	return strings.Join(clauses, " AND "), args
}

func historyLimit(filter HistoryFilter) int {
	if filter.Limit > 0 {
		return filter.Limit
	}
	return defaultHistoryLimit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package history persists an audit trail of tool executions. The
// conversation itself is deliberately not persisted; the audit trail exists
// so a user can review after the fact what the agent actually did to their
// filesystem and shell.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/akepo225/offline-coding-agent/internal/parser"
	"github.com/akepo225/offline-coding-agent/internal/tools"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Execution is one audited tool call.
type Execution struct {
	ID        int64
	SessionID string
	Iteration int
	ToolName  string
	Arguments string // JSON object in argument order
	Success   bool
	Output    string
	Error     string
	CreatedAt time.Time
}

type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) the audit database at path.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func migrationVersion(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.Index(base, "_")
	if idx > 0 {
		base = base[:idx]
	}
	version, err := strconv.Atoi(base)
	if err != nil {
		return 0
	}
	return version
}

// RecordExecution appends one tool execution to the audit trail.
func (s *Store) RecordExecution(ctx context.Context, sessionID string, iteration int, call parser.ToolCall, result tools.Result) error {
	arguments, err := json.Marshal(call.Args)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO tool_executions
		(session_id, iteration, tool_name, arguments, success, output, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, iteration, call.Name, string(arguments),
		boolToInt(result.Success), result.Output, result.Err)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// ListSession returns a session's executions in insertion order.
func (s *Store) ListSession(ctx context.Context, sessionID string) ([]Execution, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, iteration, tool_name,
		arguments, success, output, error, created_at
		FROM tool_executions WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var executions []Execution
	for rows.Next() {
		var (
			exec    Execution
			success int
		)
		if err := rows.Scan(&exec.ID, &exec.SessionID, &exec.Iteration, &exec.ToolName,
			&exec.Arguments, &success, &exec.Output, &exec.Error, &exec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		exec.Success = success != 0
		executions = append(executions, exec)
	}
	return executions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

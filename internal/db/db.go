package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Journal actions
const (
	ActionInstall   = "install"
	ActionUninstall = "uninstall"
	ActionSkip      = "skip"
)

// Journal statuses
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusUnknown = "unknown"
)

const schemaVersion = 1

// DB is the operation journal with separate read/write pools
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// New opens (or creates) the journal at dbPath
func New(ctx context.Context, dbPath string) (*DB, error) {
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	// sqlite allows a single writer
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(4)
	read.SetMaxIdleConns(2)
	read.SetConnMaxIdleTime(time.Minute)

	db := &DB{write: write, read: read, path: dbPath}
	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Path returns the database file location
func (db *DB) Path() string {
	return db.path
}

// Close closes both connection pools
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

// Ping checks that the database answers queries
func (db *DB) Ping(ctx context.Context) error {
	var n int
	if err := db.read.QueryRowContext(ctx, "SELECT COUNT(*) FROM operations").Scan(&n); err != nil {
		return fmt.Errorf("query operations: %w", err)
	}
	return nil
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS operations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    action TEXT NOT NULL,
    library TEXT NOT NULL,
    version TEXT,
    status TEXT NOT NULL,
    detail TEXT,
    metadata TEXT,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_operations_library ON operations(library);
CREATE INDEX IF NOT EXISTS idx_operations_created ON operations(created_at);

CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    description TEXT
);
	`

	if _, err := db.write.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	_, err := db.write.ExecContext(ctx,
		"INSERT OR IGNORE INTO schema_migrations (version, description) VALUES (?, ?)",
		schemaVersion, "operations journal")
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// Operation is one journal entry
type Operation struct {
	ID        int64                  `json:"id"`
	Action    string                 `json:"action"`
	Library   string                 `json:"library"`
	Version   string                 `json:"version,omitempty"`
	Status    string                 `json:"status"`
	Detail    string                 `json:"detail,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Record appends op to the journal and sets its ID. A zero CreatedAt is
// replaced by the current time.
func (db *DB) Record(ctx context.Context, op *Operation) error {
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}

	metadataJSON, err := json.Marshal(op.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
INSERT INTO operations (action, library, version, status, detail, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := db.write.ExecContext(ctx, query,
		op.Action,
		op.Library,
		op.Version,
		op.Status,
		op.Detail,
		string(metadataJSON),
		op.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}

	if op.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("read operation id: %w", err)
	}
	return nil
}

// ListOptions filters List
type ListOptions struct {
	Limit   int    // zero or negative means no limit
	Library string // empty means every library
	Action  string // empty means every action
}

// List returns journal entries, newest first
func (db *DB) List(ctx context.Context, opts ListOptions) ([]Operation, error) {
	var (
		where []string
		args  []interface{}
	)
	if opts.Library != "" {
		where = append(where, "library = ?")
		args = append(args, opts.Library)
	}
	if opts.Action != "" {
		where = append(where, "action = ?")
		args = append(args, opts.Action)
	}

	query := "SELECT id, action, library, version, status, detail, metadata, created_at FROM operations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var (
			op                             Operation
			version, detail, metadataJSON sql.NullString
		)
		if err := rows.Scan(&op.ID, &op.Action, &op.Library, &version, &op.Status, &detail, &metadataJSON, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.Version = version.String
		op.Detail = detail.String

		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &op.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ops, nil
}

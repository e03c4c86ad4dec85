// Package snapstore keeps serialized node documents in SQLite so tools can
// save a propagated tree and read it back later. Documents are stored as the
// same JSON the nodes marshal to.
package snapstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/phanxgames/arbor"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned by Load for unknown snapshot ids.
var ErrNotFound = errors.New("snapshot not found")

// Store provides durable storage for node documents.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Entry describes a stored snapshot without its document.
type Entry struct {
	ID        int64
	Label     string
	RootUUID  string
	RootName  string
	NodeCount int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores doc under label and returns the new snapshot id.
func (s *Store) Save(ctx context.Context, label string, doc arbor.Document) (int64, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (label, root_uuid, root_name, node_count, document, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		label, doc.UUID, doc.Name, doc.Count(), string(data), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}
	return id, nil
}

// Load returns the document stored under id.
func (s *Store) Load(ctx context.Context, id int64) (arbor.Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM snapshots WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return arbor.Document{}, fmt.Errorf("load %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return arbor.Document{}, fmt.Errorf("load %d: %w", id, err)
	}
	var doc arbor.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return arbor.Document{}, fmt.Errorf("decode snapshot %d: %w", id, err)
	}
	return doc, nil
}

// List returns all snapshots, oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.list(ctx, `SELECT id, label, root_uuid, root_name, node_count, created_at
		FROM snapshots ORDER BY id`)
}

// ListByRoot returns the snapshots of the tree whose root has rootUUID.
func (s *Store) ListByRoot(ctx context.Context, rootUUID string) ([]Entry, error) {
	return s.list(ctx, `SELECT id, label, root_uuid, root_name, node_count, created_at
		FROM snapshots WHERE root_uuid = ? ORDER BY id`, rootUUID)
}

// Delete removes a snapshot and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Label, &e.RootUUID, &e.RootName, &e.NodeCount, &created); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return entries, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"ruh-integration-pages/internal/ioformats"
	"ruh-integration-pages/internal/models"
)

// SQLite keeps the ledger in a connectors table. An empty table is seeded
// from the connector list file; afterwards the database is the source of
// truth.
type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS connectors (
	position INTEGER PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	logo TEXT NOT NULL DEFAULT '',
	published INTEGER NOT NULL DEFAULT 0,
	extra TEXT,
	published_at TEXT
);`

// OpenSQLite opens (or creates) the database at dbPath with WAL enabled and
// seeds it from seedPath when the table is empty. seedPath may be empty.
func OpenSQLite(ctx context.Context, dbPath, seedPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.seed(ctx, seedPath); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) seed(ctx context.Context, path string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM connectors").Scan(&n); err != nil {
		return err
	}
	if n > 0 || path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	list, err := ioformats.ReadConnectors(path)
	if err != nil {
		return err
	}
	return s.Insert(ctx, list)
}

// Insert appends connectors after the existing ones. Names already present
// are skipped.
func (s *SQLite) Insert(ctx context.Context, list []models.Connector) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var last int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), 0) FROM connectors").Scan(&last); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO connectors (position, name, logo, published, extra) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range list {
		var extra sql.NullString
		if len(c.Extra) > 0 {
			b, err := json.Marshal(c.Extra)
			if err != nil {
				return err
			}
			extra = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, last+i+1, c.Name, c.Logo, c.Published, extra); err != nil {
			return fmt.Errorf("insert %s: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) LoadAll(ctx context.Context) ([]models.Connector, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, logo, published, extra FROM connectors ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Connector
	for rows.Next() {
		var (
			c     models.Connector
			extra sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.Logo, &c.Published, &extra); err != nil {
			return nil, err
		}
		if extra.Valid && extra.String != "" {
			if err := json.Unmarshal([]byte(extra.String), &c.Extra); err != nil {
				return nil, fmt.Errorf("decode extra for %s: %w", c.Name, err)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLite) MarkPublished(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE connectors SET published = 1, published_at = datetime('now') WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

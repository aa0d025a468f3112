package pipeline

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aluiziolira/go-toscrape/models"
)

//go:embed schema.sql
var sqliteSchema string

// SQLiteWriter stores each record as a JSON payload row keyed by kind and
// record key.
type SQLiteWriter[T models.Row] struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteWriter opens (or creates) the database at path and applies the
// schema.
func NewSQLiteWriter[T models.Row](path string) (*SQLiteWriter[T], error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &SQLiteWriter[T]{db: db, path: path, now: time.Now}, nil
}

// Write inserts records in one transaction.
func (sw *SQLiteWriter[T]) Write(records []T) error {
	ctx := context.Background()
	tx, err := sw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO records (kind, record_key, payload, scraped_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare sqlite insert: %w", err)
	}
	defer stmt.Close()

	scrapedAt := sw.now().Unix()
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode sqlite payload: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, rec.Kind(), rec.Key(), string(payload), scrapedAt); err != nil {
			return fmt.Errorf("insert sqlite record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite transaction: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (sw *SQLiteWriter[T]) Close() error {
	return sw.db.Close()
}

// Validate reopens the database and checks it holds at least one record.
func (sw *SQLiteWriter[T]) Validate() error {
	db, err := sql.Open("sqlite", sw.path)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return fmt.Errorf("count sqlite records: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite database has no records")
	}
	return nil
}

// Count returns the number of stored records of kind.
func (sw *SQLiteWriter[T]) Count(kind string) (int, error) {
	var n int
	err := sw.db.QueryRow("SELECT COUNT(*) FROM records WHERE kind = ?", kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sqlite records: %w", err)
	}
	return n, nil
}

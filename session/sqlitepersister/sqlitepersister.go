// Package sqlitepersister keeps session records in a SQLite database.
package sqlitepersister

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/rxadmin/session"
	_ "github.com/mattn/go-sqlite3"
)

var _ session.Persister = (*Persister)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS session_records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

type Persister struct {
	db *sql.DB
}

func New(storagePath string) (*Persister, error) {
	const op = "sqlitepersister.New"

	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Persister{db: db}, nil
}

func (p *Persister) Close() error {
	return p.db.Close()
}

func (p *Persister) Load(key string) ([]byte, error) {
	const op = "sqlitepersister.Load"

	var value []byte
	err := p.db.QueryRowContext(context.Background(), "SELECT value FROM session_records WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

func (p *Persister) Save(key string, data []byte) error {
	const op = "sqlitepersister.Save"

	_, err := p.db.ExecContext(context.Background(), `
		INSERT INTO session_records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Persister) Remove(key string) error {
	const op = "sqlitepersister.Remove"

	res, err := p.db.ExecContext(context.Background(), "DELETE FROM session_records WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}

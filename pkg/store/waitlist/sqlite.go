package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/models"
	"pharmacy-site/pkg/validation"
)

const schema = `
CREATE TABLE IF NOT EXISTS waitlist_entries (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'active'
);
CREATE UNIQUE INDEX IF NOT EXISTS waitlist_entries_email ON waitlist_entries (lower(email));
`

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens the waitlist database file with WAL, a busy timeout and
// immediate write transactions.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open waitlist database: %w", err)
	}
	return db, nil
}

// NewSQLiteStore returns a Store backed by SQLite, creating the table if needed.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("waitlist migrate: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	return list(ctx, s.db)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func list(ctx context.Context, q querier) ([]models.WaitlistEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, email, phone, created_at, status
		FROM waitlist_entries ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("waitlist list: %w", err)
	}
	defer rows.Close()

	var out []models.WaitlistEntry
	for rows.Next() {
		var e models.WaitlistEntry
		var createdAt, status string
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &createdAt, &status); err != nil {
			return nil, fmt.Errorf("waitlist scan: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("waitlist entry %s created_at: %w", e.ID, err)
		}
		e.CreatedAt = at
		e.Status = models.WaitlistStatus(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Append scans the existing entries inside the write transaction, so the
// check and the insert see the same data. The unique index backs it up.
func (s *sqliteStore) Append(ctx context.Context, e models.WaitlistEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("waitlist append: %w", err)
	}
	defer tx.Rollback()

	existing, err := list(ctx, tx)
	if err != nil {
		return err
	}
	if validation.EmailTaken(e.Email, existing) {
		return errs.ErrDuplicateEmail
	}

	if e.Status == "" {
		e.Status = models.WaitlistActive
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO waitlist_entries (id, name, email, phone, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Name,
		strings.TrimSpace(e.Email),
		e.Phone,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(e.Status),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.ErrDuplicateEmail
		}
		return fmt.Errorf("waitlist append: %w", err)
	}
	return tx.Commit()
}

// isUniqueViolation reports whether err is SQLite rejecting a row for the
// unique email index.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

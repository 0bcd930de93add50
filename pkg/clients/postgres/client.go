package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"pharmacy-site/pkg/errs"
)

// Client defines the interface for inserting rows directly into Postgres
type Client interface {
	Insert(ctx context.Context, table string, row map[string]any) (string, error)
}

type clientImpl struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClient wraps an open database handle
func NewClient(db *sql.DB, logger *zap.Logger) Client {
	return &clientImpl{db: db, logger: logger.Named("postgres")}
}

// Open connects using a lib/pq DSN and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &errs.TransportError{Service: "backend", Err: err}
	}
	return db, nil
}

// Insert creates one row and returns its id. Columns are written in sorted
// order so the generated statement is stable.
func (c *clientImpl) Insert(ctx context.Context, table string, row map[string]any) (string, error) {
	if len(row) == 0 {
		return "", fmt.Errorf("error inserting into %s: empty row", table)
	}

	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = pq.QuoteIdentifier(col)
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		pq.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(params, ", "))

	var id string
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		c.logger.Error("insert failed", zap.String("table", table), zap.Error(err))
		return "", fmt.Errorf("error inserting into %s: %w", table, err)
	}

	c.logger.Info("created record", zap.String("table", table), zap.String("id", id))
	return id, nil
}

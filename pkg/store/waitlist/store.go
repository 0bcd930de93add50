// Package waitlist persists waitlist signups and enforces one entry per email
// address, compared without regard to case.
package waitlist

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"pharmacy-site/pkg/models"
)

// Store persists waitlist entries
type Store interface {
	// List returns every entry, oldest first.
	List(ctx context.Context) ([]models.WaitlistEntry, error)
	// Append stores entry, or returns errs.ErrDuplicateEmail when an entry
	// with the same email (case-insensitive) already exists.
	Append(ctx context.Context, entry models.WaitlistEntry) error
}

// Open picks the Redis store when addr is set, the SQLite file at path
// otherwise. The returned close func releases the connection.
func Open(ctx context.Context, redisAddr, redisPass, path string) (Store, func() error, error) {
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr, Password: redisPass})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("waitlist redis ping: %w", err)
		}
		return NewRedisStore(rdb), rdb.Close, nil
	}

	db, err := OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	store, err := NewSQLiteStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}

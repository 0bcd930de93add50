package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/models"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)
	return s
}

func entry(email string, at time.Time) models.WaitlistEntry {
	return models.WaitlistEntry{
		ID:        uuid.NewString(),
		Name:      "Jane Smith",
		Email:     email,
		CreatedAt: at,
	}
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Append(ctx, entry("A@x.com", base)))
	assert.ErrorIs(t, s.Append(ctx, entry("a@X.com", base.Add(time.Minute))), errs.ErrDuplicateEmail)
	require.NoError(t, s.Append(ctx, entry("b@x.com", base.Add(2*time.Minute))))

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A@x.com", got[0].Email)
	assert.Equal(t, models.WaitlistActive, got[0].Status)
	assert.True(t, got[0].CreatedAt.Equal(base))
	assert.Equal(t, "b@x.com", got[1].Email)
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, newSQLiteStore(t))
}

func TestSQLiteStoreEmpty(t *testing.T) {
	got, err := newSQLiteStore(t).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("WAITLIST_REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("WAITLIST_REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		rdb.Del(context.Background(), redisKey)
		rdb.Close()
	})
	require.NoError(t, rdb.Del(context.Background(), redisKey).Err())

	storeContract(t, NewRedisStore(rdb))
}

func TestOpenSQLiteFileSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "waitlist.db")

	s, closeFn, err := Open(ctx, "", "", path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, entry("jane@example.com", time.Now())))
	require.NoError(t, closeFn())

	s, closeFn, err = Open(ctx, "", "", path)
	require.NoError(t, err)
	defer closeFn()
	assert.ErrorIs(t, s.Append(ctx, entry("JANE@example.com", time.Now())), errs.ErrDuplicateEmail)
	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteUniqueIndexIsRecognised(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	_, err = NewSQLiteStore(ctx, db)
	require.NoError(t, err)

	insert := `INSERT INTO waitlist_entries (id, name, email, created_at) VALUES (?, 'Jane', ?, '2026-10-19T12:00:00Z')`
	_, err = db.ExecContext(ctx, insert, "1", "A@x.com")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "2", "a@X.com")
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err), err.Error())

	_, err = db.ExecContext(ctx, insert, "1", "b@x.com")
	require.Error(t, err)
	assert.False(t, isUniqueViolation(err), "primary key clash is not an email duplicate")
	assert.False(t, isUniqueViolation(errors.New("UNIQUE constraint failed")))
}

func TestSQLiteListRejectsBadTimestamp(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	s, err := NewSQLiteStore(ctx, db)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO waitlist_entries (id, name, email, created_at) VALUES ('1', 'Jane', 'a@x.com', 'yesterday')`)
	require.NoError(t, err)

	_, err = s.List(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}

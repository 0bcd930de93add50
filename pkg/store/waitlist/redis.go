package waitlist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/models"
)

const redisKey = "waitlist:entries"

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a Store backed by a Redis hash keyed by lowercased
// email. HSETNX makes the uniqueness check and the write a single step, so
// several site instances can share it.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func (s *redisStore) List(ctx context.Context) ([]models.WaitlistEntry, error) {
	vals, err := s.rdb.HVals(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("waitlist list: %w", err)
	}

	out := make([]models.WaitlistEntry, 0, len(vals))
	for _, v := range vals {
		var e models.WaitlistEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("waitlist decode: %w", err)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *redisStore) Append(ctx context.Context, e models.WaitlistEntry) error {
	if e.Status == "" {
		e.Status = models.WaitlistActive
	}
	e.Email = strings.TrimSpace(e.Email)

	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("waitlist encode: %w", err)
	}

	ok, err := s.rdb.HSetNX(ctx, redisKey, strings.ToLower(e.Email), b).Result()
	if err != nil {
		return fmt.Errorf("waitlist append: %w", err)
	}
	if !ok {
		return errs.ErrDuplicateEmail
	}
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/soundlane/studio-booking-backend/internal/domain"
	"github.com/soundlane/studio-booking-backend/internal/repository"
)

type cachedRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ScheduleCache is a read-through cache over a ScheduleRepository. Entries
// live per (studio, employee, window) and are dropped whenever that
// employee's schedule mutates. Cache failures fall back to the inner
// repository; a stale read can never admit a conflict because the authority
// on write is the version check in the order repository.
type ScheduleCache struct {
	inner  repository.ScheduleRepository
	client *goredis.Client
	ttl    time.Duration
}

func NewScheduleCache(inner repository.ScheduleRepository, client *goredis.Client, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{inner: inner, client: client, ttl: ttl}
}

func scheduleKey(studioID, employeeID uuid.UUID, window domain.TimeRange, exclude *uuid.UUID) string {
	suffix := "all"
	if exclude != nil {
		suffix = exclude.String()
	}
	return fmt.Sprintf("schedule:%s:%s:%d-%d:%s",
		studioID, employeeID, window.Start().Unix(), window.End().Unix(), suffix)
}

func (c *ScheduleCache) BookedRanges(ctx context.Context, studioID, employeeID uuid.UUID, window domain.TimeRange, exclude *uuid.UUID) ([]domain.TimeRange, error) {
	key := scheduleKey(studioID, employeeID, window, exclude)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached []cachedRange
		if err := json.Unmarshal(raw, &cached); err == nil {
			ranges := make([]domain.TimeRange, 0, len(cached))
			for _, cr := range cached {
				rng, err := domain.NewTimeRange(cr.Start, cr.End)
				if err != nil {
					return nil, fmt.Errorf("cached range is invalid: %w", err)
				}
				ranges = append(ranges, rng)
			}
			return ranges, nil
		}
	} else if err != goredis.Nil {
		slog.Warn("Schedule cache read failed, falling back to store", "key", key, "err", err)
	}

	ranges, err := c.inner.BookedRanges(ctx, studioID, employeeID, window, exclude)
	if err != nil {
		return nil, err
	}

	cached := make([]cachedRange, 0, len(ranges))
	for _, r := range ranges {
		cached = append(cached, cachedRange{Start: r.Start(), End: r.End()})
	}
	if raw, err := json.Marshal(cached); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			slog.Warn("Schedule cache write failed", "key", key, "err", err)
		}
	}
	return ranges, nil
}

// Invalidate drops every cached window for the employee. Best effort: a
// missed invalidation expires with the TTL.
func (c *ScheduleCache) Invalidate(ctx context.Context, studioID, employeeID uuid.UUID) error {
	pattern := fmt.Sprintf("schedule:%s:%s:*", studioID, employeeID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"serverless-todo/backend/internal/models"
	"serverless-todo/backend/internal/repositories"

	"golang.org/x/sync/singleflight"
)

const DefaultListTTL = 5 * time.Minute

var _ repositories.Store = (*TaskStore)(nil)

// TaskStore caches scan results per user in Redis and drops a user's entries
// whenever one of their tasks is written. Redis failures are counted and
// otherwise ignored, so the wrapped store stays the source of truth.
type TaskStore struct {
	next    repositories.Store
	cache   *RedisCache
	ttl     time.Duration
	metrics *CacheMetrics
	fills   singleflight.Group
}

func NewTaskStore(next repositories.Store, cache *RedisCache, ttl time.Duration) *TaskStore {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &TaskStore{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: NewCacheMetrics(),
	}
}

func (s *TaskStore) Metrics() *CacheMetrics {
	return s.metrics
}

func (s *TaskStore) Put(ctx context.Context, task *models.Task) error {
	if err := s.next.Put(ctx, task); err != nil {
		return err
	}
	s.invalidate(ctx, task.UserID)
	return nil
}

func (s *TaskStore) Scan(ctx context.Context, filter repositories.Filter) ([]models.Task, error) {
	userID, ok := filter.Value(repositories.FieldUserID)
	if !ok {
		return s.next.Scan(ctx, filter)
	}
	key := listKey(fmt.Sprint(userID), filter)

	var cached []models.Task
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		s.metrics.RecordHit()
		return cached, nil
	case errors.Is(err, ErrCacheMiss):
		s.metrics.RecordMiss()
	default:
		s.metrics.RecordError()
	}

	// Concurrent misses on the same key share one store scan.
	val, err, _ := s.fills.Do(key, func() (interface{}, error) {
		tasks, err := s.next.Scan(ctx, filter)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, key, tasks, s.ttl); err != nil {
			s.metrics.RecordError()
		} else {
			s.metrics.RecordSet()
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}

	return val.([]models.Task), nil
}

func (s *TaskStore) Update(ctx context.Context, update repositories.Update) (*models.Task, error) {
	task, err := s.next.Update(ctx, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, task.UserID)
	return task, nil
}

func (s *TaskStore) invalidate(ctx context.Context, userID string) {
	if err := s.cache.DeletePattern(ctx, userPattern(userID)); err != nil {
		s.metrics.RecordError()
		return
	}
	s.metrics.RecordDelete()
}

// userSegment hashes the user id so that glob metacharacters in a subject
// cannot leak into the SCAN pattern.
func userSegment(userID string) string {
	sum := sha1.Sum([]byte(userID))
	return hex.EncodeToString(sum[:])
}

func userPattern(userID string) string {
	return fmt.Sprintf("tasks:%s:*", userSegment(userID))
}

// listKey is stable for a given set of conditions regardless of their order.
func listKey(userID string, filter repositories.Filter) string {
	parts := make([]string, 0, len(filter.Conditions))
	for _, c := range filter.Conditions {
		parts = append(parts, fmt.Sprintf("%s=%v", c.Field, c.Value))
	}
	sort.Strings(parts)

	sum := sha1.Sum([]byte(strings.Join(parts, "&")))
	return fmt.Sprintf("tasks:%s:%s", userSegment(userID), hex.EncodeToString(sum[:8]))
}

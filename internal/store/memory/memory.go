// Package memory is an in-process task store. It keeps insertion order and
// applies conditional updates under a single lock, which gives the same
// per-record atomicity the production stores provide.
package memory

import (
	"context"
	"fmt"
	"sync"

	"serverless-todo/backend/internal/models"
	"serverless-todo/backend/internal/repositories"
)

var _ repositories.Store = (*Store)(nil)

type Store struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]*models.Task
}

func New(seed ...models.Task) *Store {
	s := &Store{tasks: make(map[string]*models.Task)}
	for i := range seed {
		task := seed[i]
		s.order = append(s.order, task.ID)
		s.tasks[task.ID] = &task
	}
	return s
}

func (s *Store) Put(ctx context.Context, task *models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already exists", task.ID)
	}

	stored := *task
	s.tasks[task.ID] = &stored
	s.order = append(s.order, task.ID)
	return nil
}

func (s *Store) Scan(ctx context.Context, filter repositories.Filter) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []models.Task
	for _, id := range s.order {
		task := s.tasks[id]
		if repositories.Matches(task, filter.Conditions) {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (s *Store) Update(ctx context.Context, update repositories.Update) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[update.Key]
	if !ok || !repositories.Matches(task, update.Conditions) {
		return nil, repositories.ErrConditionFailed
	}

	repositories.Apply(task, update.Set)
	updated := *task
	return &updated, nil
}

// Get returns a copy of the stored task.
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return *task, true
}

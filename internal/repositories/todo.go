package repositories

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"serverless-todo/backend/internal/models"

	"golang.org/x/sync/errgroup"
)

const DefaultClearConcurrency = 8

type TaskRepository struct {
	store            Store
	clearConcurrency int
}

type Option func(*TaskRepository)

// WithClearConcurrency bounds the number of in-flight updates issued by
// ClearCompleted. Values below 1 are ignored.
func WithClearConcurrency(n int) Option {
	return func(r *TaskRepository) {
		if n > 0 {
			r.clearConcurrency = n
		}
	}
}

func NewTaskRepository(store Store, opts ...Option) *TaskRepository {
	r := &TaskRepository{
		store:            store,
		clearConcurrency: DefaultClearConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TaskRepository) Store(ctx context.Context, user models.User, taskName string) (*models.Task, error) {
	task, err := models.NewTask(user, taskName)
	if err != nil {
		return nil, err
	}

	if err := r.store.Put(ctx, task); err != nil {
		return nil, &StorageError{Op: "store", Err: err}
	}

	return task, nil
}

// List returns the user's tasks, optionally narrowed to a status. An empty
// status means every status.
func (r *TaskRepository) List(ctx context.Context, user models.User, status string) ([]models.Task, error) {
	filter := Filter{Conditions: []Condition{Equal(FieldUserID, user.ID)}}

	if status != "" {
		s, err := strconv.Atoi(status)
		if err != nil {
			return nil, &ValidationError{Field: "status", Message: "must be an integer"}
		}
		filter.Conditions = append(filter.Conditions, Equal(FieldTaskStatus, s))
	}

	tasks, err := r.store.Scan(ctx, filter)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	return tasks, nil
}

// UpdateStatus sets the task's status only if the task belongs to user. The
// ownership check is part of the store write itself.
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID string, user models.User, status int) (*models.Task, error) {
	task, err := r.store.Update(ctx, Update{
		Key: taskID,
		Set: map[Field]interface{}{FieldTaskStatus: status},
		Conditions: []Condition{
			Equal(FieldUserID, user.ID),
		},
	})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, ErrOwnershipViolation
		}
		return nil, &StorageError{Op: "update", Err: err}
	}

	return task, nil
}

type ClearResult struct {
	Cleared []string
	Failed  map[string]error
}

// ClearCompleted moves every completed task of user to the cleared status.
// Updates run concurrently and are not rolled back on failure; when any of
// them fails the returned error is a *PartialBatchFailure and the result still
// lists what was cleared.
func (r *TaskRepository) ClearCompleted(ctx context.Context, user models.User) (*ClearResult, error) {
	completed, err := r.List(ctx, user, strconv.Itoa(models.StatusCompleted))
	if err != nil {
		return nil, err
	}

	result := &ClearResult{
		Cleared: make([]string, 0, len(completed)),
		Failed:  make(map[string]error),
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.clearConcurrency)

	for _, task := range completed {
		taskID := task.ID
		g.Go(func() error {
			_, err := r.UpdateStatus(ctx, taskID, user, models.StatusCleared)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[taskID] = err
			} else {
				result.Cleared = append(result.Cleared, taskID)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(result.Failed) > 0 {
		return result, &PartialBatchFailure{Failed: result.Failed}
	}

	return result, nil
}

// Package sqlstore keeps tasks in a relational table through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"serverless-todo/backend/internal/models"
	"serverless-todo/backend/internal/repositories"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ repositories.Store = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.Task{})
}

func (s *Store) Put(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, filter repositories.Filter) ([]models.Task, error) {
	query := s.db.WithContext(ctx)
	if len(filter.Conditions) > 0 {
		query = query.Clauses(where(filter.Conditions))
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

// Update issues a single UPDATE guarded by the conditions, so ownership is
// checked by the database in the same statement that writes. The new row is
// read back inside the transaction.
func (s *Store) Update(ctx context.Context, update repositories.Update) (*models.Task, error) {
	values := make(map[string]interface{}, len(update.Set))
	for field, value := range update.Set {
		values[string(field)] = value
	}

	conditions := append([]repositories.Condition{repositories.Equal(repositories.FieldID, update.Key)}, update.Conditions...)

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Task{}).Clauses(where(conditions)).Updates(values)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repositories.ErrConditionFailed
		}
		return tx.Where("id = ?", update.Key).Take(&task).Error
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task %s: %w", update.Key, err)
	}

	return &task, nil
}

func where(conditions []repositories.Condition) clause.Where {
	exprs := make([]clause.Expression, 0, len(conditions))
	for _, c := range conditions {
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: string(c.Field)}, Value: c.Value})
	}
	return clause.Where{Exprs: exprs}
}

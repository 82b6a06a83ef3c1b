package repositories

import (
	"context"

	"serverless-todo/backend/internal/models"
)

// Field names a persisted task attribute. Stores translate fields into their
// native column or attribute names, so only these values are ever sent.
type Field string

const (
	FieldID         Field = "id"
	FieldUserID     Field = "user_id"
	FieldTaskName   Field = "task_name"
	FieldTaskStatus Field = "task_status"
)

// Condition is an equality test on a single field.
type Condition struct {
	Field Field
	Value interface{}
}

func Equal(field Field, value interface{}) Condition {
	return Condition{Field: field, Value: value}
}

// Filter selects records matching every condition.
type Filter struct {
	Conditions []Condition
}

func (f Filter) Value(field Field) (interface{}, bool) {
	for _, c := range f.Conditions {
		if c.Field == field {
			return c.Value, true
		}
	}
	return nil, false
}

// Update sets fields on the record identified by Key, only if every condition
// holds on the existing record. Stores must evaluate the conditions and apply
// the write atomically.
type Update struct {
	Key        string
	Set        map[Field]interface{}
	Conditions []Condition
}

type Store interface {
	Put(ctx context.Context, task *models.Task) error
	Scan(ctx context.Context, filter Filter) ([]models.Task, error)
	// Update returns the full post-update record, or ErrConditionFailed.
	Update(ctx context.Context, update Update) (*models.Task, error)
}

// Matches reports whether task satisfies every condition. It is shared by
// stores that evaluate conditions in process.
func Matches(task *models.Task, conditions []Condition) bool {
	for _, c := range conditions {
		if !fieldEquals(task, c.Field, c.Value) {
			return false
		}
	}
	return true
}

func fieldEquals(task *models.Task, field Field, value interface{}) bool {
	switch field {
	case FieldID:
		v, ok := value.(string)
		return ok && task.ID == v
	case FieldUserID:
		v, ok := value.(string)
		return ok && task.UserID == v
	case FieldTaskName:
		v, ok := value.(string)
		return ok && task.TaskName == v
	case FieldTaskStatus:
		v, ok := value.(int)
		return ok && task.TaskStatus == v
	default:
		return false
	}
}

// Apply writes the Set values of an update onto task.
func Apply(task *models.Task, set map[Field]interface{}) {
	for field, value := range set {
		switch field {
		case FieldTaskName:
			if v, ok := value.(string); ok {
				task.TaskName = v
			}
		case FieldTaskStatus:
			if v, ok := value.(int); ok {
				task.TaskStatus = v
			}
		}
	}
}

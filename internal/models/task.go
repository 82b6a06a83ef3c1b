package models

import (
	"fmt"

	"github.com/gofrs/uuid"
)

const (
	StatusOpen      = 1
	StatusCompleted = 2
	StatusCleared   = 3
)

type Task struct {
	ID         string `json:"id" dynamodbav:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string `json:"user_id" dynamodbav:"user_id" gorm:"column:user_id;not null;index"`
	TaskName   string `json:"task_name" dynamodbav:"task_name" gorm:"column:task_name;not null"`
	TaskStatus int    `json:"task_status" dynamodbav:"task_status" gorm:"column:task_status;not null;default:1"`
}

func (Task) TableName() string {
	return "tasks"
}

func NewTask(user User, taskName string) (*Task, error) {
	taskID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	return &Task{
		ID:         taskID.String(),
		UserID:     user.ID,
		TaskName:   taskName,
		TaskStatus: StatusOpen,
	}, nil
}

func (t *Task) SetTaskName(taskName string) *Task {
	t.TaskName = taskName
	return t
}

func (t *Task) SetStatus(status int) *Task {
	t.TaskStatus = status
	return t
}

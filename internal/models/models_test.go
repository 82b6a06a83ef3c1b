package models_test

import (
	"testing"

	"serverless-todo/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	user := models.NewUser("u1", "", "test@email.com")

	task, err := models.NewTask(user, "buy milk")
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "u1", task.UserID)
	assert.Equal(t, "buy milk", task.TaskName)
	assert.Equal(t, models.StatusOpen, task.TaskStatus)
}

func TestNewTask_UniqueIDs(t *testing.T) {
	user := models.NewUser("u1", "", "")
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		task, err := models.NewTask(user, "task")
		require.NoError(t, err)
		if seen[task.ID] {
			t.Fatalf("duplicate task id %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestTask_SetTaskName(t *testing.T) {
	task, err := models.NewTask(models.NewUser("u1", "", ""), "test")
	require.NoError(t, err)

	task.SetTaskName("new task")

	if task.TaskName != "new task" {
		t.Errorf("Expected task name 'new task', got '%s'", task.TaskName)
	}
}

func TestTask_SetStatus(t *testing.T) {
	task, err := models.NewTask(models.NewUser("u1", "", ""), "test")
	require.NoError(t, err)

	got := task.SetStatus(99).SetTaskName("chained")

	assert.Same(t, task, got)
	assert.Equal(t, 99, task.TaskStatus)
	assert.Equal(t, "chained", task.TaskName)
}

func TestResolveUser(t *testing.T) {
	user, err := models.ResolveUser(models.AuthClaim{Subject: "abc-123", Email: "a@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "abc-123", user.ID)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestResolveUser_MissingSubject(t *testing.T) {
	tests := []struct {
		name  string
		claim models.AuthClaim
	}{
		{name: "empty claim", claim: models.AuthClaim{}},
		{name: "email only", claim: models.AuthClaim{Email: "a@example.com"}},
		{name: "blank subject", claim: models.AuthClaim{Subject: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := models.ResolveUser(tt.claim)
			assert.ErrorIs(t, err, models.ErrInvalidClaim)
		})
	}
}

func TestClaimFromMap(t *testing.T) {
	claim := models.ClaimFromMap(map[string]interface{}{
		"sub":   "u1",
		"email": "u1@example.com",
		"other": 42,
	})

	assert.Equal(t, models.AuthClaim{Subject: "u1", Email: "u1@example.com"}, claim)
	assert.Equal(t, models.AuthClaim{}, models.ClaimFromMap(map[string]interface{}{"sub": 7}))
}

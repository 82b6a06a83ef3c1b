package sqlstore_test

import (
	"context"
	"testing"

	"serverless-todo/backend/internal/models"
	"serverless-todo/backend/internal/repositories"
	"serverless-todo/backend/internal/store/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) (*sqlstore.Store, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store := sqlstore.New(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store, db
}

func TestMigrate_CreatesTasksTable(t *testing.T) {
	_, db := setupTestStore(t)

	assert.True(t, db.Migrator().HasTable("tasks"))
	for _, column := range []string{"id", "user_id", "task_name", "task_status"} {
		assert.True(t, db.Migrator().HasColumn(&models.Task{}, column), column)
	}
}

func TestPut_DuplicateID(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.Task{ID: "t1", UserID: "u1", TaskName: "a", TaskStatus: 1}))
	assert.Error(t, store.Put(ctx, &models.Task{ID: "t1", UserID: "u2", TaskName: "b", TaskStatus: 1}))
}

func TestScan_NoConditionsReturnsAll(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.Task{ID: "t1", UserID: "u1", TaskName: "a", TaskStatus: 1}))
	require.NoError(t, store.Put(ctx, &models.Task{ID: "t2", UserID: "u2", TaskName: "b", TaskStatus: 2}))

	tasks, err := store.Scan(ctx, repositories.Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestUpdate_ConditionFailure(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.Task{ID: "t1", UserID: "u1", TaskName: "a", TaskStatus: 1}))

	_, err := store.Update(ctx, repositories.Update{
		Key:        "t1",
		Set:        map[repositories.Field]interface{}{repositories.FieldTaskStatus: 2},
		Conditions: []repositories.Condition{repositories.Equal(repositories.FieldUserID, "u2")},
	})
	assert.ErrorIs(t, err, repositories.ErrConditionFailed)

	var task models.Task
	require.NoError(t, db.Where("id = ?", "t1").Take(&task).Error)
	assert.Equal(t, 1, task.TaskStatus)
}

func TestUpdate_ReturnsNewState(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.Task{ID: "t1", UserID: "u1", TaskName: "a", TaskStatus: 1}))

	task, err := store.Update(ctx, repositories.Update{
		Key:        "t1",
		Set:        map[repositories.Field]interface{}{repositories.FieldTaskStatus: 3},
		Conditions: []repositories.Condition{repositories.Equal(repositories.FieldUserID, "u1")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Task{ID: "t1", UserID: "u1", TaskName: "a", TaskStatus: 3}, *task)
}

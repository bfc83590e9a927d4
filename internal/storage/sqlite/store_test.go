package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/storage"
	"github.com/pablasso/smartplan/internal/storage/storagetest"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return openTempStore(t)
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plans.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.CreatePlan(ctx, storagetest.SamplePlan("p1", "Persist")))
	require.NoError(t, store.UpdateTaskStatus(ctx, "p1", 3, plan.StatusInProgress))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetPlan(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusInProgress, got.Task(3).Status)
	assert.Equal(t, []int{2, 1}, got.Task(3).Dependencies)

	var applied int
	require.NoError(t, reopened.sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestCreatePlanRollsBackOnBadTask(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)

	p := storagetest.SamplePlan("broken", "Half written")
	p.Tasks[2].ID = p.Tasks[1].ID

	require.Error(t, store.CreatePlan(ctx, p))

	_, err := store.GetPlan(ctx, "broken")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteRemovesDependencyRows(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)
	require.NoError(t, store.CreatePlan(ctx, storagetest.SamplePlan("d1", "Delete")))
	require.NoError(t, store.DeletePlan(ctx, "d1"))

	var n int
	require.NoError(t, store.sqlDB.QueryRow(`SELECT COUNT(*) FROM task_dependencies`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, store.sqlDB.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n))
	assert.Zero(t, n)
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id INTEGER);\n", extractUpMigration(content))
	assert.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}

func TestApplyMigrationsRecordsApplied(t *testing.T) {
	store := openTempStore(t)
	fsys := fstest.MapFS{
		"002_extra.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE extra (id INTEGER);\n")},
		"notes.txt":     &fstest.MapFile{Data: []byte("ignored")},
	}

	require.NoError(t, applyMigrations(context.Background(), store.sqlDB, fsys))
	require.NoError(t, applyMigrations(context.Background(), store.sqlDB, fsys))

	var n int
	require.NoError(t, store.sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = '002_extra.sql'`).Scan(&n))
	assert.Equal(t, 1, n)
}

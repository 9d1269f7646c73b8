package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/sysblokbot/internal/database"
	"github.com/edgard/sysblokbot/internal/logger"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, logger.Discard())
}

func TestNewDB_MigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "twice.db")
	db, err := database.NewDB(path)
	require.NoError(t, err)
	database.CloseDB(db)

	db, err = database.NewDB(path)
	require.NoError(t, err)
	database.CloseDB(db)
}

func TestRubrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	rubrics, err := store.GetRubrics(ctx)
	require.NoError(t, err)
	assert.Empty(t, rubrics)

	require.NoError(t, store.ReplaceRubrics(ctx, []database.Rubric{
		{Name: "Science", VKTag: "#science@sysblok", TGTag: "#science"},
		{Name: "History", VKTag: "#history@sysblok"},
	}))

	rubrics, err = store.GetRubrics(ctx)
	require.NoError(t, err)
	require.Len(t, rubrics, 2)
	assert.Equal(t, "History", rubrics[0].Name)
	assert.Equal(t, "", rubrics[0].TGTag)
	assert.Equal(t, "#science", rubrics[1].TGTag)
	assert.False(t, rubrics[1].UpdatedAt.IsZero())

	require.NoError(t, store.ReplaceRubrics(ctx, []database.Rubric{{Name: "Linguistics"}}))
	rubrics, err = store.GetRubrics(ctx)
	require.NoError(t, err)
	require.Len(t, rubrics, 1)
	assert.Equal(t, "Linguistics", rubrics[0].Name)
}

func TestReplaceRubrics_RollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.ReplaceRubrics(ctx, []database.Rubric{{Name: "Science"}}))

	// empty names violate the check constraint
	err := store.ReplaceRubrics(ctx, []database.Rubric{{Name: "Art"}, {Name: ""}})
	require.Error(t, err)

	rubrics, err := store.GetRubrics(ctx)
	require.NoError(t, err)
	require.Len(t, rubrics, 1)
	assert.Equal(t, "Science", rubrics[0].Name)
}

func TestReplaceRubrics_DuplicateNames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.ReplaceRubrics(ctx, []database.Rubric{
		{Name: "Science", VKTag: "#a"},
		{Name: "History"},
		{Name: "Science", VKTag: "#b"},
	}))

	rubrics, err := store.GetRubrics(ctx)
	require.NoError(t, err)
	require.Len(t, rubrics, 2)
	assert.Equal(t, "Science", rubrics[1].Name)
	assert.Equal(t, "#b", rubrics[1].VKTag)
}

func TestStrings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.GetString(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ReplaceStrings(ctx, []database.BotString{
		{ID: "greeting", Value: "Hello"},
		{ID: "farewell", Value: "Bye"},
		{ID: "greeting", Value: "Hi"},
	}))

	value, ok, err := store.GetString(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hi", value)

	value, ok, err = store.GetString(ctx, "farewell")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bye", value)

	require.NoError(t, store.ReplaceStrings(ctx, []database.BotString{{ID: "farewell", Value: "Later"}}))
	_, ok, err = store.GetString(ctx, "greeting")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.RunSQLMaintenance(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.RunSQLMaintenance(ctx), context.Canceled)
}

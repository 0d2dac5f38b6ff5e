package postgres_test

import (
	"arbitrage/internal/scanner"
	"arbitrage/pkg/storage/postgres"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivertest"
	"github.com/stretchr/testify/require"
)

func scanJob(categories ...string) scanner.JobArgs {
	return scanner.NewJobArgs(scanner.Request{Categories: categories}, 1, time.Hour)
}

func TestPgSQL_AddJob_SkipsQueuedDuplicate(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	added, err := pg.AddJob(ctx, scanJob("sneakers"), nil)
	require.NoError(t, err)
	require.True(t, added)

	added, err = pg.AddJob(ctx, scanJob("sneakers"), nil)
	require.NoError(t, err)
	require.False(t, added, "equal scan is already queued")

	added, err = pg.AddJob(ctx, scanJob("jackets"), nil)
	require.NoError(t, err)
	require.True(t, added, "different categories are a different job")
}

func TestPgSQL_AddJob_InsideTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	txStorage, err := pg.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = txStorage.Rollback() }()

	_, err = txStorage.AddJob(ctx, scanJob(), &river.InsertOpts{Queue: river.QueueDefault})
	require.NoError(t, err)

	tx, ok := txStorage.(*postgres.PgSQL).DB.(*sql.Tx)
	require.True(t, ok)
	rivertest.RequireInsertedTx[*riverdatabasesql.Driver](ctx, t, tx, &scanner.JobArgs{}, nil)
}

func TestPgSQL_AddJob_OutsideTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := pg.AddJob(ctx, scanJob("sneakers"), nil)
	require.NoError(t, err)

	db, ok := pg.DB.(*sql.DB)
	require.True(t, ok)
	job := rivertest.RequireInserted[*riverdatabasesql.Driver](ctx, t, riverdatabasesql.New(db), &scanner.JobArgs{}, nil)
	require.Equal(t, []string{"sneakers"}, job.Args.Categories)
}

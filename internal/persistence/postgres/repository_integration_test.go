//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/tracker/internal/domain"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("tracker"),
		postgrescontainer.WithUsername("tracker"),
		postgrescontainer.WithPassword("tracker"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	return connStr
}

func TestRepositoryUserLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore(startPostgres(t, ctx))
	t.Cleanup(store.Close)

	repo := NewRepository(store)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	alice, err := repo.CreateUser(ctx, "alice")
	require.NoError(t, err)
	require.NotZero(t, alice.ID)
	require.Equal(t, "alice", alice.Username)

	_, err = repo.CreateUser(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrDuplicateUsername)

	missing, err := repo.GetUser(ctx, alice.ID+1000)
	require.NoError(t, err)
	require.Nil(t, missing)

	found, err := repo.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, found.ID)
}

func TestRepositoryLogFiltering(t *testing.T) {
	ctx := context.Background()
	store := NewStore(startPostgres(t, ctx))
	t.Cleanup(store.Close)

	repo := NewRepository(store)

	user, err := repo.CreateUser(ctx, "bob")
	require.NoError(t, err)

	dates := []string{"2023-01-20", "2022-12-31", "2023-01-01", "2023-02-01", "2023-01-31"}
	for _, d := range dates {
		_, err := repo.CreateExercise(ctx, domain.Exercise{
			UserID:      user.ID,
			Description: "run",
			Duration:    30,
			Date:        d,
		})
		require.NoError(t, err)
	}

	inRange, err := repo.ListExercises(ctx, user.ID, domain.LogFilter{
		From: "2023-01-01",
		To:   "2023-01-31",
	})
	require.NoError(t, err)
	require.Len(t, inRange, 3)
	require.Equal(t, "2023-01-01", inRange[0].Date)
	require.Equal(t, "2023-01-20", inRange[1].Date)
	require.Equal(t, "2023-01-31", inRange[2].Date)

	capped, err := repo.ListExercises(ctx, user.ID, domain.LogFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, capped, 2)
	require.Equal(t, "2022-12-31", capped[0].Date)

	all, err := repo.ListExercises(ctx, user.ID, domain.LogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestRepositoryCascadeDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(startPostgres(t, ctx))
	t.Cleanup(store.Close)

	repo := NewRepository(store)

	user, err := repo.CreateUser(ctx, "carol")
	require.NoError(t, err)

	_, err = repo.CreateExercise(ctx, domain.Exercise{
		UserID:      user.ID,
		Description: "swim",
		Duration:    20,
		Date:        "2023-03-01",
	})
	require.NoError(t, err)

	pool, err := store.Acquire(ctx)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, user.ID)
	require.NoError(t, err)

	orphans, err := repo.ListExercises(ctx, user.ID, domain.LogFilter{})
	require.NoError(t, err)
	require.Empty(t, orphans, "exercises must cascade with their owner")
}

func TestStoreConcurrentFirstAcquire(t *testing.T) {
	ctx := context.Background()
	store := NewStore(startPostgres(t, ctx))
	t.Cleanup(store.Close)

	var wg sync.WaitGroup
	pools := make([]*pgxpool.Pool, 8)
	errs := make([]error, 8)
	for i := range pools {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pools[i], errs[i] = store.Acquire(ctx)
		}(i)
	}
	wg.Wait()

	for i, pool := range pools {
		require.NoError(t, errs[i])
		require.Same(t, pools[0], pool, "all acquirers must share one pool")
	}
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

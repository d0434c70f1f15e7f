package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestHandleOpensOnce(t *testing.T) {
	_, dbURL := setupPostgres(t)
	handle := NewHandle(PoolConfig{URL: dbURL, MaxConnections: 4})
	defer handle.Close()

	pools := make([]*pgxpool.Pool, 8)
	var wg sync.WaitGroup
	for i := range pools {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pool, err := handle.Pool(context.Background())
			require.NoError(t, err)
			pools[i] = pool
		}(i)
	}
	wg.Wait()

	for _, pool := range pools {
		require.Same(t, pools[0], pool)
	}

	handle.Close()
	_, err := handle.Pool(context.Background())
	require.ErrorIs(t, err, ErrHandleClosed)
}

func TestHandleRejectsEmptyURL(t *testing.T) {
	handle := NewHandle(PoolConfig{})
	_, err := handle.Pool(context.Background())
	require.Error(t, err)

	// The failure is sticky.
	_, again := handle.Pool(context.Background())
	require.Equal(t, err, again)
}

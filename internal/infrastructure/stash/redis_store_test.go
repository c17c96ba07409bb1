package stash_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/infrastructure/stash"
)

// Requiere un Redis real: REDIS_TEST_URL=redis://localhost:6379/15
func TestRedisStore_SaveTake(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL no definido")
	}
	ctx := context.Background()
	rdb, err := stash.NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	s := stash.NewRedisStore(rdb, "ventas:test:"+uuid.NewString()+":")
	require.NoError(t, s.Save(ctx, "op-1:s-1", pending("a"), time.Minute))

	got, err := s.Get(ctx, "op-1:s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)

	taken, err := s.Take(ctx, "op-1:s-1")
	require.NoError(t, err)
	require.NotNil(t, taken)

	again, err := s.Take(ctx, "op-1:s-1")
	require.NoError(t, err)
	assert.Nil(t, again)

	ok, err := s.SaveIfAbsent(ctx, "op-1:s-1", pending("b"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.SaveIfAbsent(ctx, "op-1:s-1", pending("c"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "SET NX no pisa la pendiente vigente")
	got, err = s.Get(ctx, "op-1:s-1")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	require.NoError(t, s.Delete(ctx, "op-1:s-1"))
	got, err = s.Get(ctx, "op-1:s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

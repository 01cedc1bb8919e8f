package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopCacheAlwaysMisses(t *testing.T) {
	c := NewNop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "schedule", "k", map[string]int{"a": 1}))

	var out map[string]int
	assert.ErrorIs(t, c.Get(ctx, "schedule", "k", &out), ErrMiss)
	assert.NoError(t, c.Invalidate(ctx, "schedule"))
}

func TestNewRedisClientWithoutAddr(t *testing.T) {
	client, err := NewRedisClient(context.Background(), Options{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

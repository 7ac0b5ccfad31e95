//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rplatform "advent-raffle-backend/internal/platform/redis"
	"advent-raffle-backend/internal/testutil/containers"
)

type prize struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCacheService(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	c := NewCacheService(rplatform.Wrap(rc.Client), "catalog:")

	var got []prize
	found, err := c.Get(ctx, "door:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	loads := 0
	load := func() (interface{}, error) {
		loads++
		return []prize{{ID: "A", Name: "Hoodie"}}, nil
	}
	require.NoError(t, c.GetOrSet(ctx, "door:1", &got, time.Minute, load))
	require.NoError(t, c.GetOrSet(ctx, "door:1", &got, time.Minute, load))
	assert.Equal(t, 1, loads)
	assert.Equal(t, []prize{{ID: "A", Name: "Hoodie"}}, got)

	failing := errors.New("store down")
	err = c.GetOrSet(ctx, "door:2", &got, time.Minute, func() (interface{}, error) { return nil, failing })
	assert.ErrorIs(t, err, failing)

	require.NoError(t, c.Set(ctx, "door:3", []prize{}, time.Minute))
	require.NoError(t, c.DeletePattern(ctx, "door:*"))
	found, err = c.Get(ctx, "door:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = c.Get(ctx, "door:3", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

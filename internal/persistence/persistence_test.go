package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/config"
)

func TestEmptyHandlesWithoutConfig(t *testing.T) {
	ctx := context.Background()

	pg, err := NewPostgres(ctx, config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, pg.PoolHandle())
	assert.EqualError(t, pg.Ping(ctx), "postgres not configured")
	pg.Close()

	rdb := NewRedis(ctx, config.RedisConfig{}, zap.NewNop())
	assert.False(t, rdb.Enabled())
	assert.Error(t, rdb.Ping(ctx))
	rdb.Close()
}

//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directorystore "caseworks/internal/directory/store"
	id "caseworks/pkg/domain"
	"caseworks/pkg/testutil/containers"
)

func TestRedisDirectoryCache(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	inner := directorystore.NewInMemory()
	beneficiaryID := id.BeneficiaryID(uuid.New())
	inner.AddBeneficiary(beneficiaryID)

	dir := NewRedis(inner, rc.Client, time.Minute, nil)

	t.Run("caches positive lookups", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		exists, err := dir.BeneficiaryExists(ctx, beneficiaryID)
		require.NoError(t, err)
		assert.True(t, exists)

		// cached value survives even if the inner record disappears
		cached, err := rc.Client.Get(ctx, "directory:beneficiary:"+beneficiaryID.String()).Result()
		require.NoError(t, err)
		assert.Equal(t, "1", cached)
	})

	t.Run("caches negative lookups briefly", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		unknown := id.BeneficiaryID(uuid.New())

		exists, err := dir.BeneficiaryExists(ctx, unknown)
		require.NoError(t, err)
		assert.False(t, exists)

		ttl, err := rc.Client.TTL(ctx, "directory:beneficiary:"+unknown.String()).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, 30*time.Second)
	})
}

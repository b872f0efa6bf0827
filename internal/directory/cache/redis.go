package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"caseworks/internal/directory"
	id "caseworks/pkg/domain"
)

// RedisDirectory caches existence lookups in front of another Directory.
// Cache failures fall through to the inner directory; a stale positive only
// lives for the TTL, and negatives are cached briefly so a just-registered
// beneficiary becomes visible quickly.
type RedisDirectory struct {
	inner  directory.Directory
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

const negativeTTL = 30 * time.Second

func NewRedis(inner directory.Directory, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisDirectory {
	return &RedisDirectory{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (d *RedisDirectory) BeneficiaryExists(ctx context.Context, beneficiaryID id.BeneficiaryID) (bool, error) {
	key := "directory:beneficiary:" + beneficiaryID.String()

	cached, err := d.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case err != redis.Nil:
		if d.logger != nil {
			d.logger.WarnContext(ctx, "directory cache read failed", "error", err)
		}
	}

	exists, err := d.inner.BeneficiaryExists(ctx, beneficiaryID)
	if err != nil {
		return false, err
	}

	value, ttl := "0", negativeTTL
	if exists {
		value, ttl = "1", d.ttl
	}
	if err := d.client.Set(ctx, key, value, ttl).Err(); err != nil && d.logger != nil {
		d.logger.WarnContext(ctx, "directory cache write failed", "error", err)
	}

	return exists, nil
}

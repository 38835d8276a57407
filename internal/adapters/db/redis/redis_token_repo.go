package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenRepo keeps revoked jtis until the token they belong to would
// have expired anyway; after that the key lapses and costs nothing.
type RedisTokenRepo struct {
	client *redis.Client
}

func NewRedisTokenRepo(client *redis.Client) *RedisTokenRepo {
	return &RedisTokenRepo{
		client: client,
	}
}

const (
	refreshPrefix = "revoked:refresh:"
	accessPrefix  = "revoked:access:"
)

func (r *RedisTokenRepo) revoke(ctx context.Context, key string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// already expired, nothing left to deny
		return nil
	}
	return r.client.Set(ctx, key, "1", ttl).Err()
}

func (r *RedisTokenRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return r.revoke(ctx, refreshPrefix+jti, expiresAt)
}

func (r *RedisTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := r.client.Exists(ctx, refreshPrefix+jti).Result()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *RedisTokenRepo) RevokeAccess(ctx context.Context, jti string, expiresAt time.Time) error {
	return r.revoke(ctx, accessPrefix+jti, expiresAt)
}

func (r *RedisTokenRepo) IsAccessRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := r.client.Exists(ctx, accessPrefix+jti).Result()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

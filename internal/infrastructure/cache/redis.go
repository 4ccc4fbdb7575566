package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/pkg/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.ErrCacheFailed("ping", err)
	}
	return client, nil
}

// releaseScript deletes the key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClaimer claims pairs across processes with SET NX and a TTL
type RedisClaimer struct {
	client *redis.Client
	prefix string
	owner  string
}

// NewRedisClaimer creates a claimer whose keys live under prefix
func NewRedisClaimer(client *redis.Client, prefix string) *RedisClaimer {
	return &RedisClaimer{client: client, prefix: prefix, owner: uuid.NewString()}
}

// Claim takes key for ttl. It returns false when another owner holds it.
func (c *RedisClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.prefix+key, c.owner, ttl).Result()
	if err != nil {
		return false, apperrors.ErrCacheFailed("claim "+key, err)
	}
	return ok, nil
}

// Release gives key back if this claimer still owns it
func (c *RedisClaimer) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, c.client, []string{c.prefix + key}, c.owner).Err(); err != nil {
		return apperrors.ErrCacheFailed("release "+key, err)
	}
	return nil
}

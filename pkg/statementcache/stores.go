package statementcache

import (
	"context"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/eko/gocache/lib/v4/cache"
	bigcachestore "github.com/eko/gocache/store/bigcache/v4"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
)

// DefaultBigcacheLife is the entry life NewBigcache uses when given none.
const DefaultBigcacheLife = 24 * time.Hour

// NewBigcache returns a process-local byte cache whose entries expire
// after life.
func NewBigcache(ctx context.Context, life time.Duration) (*GoCache[[]byte], error) {
	if life <= 0 {
		life = DefaultBigcacheLife
	}
	client, err := bigcache.New(ctx, bigcache.DefaultConfig(life))
	if err != nil {
		return nil, err
	}
	return NewGoCache[[]byte](cache.New[[]byte](bigcachestore.NewBigcache(client)), 0), nil
}

// NewRedis returns a cache shared by every client pointed at the same
// redis database.
func NewRedis(client *redis.Client, ttl time.Duration) *GoCache[string] {
	return NewGoCache[string](cache.New[string](redisstore.NewRedis(client)), ttl)
}

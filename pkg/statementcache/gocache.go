package statementcache

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	jsoniter "github.com/json-iterator/go"

	"github.com/miniprog/graphql-request/internal/document"
)

// Payload is the value type of the gocache stores documents are kept in:
// []byte for bigcache, string for redis.
type Payload interface {
	~string | ~[]byte
}

// GoCache adapts an eko/gocache cache. Documents are stored JSON-encoded.
// Store errors are treated as misses.
type GoCache[T Payload] struct {
	cache cache.CacheInterface[T]
	ttl   time.Duration
}

var _ Cache = (*GoCache[[]byte])(nil)

// NewGoCache wraps c. A zero ttl keeps entries until the store evicts them.
func NewGoCache[T Payload](c cache.CacheInterface[T], ttl time.Duration) *GoCache[T] {
	return &GoCache[T]{cache: c, ttl: ttl}
}

func (g *GoCache[T]) Get(ctx context.Context, key string) (*document.Document, bool) {
	raw, err := g.cache.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	doc := &document.Document{}
	if err := jsoniter.Unmarshal([]byte(raw), doc); err != nil {
		return nil, false
	}
	return doc, true
}

func (g *GoCache[T]) Set(ctx context.Context, key string, doc *document.Document) {
	if doc == nil {
		return
	}
	encoded, err := jsoniter.Marshal(doc)
	if err != nil {
		return
	}
	var opts []store.Option
	if g.ttl > 0 {
		opts = append(opts, store.WithExpiration(g.ttl))
	}
	_ = g.cache.Set(ctx, key, T(encoded), opts...)
}

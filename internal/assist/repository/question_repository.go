package repository

import (
	"context"
	"time"

	"lcbridge/internal/common/cache"
)

const questionKeyPrefix = "lcbridge:question:id:"

// QuestionIDRepository caches slug to question id lookups. Question ids never
// change, so entries only expire to bound memory.
type QuestionIDRepository struct {
	local *LRU[string, string]
	cache cache.BasicOps
	ttl   time.Duration
}

// NewQuestionIDRepository creates the repository. cacheClient may be nil to
// keep lookups process-local.
func NewQuestionIDRepository(local *LRU[string, string], cacheClient cache.BasicOps, ttl time.Duration) *QuestionIDRepository {
	if local == nil {
		local = NewLRU[string, string](defaultLRUSize, ttl)
	}
	return &QuestionIDRepository{local: local, cache: cacheClient, ttl: ttl}
}

// GetOrFetch returns the cached id for slug or calls fetch and stores the result.
// Errors from fetch are returned and not cached.
func (r *QuestionIDRepository) GetOrFetch(ctx context.Context, slug string, fetch func(context.Context) (string, error)) (string, error) {
	if id, ok := r.local.Get(slug); ok {
		return id, nil
	}

	var (
		id  string
		err error
	)
	if r.cache == nil {
		id, err = fetch(ctx)
	} else {
		id, err = cache.GetOrLoad(ctx, r.cache, questionKeyPrefix+slug, r.ttl, 0, cache.StringCodec, fetch)
	}
	if err != nil {
		return "", err
	}
	if id != "" {
		r.local.Set(slug, id, 0)
	}
	return id, nil
}

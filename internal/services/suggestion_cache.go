package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/repository"
	"github.com/fastygo/taskwise/usecase"
)

// CachedSuggester memoizes AI answers for identical prompts. Cache errors
// never fail a request; they only cost a round trip to the model.
type CachedSuggester struct {
	next   usecase.Suggester
	cache  repository.SuggestionCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSuggester(next usecase.Suggester, cache repository.SuggestionCache, ttl time.Duration, logger *zap.Logger) *CachedSuggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSuggester{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedSuggester) SuggestPriority(ctx context.Context, q domain.PriorityQuery) (string, error) {
	key := cacheKey(string(domain.SuggestPriority), q.Title, q.Description, q.Subject, formatDate(q.DueDate), q.UserContext, q.Now.Format(time.DateOnly))
	return c.lookup(ctx, key, func() (string, error) {
		return c.next.SuggestPriority(ctx, q)
	})
}

func (c *CachedSuggester) Rewrite(ctx context.Context, q domain.RewriteQuery) (string, error) {
	key := cacheKey(string(q.Action), q.Title, q.Description, q.Subject, formatDate(q.DueDate))
	return c.lookup(ctx, key, func() (string, error) {
		return c.next.Rewrite(ctx, q)
	})
}

func (c *CachedSuggester) lookup(ctx context.Context, key string, call func() (string, error)) (string, error) {
	if c.cache != nil {
		value, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("suggestion cache read failed", zap.Error(err))
		} else if ok {
			return value, nil
		}
	}

	value, err := call()
	if err != nil {
		return "", err
	}
	if c.cache != nil && strings.TrimSpace(value) != "" {
		if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
			c.logger.Warn("suggestion cache write failed", zap.Error(err))
		}
	}
	return value, nil
}

func cacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

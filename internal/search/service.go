// Package search implements case-sensitive substring search over an
// indexed store, with an LRU cache for repeated terms.
package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	sifterr "github.com/pdfsift/pdfsift/internal/errors"
	"github.com/pdfsift/pdfsift/internal/store"
)

// ErrNilDependency is returned when a required dependency is nil.
var ErrNilDependency = errors.New("nil dependency")

const defaultCacheSize = 128

// Options configures a Service.
type Options struct {
	// MaxResults caps the matches returned per query. Zero means unlimited.
	MaxResults int

	// CacheSize is the number of query results kept in the LRU cache.
	// Zero selects the default.
	CacheSize int
}

// Service answers substring queries against a store.Gateway.
type Service struct {
	gateway    store.Gateway
	maxResults int
	cache      *lru.Cache[string, []store.Match]
}

// NewService creates a Service backed by gateway.
func NewService(gateway store.Gateway, opts Options) (*Service, error) {
	if gateway == nil {
		return nil, ErrNilDependency
	}

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, []store.Match](size)
	if err != nil {
		return nil, err
	}

	return &Service{
		gateway:    gateway,
		maxResults: opts.MaxResults,
		cache:      cache,
	}, nil
}

// Search returns every indexed line containing term as a case-sensitive
// substring, ordered by file path, then page, then line number.
//
// Matching is exact on bytes: "Report" does not match "report", and no
// tokenization or stemming is applied.
func (s *Service) Search(ctx context.Context, term string) ([]store.Match, error) {
	if term == "" {
		return nil, sifterr.New(sifterr.ErrCodeQueryEmpty, "search term is empty", nil).
			WithSuggestion("Provide a non-empty search term")
	}

	if cached, ok := s.cache.Get(term); ok {
		slog.Debug("search_cache_hit",
			slog.String("term", term),
			slog.Int("matches", len(cached)))
		return cached, nil
	}

	start := time.Now()
	matches, err := s.gateway.SearchSubstring(ctx, term, s.maxResults)
	if err != nil {
		return nil, sifterr.Wrap(sifterr.ErrCodeStoreQuery, err)
	}

	s.cache.Add(term, matches)

	slog.Debug("search_complete",
		slog.String("term", term),
		slog.Int("matches", len(matches)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return matches, nil
}

// Stats reports how many documents and line records the store holds.
func (s *Service) Stats(ctx context.Context) (store.Stats, error) {
	stats, err := s.gateway.Stats(ctx)
	if err != nil {
		return store.Stats{}, sifterr.Wrap(sifterr.ErrCodeStoreQuery, err)
	}
	return stats, nil
}

package inventory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/phonrule/internal/cachemanager"
	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
)

// ErrUnknownSymbol is returned by the uncached lookups behind an Index.
var ErrUnknownSymbol = errors.New("unknown symbol")

type symbolKey string

// Index answers symbol lookups against a PhonData inventory, caching hits.
// Misses are not cached, so symbols added by a reload are found at once. It
// implements envstring.Lookup.
type Index struct {
	mu   sync.RWMutex
	data *domain.PhonData
	ttl  time.Duration

	phonemes   *cachemanager.ReadThroughCache[symbolKey, *domain.Phoneme, string]
	classes    *cachemanager.ReadThroughCache[symbolKey, *domain.NaturalClass, string]
	boundaries *cachemanager.ReadThroughCache[symbolKey, *domain.BoundaryMarker, string]
}

// NewIndex creates an index over data. A ttl of zero disables caching.
func NewIndex(data *domain.PhonData, ttl time.Duration) *Index {
	x := &Index{data: data, ttl: ttl}
	skip := ttl <= 0
	x.phonemes = cachemanager.NewReadThroughCache[symbolKey, *domain.Phoneme, string](
		cachemanager.NewInMemoryCacheManager[symbolKey, *domain.Phoneme]("phonemes", ttl, cachemanager.DefaultCleanupInterval),
		func(_ context.Context, sym string) (*domain.Phoneme, error) {
			x.mu.RLock()
			defer x.mu.RUnlock()
			if p, ok := x.data.PhonemeBySymbol(sym); ok {
				return p, nil
			}
			return nil, ErrUnknownSymbol
		},
		skip,
	)
	x.classes = cachemanager.NewReadThroughCache[symbolKey, *domain.NaturalClass, string](
		cachemanager.NewInMemoryCacheManager[symbolKey, *domain.NaturalClass]("classes", ttl, cachemanager.DefaultCleanupInterval),
		func(_ context.Context, abbr string) (*domain.NaturalClass, error) {
			x.mu.RLock()
			defer x.mu.RUnlock()
			if nc, ok := x.data.ClassByAbbreviation(abbr); ok {
				return nc, nil
			}
			return nil, ErrUnknownSymbol
		},
		skip,
	)
	x.boundaries = cachemanager.NewReadThroughCache[symbolKey, *domain.BoundaryMarker, string](
		cachemanager.NewInMemoryCacheManager[symbolKey, *domain.BoundaryMarker]("boundaries", ttl, cachemanager.DefaultCleanupInterval),
		func(_ context.Context, sym string) (*domain.BoundaryMarker, error) {
			x.mu.RLock()
			defer x.mu.RUnlock()
			if b, ok := x.data.BoundaryBySymbol(sym); ok {
				return b, nil
			}
			return nil, ErrUnknownSymbol
		},
		skip,
	)
	return x
}

// Data returns the indexed data.
func (x *Index) Data() *domain.PhonData { return x.data }

func (x *Index) PhonemeBySymbol(symbol string) (*domain.Phoneme, bool) {
	p, err := x.phonemes.Get(context.Background(), symbolKey(symbol), symbol, x.ttl)
	return p, err == nil
}

// ClassByAbbreviation ignores case, like PhonData.ClassByAbbreviation.
func (x *Index) ClassByAbbreviation(abbr string) (*domain.NaturalClass, bool) {
	nc, err := x.classes.Get(context.Background(), symbolKey(strings.ToLower(abbr)), abbr, x.ttl)
	return nc, err == nil
}

func (x *Index) BoundaryBySymbol(symbol string) (*domain.BoundaryMarker, bool) {
	b, err := x.boundaries.Get(context.Background(), symbolKey(symbol), symbol, x.ttl)
	return b, err == nil
}

// Invalidate drops every cached lookup.
func (x *Index) Invalidate(ctx context.Context) {
	_ = x.phonemes.Invalidate(ctx)
	_ = x.classes.Invalidate(ctx)
	_ = x.boundaries.Invalidate(ctx)
}

// Reload merges the inventory file at path into the indexed data and drops
// cached lookups. The caller serializes Reload with edits of the data.
func (x *Index) Reload(ctx context.Context, path string) (MergeStats, error) {
	src, err := Load(path)
	if err != nil {
		return MergeStats{}, err
	}
	x.mu.Lock()
	st := Merge(x.data, src)
	x.mu.Unlock()
	x.Invalidate(ctx)
	log.Info(log.CatInventory, "Reloaded inventory", "path", path,
		"added", st.Added, "updated", st.Updated, "kept", st.Kept)
	return st, nil
}

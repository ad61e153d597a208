// Package registry caches classifiers loaded from the named models of a
// loader.Config.
//
// Entries are kept in a bounded LRU. Concurrent misses for the same name share
// a single load. Watch invalidates file-backed entries when their file
// changes, so the next Get reloads it.
package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/loader"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
	"github.com/YuminosukeSato/linscore/pkg/log"
)

// DefaultSize is the number of classifiers kept when WithSize is not given.
const DefaultSize = 16

// Entry is one cached classifier.
type Entry struct {
	Name       string
	Source     string
	Classifier model.Classifier
	LoadedAt   time.Time
}

// Stats counts cache activity since the registry was created.
type Stats struct {
	Hits          int64
	Misses        int64
	Loads         int64
	Evictions     int64
	Invalidations int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithSize sets the cache capacity. Values <= 0 are ignored.
func WithSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.size = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Registry resolves model names to classifiers. It is safe for concurrent use.
type Registry struct {
	loader *loader.Loader
	models loader.Config
	size   int
	logger log.Logger

	cache  *lru.Cache[string, *Entry]
	flight singleflight.Group

	// mu guards gen and serializes every cache mutation, so onEvict runs
	// with mu held.
	mu       sync.Mutex
	gen      map[string]uint64
	dropping bool

	watchMu sync.Mutex
	watcher *fsnotify.Watcher

	hits, misses, loads, evictions, invalidations atomic.Int64
}

// New creates a registry over the models of cfg, loaded with l.
func New(l *loader.Loader, cfg loader.Config, opts ...Option) (*Registry, error) {
	if l == nil {
		return nil, lserrors.NewValidationError("loader", "must not be nil", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{
		loader: l,
		models: cfg,
		size:   DefaultSize,
		logger: log.GetLoggerWithName("registry"),
		gen:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	cache, err := lru.NewWithEvict[string, *Entry](r.size, r.onEvict)
	if err != nil {
		return nil, lserrors.Wrap(err, "create cache")
	}
	r.cache = cache
	return r, nil
}

func (r *Registry) onEvict(name string, e *Entry) {
	if r.dropping {
		r.invalidations.Add(1)
		r.logger.Info("model invalidated", log.CacheKey, name, log.SourceKey, e.Source)
		return
	}
	r.evictions.Add(1)
	r.logger.Info("model evicted", log.CacheKey, name, log.SourceKey, e.Source)
}

// Names returns the configured model names in ascending order.
func (r *Registry) Names() []string { return r.models.ModelNames() }

// Len returns the number of cached classifiers.
func (r *Registry) Len() int { return r.cache.Len() }

// Cached reports whether name is currently cached.
func (r *Registry) Cached(name string) bool { return r.cache.Contains(name) }

// Stats returns a snapshot of the counters.
func (r *Registry) Stats() Stats {
	return Stats{
		Hits:          r.hits.Load(),
		Misses:        r.misses.Load(),
		Loads:         r.loads.Load(),
		Evictions:     r.evictions.Load(),
		Invalidations: r.invalidations.Load(),
	}
}

// Get returns the classifier of the named model, loading it on a miss.
func (r *Registry) Get(ctx context.Context, name string) (model.Classifier, error) {
	e, err := r.GetEntry(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.Classifier, nil
}

// GetEntry is Get returning the cache entry. Concurrent misses for one name
// wait for a single load, which runs under the context of the first caller.
func (r *Registry) GetEntry(ctx context.Context, name string) (*Entry, error) {
	if e, ok := r.cache.Get(name); ok {
		r.hits.Add(1)
		r.logger.Debug("cache hit", log.CacheKey, name)
		return e, nil
	}
	r.misses.Add(1)
	r.logger.Debug("cache miss", log.CacheKey, name)

	v, err, _ := r.flight.Do(name, func() (interface{}, error) {
		return r.load(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

func (r *Registry) load(ctx context.Context, name string) (*Entry, error) {
	src, closeSrc, err := r.models.Source(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closeSrc(); cerr != nil {
			r.logger.Warn("close model source", log.ErrorKey, cerr, log.CacheKey, name)
		}
	}()

	gen := r.generation(name)
	clf, err := r.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	r.loads.Add(1)

	e := &Entry{
		Name:       name,
		Source:     src.String(),
		Classifier: clf,
		LoadedAt:   time.Now(),
	}

	// An invalidation during the load means the document may already be stale.
	r.mu.Lock()
	if r.gen[name] == gen {
		r.cache.Add(name, e)
	}
	r.mu.Unlock()
	return e, nil
}

func (r *Registry) generation(name string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen[name]
}

// Invalidate drops the cached classifier of name and reports whether one was
// cached. A load in progress for name is not cached when it completes.
func (r *Registry) Invalidate(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen[name]++
	r.dropping = true
	defer func() { r.dropping = false }()
	return r.cache.Remove(name)
}

// Purge drops every cached classifier.
func (r *Registry) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.cache.Keys() {
		r.gen[name]++
	}
	r.dropping = true
	defer func() { r.dropping = false }()
	r.cache.Purge()
}

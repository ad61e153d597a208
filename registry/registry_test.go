package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/loader"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
	"github.com/YuminosukeSato/linscore/pkg/log"
)

const (
	spamDoc   = `{"modelType":"logistic_regression","param":{"vector":{"a":1.0,"b":-2.0}}}`
	spamDocV2 = `{"modelType":"logistic_regression","param":{"vector":{"a":1.0,"b":-2.0,"c":0.5}}}`
	topicsDoc = `{"modelType":"multiclass_logistic_regression","param":{"x":{"vector":{"a":1}},"y":{"vector":{"a":2}}}}`
)

type fixture struct {
	dir    string
	reg    *Registry
	logger *log.TestLogger
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	dir := t.TempDir()
	write(t, filepath.Join(dir, "spam.json"), spamDoc)
	write(t, filepath.Join(dir, "topics.json"), topicsDoc)

	cfg := loader.DefaultConfig()
	cfg.Models = map[string]loader.ModelConfig{
		"spam":   {File: filepath.Join(dir, "spam.json")},
		"topics": {File: filepath.Join(dir, "topics.json")},
	}

	logger, _ := log.NewTestLogger(log.LevelDebug)
	l := loader.New(loader.WithLogger(logger))
	reg, err := New(l, cfg, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return &fixture{dir: dir, reg: reg, logger: logger}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRegistry_HitAndMiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.reg.Get(ctx, "spam")
	require.NoError(t, err)
	second, err := f.reg.Get(ctx, "spam")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Loads: 1}, f.reg.Stats())
	assert.True(t, f.reg.Cached("spam"))
	assert.Equal(t, 1, f.reg.Len())
	assert.Equal(t, []string{"spam", "topics"}, f.reg.Names())

	e, err := f.reg.GetEntry(ctx, "spam")
	require.NoError(t, err)
	assert.Equal(t, "spam", e.Name)
	assert.Equal(t, filepath.Join(f.dir, "spam.json"), e.Source)
	assert.False(t, e.LoadedAt.IsZero())

	assert.True(t, f.logger.ContainsMessage("cache hit"))
	assert.True(t, f.logger.ContainsMessage("cache miss"))
	assert.True(t, f.logger.ContainsField(log.CacheKey, "spam"))
}

func TestRegistry_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reg.Get(ctx, "unknown")
	assert.ErrorIs(t, err, lserrors.ErrModelNotFound)

	write(t, filepath.Join(f.dir, "spam.json"), `{"param":`)
	_, err = f.reg.Get(ctx, "spam")
	assert.ErrorIs(t, err, lserrors.ErrModelMalformed)
	assert.False(t, f.reg.Cached("spam"), "failed loads are not cached")

	_, err = New(nil, loader.DefaultConfig())
	assert.Error(t, err)

	_, err = New(loader.New(), loader.Config{})
	assert.Error(t, err)
}

func TestRegistry_Eviction(t *testing.T) {
	f := newFixture(t, WithSize(1))
	ctx := context.Background()

	_, err := f.reg.Get(ctx, "spam")
	require.NoError(t, err)
	_, err = f.reg.Get(ctx, "topics")
	require.NoError(t, err)

	assert.False(t, f.reg.Cached("spam"))
	assert.True(t, f.reg.Cached("topics"))
	assert.Equal(t, int64(1), f.reg.Stats().Evictions)
	assert.Zero(t, f.reg.Stats().Invalidations)
	assert.True(t, f.logger.ContainsMessage("model evicted"))
}

func TestRegistry_Invalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reg.Get(ctx, "spam")
	require.NoError(t, err)

	write(t, filepath.Join(f.dir, "spam.json"), spamDocV2)
	assert.True(t, f.reg.Invalidate("spam"))
	assert.False(t, f.reg.Invalidate("spam"))

	clf, err := f.reg.Get(ctx, "spam")
	require.NoError(t, err)
	assert.Equal(t, 3, clf.NumParams())

	stats := f.reg.Stats()
	assert.Equal(t, int64(2), stats.Loads)
	assert.Equal(t, int64(1), stats.Invalidations)
	assert.Zero(t, stats.Evictions)

	_, err = f.reg.Get(ctx, "topics")
	require.NoError(t, err)
	f.reg.Purge()
	assert.Zero(t, f.reg.Len())
	assert.Equal(t, int64(3), f.reg.Stats().Invalidations)
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	results := make([]model.Classifier, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.reg.Get(ctx, "topics")
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, results[i].NumParams())
	}
	stats := f.reg.Stats()
	assert.Equal(t, int64(workers), stats.Hits+stats.Misses)
	assert.GreaterOrEqual(t, stats.Loads, int64(1))
	assert.LessOrEqual(t, stats.Loads, stats.Misses)
}

func TestRegistry_Watch(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.reg.Get(ctx, "spam")
	require.NoError(t, err)

	require.NoError(t, f.reg.Watch(ctx))
	assert.Error(t, f.reg.Watch(ctx), "second watch is rejected")

	write(t, filepath.Join(f.dir, "spam.json"), spamDocV2)
	require.Eventually(t, func() bool { return !f.reg.Cached("spam") }, 5*time.Second, 10*time.Millisecond)

	clf, err := f.reg.Get(ctx, "spam")
	require.NoError(t, err)
	assert.Equal(t, 3, clf.NumParams())

	// Unrelated files in the same directory are ignored.
	_, err = f.reg.Get(ctx, "topics")
	require.NoError(t, err)
	write(t, filepath.Join(f.dir, "notes.txt"), "hello")
	time.Sleep(100 * time.Millisecond)
	assert.True(t, f.reg.Cached("topics"))

	require.NoError(t, f.reg.Close())
	require.NoError(t, f.reg.Close())
}

func TestRegistry_WatchWithoutFiles(t *testing.T) {
	cfg := loader.DefaultConfig()
	cfg.Models = map[string]loader.ModelConfig{"remote": {URL: "http://127.0.0.1:1/model.json"}}

	reg, err := New(loader.New(), cfg)
	require.NoError(t, err)
	assert.NoError(t, reg.Watch(context.Background()))
	assert.NoError(t, reg.Close())
}

// Package loader reads serialized linear models and turns them into
// classifiers.
//
// A Load call moves through Unloaded → Reading → Parsed → Dispatched. It
// either returns a fully built immutable classifier or one of the typed errors
// of pkg/errors; nothing partially constructed escapes.
//
//	l := loader.New(loader.WithMaxSize(8<<20), loader.WithStrict(true))
//	clf, err := l.Load(ctx, loader.FileSource("models/spam.json"))
//	if errors.Is(err, lserrors.ErrModelTooLarge) { ... }
package loader

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/linear"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
	"github.com/YuminosukeSato/linscore/pkg/log"
)

// Loader loads model documents. It holds only configuration and may be used
// from several goroutines.
type Loader struct {
	maxSize int64
	strict  bool
	dummy   bool
	timeout time.Duration
	logger  log.Logger
}

// New creates a Loader with DefaultMaxSize, non-strict dispatch and no
// timeout.
func New(opts ...Option) *Loader {
	l := &Loader{
		maxSize: DefaultMaxSize,
		logger:  log.GetLoggerWithName("loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxSize returns the configured size cap in bytes.
func (l *Loader) MaxSize() int64 { return l.maxSize }

// Strict reports whether unknown model types are rejected.
func (l *Loader) Strict() bool { return l.strict }

// Dummy reports whether the loader is in dummy mode.
func (l *Loader) Dummy() bool { return l.dummy }

// Load reads, parses and dispatches the document behind src.
//
// Errors:
//   - *ModelNotFoundError: the source is missing or unreadable
//   - *ModelTooLargeError: the declared or observed size exceeds MaxSize
//   - *ModelMalformedError: invalid JSON or an unrecognized param shape
//   - *UnknownModelTypeError: strict mode and an unrecognized modelType
//   - *LoadTimeoutError: ctx (or WithTimeout) expired before completion
func (l *Loader) Load(ctx context.Context, src Source) (model.Classifier, error) {
	id := uuid.NewString()

	if l.dummy {
		clf := linear.NewDummy()
		l.logger.Info("dummy model loaded",
			log.ModelIDKey, id,
			log.ModelTypeKey, clf.ModelType(),
		)
		return clf, nil
	}
	if src == nil {
		return nil, lserrors.NewModelNotFoundError("<nil>", lserrors.New("no source configured"))
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	source := src.String()
	logger := l.logger.With(log.SourceKey, source, log.ModelIDKey, id)
	state := newStateManager(logger)

	state.advance(Reading, log.LimitKey, l.maxSize)
	data, err := l.read(ctx, src)
	if err != nil {
		logger.Warn("model load failed", log.ErrorKey, err, log.PhaseKey, state.State().String())
		return nil, err
	}

	doc, err := model.DecodeDocument(data)
	if err != nil {
		err = lserrors.NewModelMalformedError(source, "invalid JSON", err)
		logger.Warn("model load failed", log.ErrorKey, err, log.PhaseKey, state.State().String())
		return nil, err
	}
	state.advance(Parsed, log.SizeKey, len(data), log.ModelTypeKey, doc.ModelType)

	clf, err := l.dispatch(source, doc)
	if err != nil {
		logger.Warn("model load failed", log.ErrorKey, err, log.PhaseKey, state.State().String())
		return nil, err
	}
	state.advance(Dispatched)

	fields := []any{
		log.ModelTypeKey, clf.ModelType(),
		log.FeaturesKey, clf.NumParams(),
		log.SizeKey, len(data),
	}
	if m, ok := clf.(*linear.Multiclass); ok {
		fields = append(fields,
			log.StrategyKey, m.Strategy().String(),
			log.CategoriesKey, len(m.Categories()),
		)
	}
	if epoch, ok := doc.Epoch(); ok {
		fields = append(fields, "model.epoch", epoch)
	}
	logger.Info("model loaded", fields...)
	return clf, nil
}

// LoadBytes is Load over an in-memory document.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (model.Classifier, error) {
	return l.Load(ctx, BytesSource{Name: name, Data: data})
}

// read enforces the size cap. A declared size above the cap fails before any
// byte is read; an unknown size is read through a limit of maxSize+1 bytes.
func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	source := src.String()

	rc, size, err := src.Open(ctx)
	if err != nil {
		return nil, l.classify(ctx, source, err)
	}
	defer rc.Close()

	if size > l.maxSize {
		return nil, lserrors.NewModelTooLargeError(source, size, l.maxSize)
	}

	// Close the reader on cancellation so a blocked Read returns.
	stop := context.AfterFunc(ctx, func() { rc.Close() })
	defer stop()

	// One byte past the cap tells an oversized unsized source apart.
	limit := l.maxSize
	if limit < math.MaxInt64 {
		limit++
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit))
	if err != nil {
		return nil, l.classify(ctx, source, err)
	}
	if ctx.Err() != nil {
		return nil, lserrors.NewLoadTimeoutError(source, ctx.Err())
	}
	if int64(len(data)) > l.maxSize {
		return nil, lserrors.NewModelTooLargeError(source, int64(len(data)), l.maxSize)
	}
	return data, nil
}

// classify maps an I/O failure onto the error taxonomy.
func (l *Loader) classify(ctx context.Context, source string, err error) error {
	switch {
	case ctx.Err() != nil:
		return lserrors.NewLoadTimeoutError(source, ctx.Err())
	case lserrors.Is(err, lserrors.ErrModelNotFound),
		lserrors.Is(err, lserrors.ErrModelTooLarge),
		lserrors.Is(err, lserrors.ErrLoadTimeout):
		return err
	case lserrors.Is(err, context.Canceled), lserrors.Is(err, context.DeadlineExceeded):
		return lserrors.NewLoadTimeoutError(source, err)
	default:
		return lserrors.NewModelNotFoundError(source, err)
	}
}

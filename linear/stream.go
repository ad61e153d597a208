package linear

import (
	"context"
	"sync"
	"time"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/sparse"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// StreamResult is one scored instance. Index counts instances in arrival
// order from 0.
type StreamResult struct {
	Index      int
	Prediction model.Prediction
	Err        error
}

// StreamMetrics tracks the progress of a Stream.
type StreamMetrics struct {
	Processed uint64
	Failed    uint64
	Elapsed   time.Duration
}

// Throughput returns processed instances per second.
func (m StreamMetrics) Throughput() float64 {
	if m.Elapsed <= 0 {
		return 0
	}
	return float64(m.Processed) / m.Elapsed.Seconds()
}

// Stream scores instances as they arrive on a channel.
type Stream struct {
	bufferSize int

	mu      sync.RWMutex
	metrics StreamMetrics
	started time.Time
}

// NewStream creates a Stream whose output channel holds bufferSize results.
func NewStream(bufferSize int) *Stream {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &Stream{bufferSize: bufferSize}
}

// Run scores every vector received from in with c and sends the results in
// input order. The output channel is closed once in is closed or ctx is
// done. A failing instance yields a result with Err set and does not stop
// the stream.
func (s *Stream) Run(ctx context.Context, c model.Classifier, in <-chan *sparse.Vector) <-chan StreamResult {
	out := make(chan StreamResult, s.bufferSize)

	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(out)
		for i := 0; ; i++ {
			var f *sparse.Vector
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				f = v
			}

			res := StreamResult{Index: i}
			res.Err = lserrors.SafeExecute("linear.Stream", func() error {
				var err error
				res.Prediction, err = Predict(c, f)
				return err
			})
			s.record(res.Err)

			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *Stream) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.Processed++
	if err != nil {
		s.metrics.Failed++
	}
	s.metrics.Elapsed = time.Since(s.started)
}

// Metrics returns a snapshot of the stream metrics.
func (s *Stream) Metrics() StreamMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

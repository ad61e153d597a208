package linear

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linscore/core/sparse"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

func feed(xs ...*sparse.Vector) <-chan *sparse.Vector {
	ch := make(chan *sparse.Vector, len(xs))
	for _, x := range xs {
		ch <- x
	}
	close(ch)
	return ch
}

func TestStream_Binary(t *testing.T) {
	b := NewBinary(vec(map[string]float64{"a": 1}))
	s := NewStream(4)

	var got []StreamResult
	for res := range s.Run(context.Background(), b, feed(
		vec(map[string]float64{"a": 3}),
		sparse.New(),
		vec(map[string]float64{"a": -3}),
	)) {
		got = append(got, res)
	}

	require.Len(t, got, 3)
	for i, res := range got {
		assert.Equal(t, i, res.Index)
		assert.NoError(t, res.Err)
	}
	assert.InDelta(t, Sigmoid(3), got[0].Prediction.Prob(PositiveLabel), 1e-15)
	assert.Equal(t, 0.5, got[1].Prediction.Prob(PositiveLabel))
	assert.Equal(t, NegativeLabel, got[2].Prediction.Label)

	m := s.Metrics()
	assert.Equal(t, uint64(3), m.Processed)
	assert.Zero(t, m.Failed)
	assert.GreaterOrEqual(t, m.Throughput(), 0.0)
}

func TestStream_ErrorsDoNotStop(t *testing.T) {
	m := newMulticlass(t, RawNormalized, map[string]map[string]float64{
		"x": {"a": 1},
		"y": {"a": -1},
	})
	s := NewStream(0)

	var got []StreamResult
	for res := range s.Run(context.Background(), m, feed(
		vec(map[string]float64{"a": 1}), // 1 + -1 = 0: degenerate
		vec(map[string]float64{"b": 1}),
	)) {
		got = append(got, res)
	}

	require.Len(t, got, 2)
	assert.ErrorIs(t, got[0].Err, lserrors.ErrNumericalDegenerate)
	assert.ErrorIs(t, got[1].Err, lserrors.ErrNumericalDegenerate)
	assert.Equal(t, uint64(2), s.Metrics().Failed)
}

func TestStream_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan *sparse.Vector)
	out := NewStream(0).Run(ctx, NewDummy(), in)

	in <- sparse.New()
	res := <-out
	assert.Equal(t, 0.5, res.Prediction.Prob(PositiveLabel))

	cancel()
	_, ok := <-out
	assert.False(t, ok, "output closes after cancellation")
}

func TestStreamMetrics_Throughput(t *testing.T) {
	assert.Zero(t, StreamMetrics{Processed: 10}.Throughput())
	assert.Equal(t, 5.0, StreamMetrics{Processed: 10, Elapsed: 2e9}.Throughput())
}

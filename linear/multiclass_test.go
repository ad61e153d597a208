package linear

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/sparse"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

func newMulticlass(t testing.TB, s Strategy, params map[string]map[string]float64, opts ...Option) *Multiclass {
	t.Helper()
	vs := make(map[string]*sparse.Vector, len(params))
	for c, p := range params {
		vs[c] = vec(p)
	}
	m, err := NewMulticlass(s, vs, opts...)
	require.NoError(t, err)
	return m
}

func sumProbs(p model.Prediction) float64 {
	var s float64
	for _, v := range p.Probs {
		s += v
	}
	return s
}

func TestSoftmax_KnownValues(t *testing.T) {
	m := newMulticlass(t, Softmax, map[string]map[string]float64{
		"one": {"x": 1},
		"two": {"x": 2},
	})

	pred, err := m.Predict(vec(map[string]float64{"x": 1}))
	require.NoError(t, err)

	e1, e2 := math.Exp(1), math.Exp(2)
	assert.InDelta(t, e1/(e1+e2), pred.Prob("one"), 1e-12)
	assert.InDelta(t, 0.2689, pred.Prob("one"), 1e-4)
	assert.InDelta(t, 0.7311, pred.Prob("two"), 1e-4)
	assert.Equal(t, "two", pred.Label)
	assert.Equal(t, MulticlassLogisticRegression, m.ModelType())
}

func TestSoftmax_Simplex(t *testing.T) {
	m := newMulticlass(t, Softmax, map[string]map[string]float64{
		"a": {"x": 3, "y": -1},
		"b": {"x": -2, "z": 0.5},
		"c": {"y": 4},
	})

	for _, f := range []map[string]float64{
		{"x": 1},
		{"x": -5, "y": 2, "z": 10},
		{},
		{"y": 2},
	} {
		pred, err := m.Predict(vec(f))
		require.NoError(t, err)
		assert.InDelta(t, 1.0, sumProbs(pred), 1e-9)
		for c, p := range pred.Probs {
			assert.Greaterf(t, p, 0.0, "category %s", c)
			assert.Lessf(t, p, 1.0, "category %s", c)
		}
	}
}

func TestSoftmax_Degenerate(t *testing.T) {
	m := newMulticlass(t, Softmax, map[string]map[string]float64{
		"a": {"x": 1},
		"b": {"x": 2},
	})

	// every exponential underflows
	_, err := m.Predict(vec(map[string]float64{"x": -1e4}))
	assert.ErrorIs(t, err, lserrors.ErrNumericalDegenerate)

	// overflow
	_, err = m.Predict(vec(map[string]float64{"x": 1e4}))
	assert.ErrorIs(t, err, lserrors.ErrNumericalDegenerate)

	var degenerate *lserrors.NumericalDegenerateError
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, "softmax", degenerate.Strategy)
	assert.True(t, math.IsInf(degenerate.Denominator, 1))
}

func TestOneVsAll_SumsToOne(t *testing.T) {
	m := newMulticlass(t, OneVsAll, map[string]map[string]float64{
		"a": {"x": 2},
		"b": {"x": -1},
		"c": {"y": 1},
	})

	f := vec(map[string]float64{"x": 1, "y": 1})
	pred, err := m.Predict(f)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sumProbs(pred), 1e-9)

	pa, pb, pc := Sigmoid(2), Sigmoid(-1), Sigmoid(1)
	assert.InDelta(t, pa/(pa+pb+pc), pred.Prob("a"), 1e-12)
	assert.Equal(t, "a", pred.Label)
	assert.Equal(t, OneVsAllModelType, m.ModelType())
}

func TestOneVsAll_Saturated(t *testing.T) {
	m := newMulticlass(t, OneVsAll, map[string]map[string]float64{
		"a": {"x": -1e300},
		"b": {"x": -1e300},
	})

	pred, err := m.Predict(vec(map[string]float64{"x": 1e10}))
	require.NoError(t, err, "clamped sigmoid keeps the denominator positive")
	assert.InDelta(t, 0.5, pred.Prob("a"), 1e-12)
}

func TestRawNormalized(t *testing.T) {
	m := newMulticlass(t, RawNormalized, map[string]map[string]float64{
		"a": {"x": 3},
		"b": {"x": -1},
	})

	pred, err := m.Predict(vec(map[string]float64{"x": 1}))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, pred.Prob("a"), 1e-12, "mixed-sign scores leave [0, 1]")
	assert.InDelta(t, -0.5, pred.Prob("b"), 1e-12)
	assert.Equal(t, MulticlassMIRA, m.ModelType())
}

func TestRawNormalized_ZeroSum(t *testing.T) {
	m := newMulticlass(t, RawNormalized, map[string]map[string]float64{
		"a": {"x": 1},
		"b": {"y": 1},
	})

	pred, err := m.Predict(vec(map[string]float64{"z": 1}))
	assert.ErrorIs(t, err, lserrors.ErrNumericalDegenerate)
	assert.Empty(t, pred.Probs)

	// cancelling scores are degenerate too
	_, err = m.Predict(vec(map[string]float64{"x": 1, "y": -1}))
	assert.ErrorIs(t, err, lserrors.ErrNumericalDegenerate)

	var degenerate *lserrors.NumericalDegenerateError
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, "raw_normalized", degenerate.Strategy)
	assert.Zero(t, degenerate.Denominator)
}

func TestRawNormalized_NearCancelledSum(t *testing.T) {
	m := newMulticlass(t, RawNormalized, map[string]map[string]float64{
		"a": {"x": 1e300},
		"b": {"x": -1e300},
		"c": {"y": 1e-10},
	})

	// The sum is 1e-10 or 0 depending on summation order; either way no
	// quotient may overflow into the prediction.
	pred, err := m.Predict(vec(map[string]float64{"x": 1, "y": 1}))
	require.ErrorIs(t, err, lserrors.ErrNumericalDegenerate)
	assert.Empty(t, pred.Probs)

	var degenerate *lserrors.NumericalDegenerateError
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, "raw_normalized", degenerate.Strategy)
}

func TestMulticlass_Explain(t *testing.T) {
	m := newMulticlass(t, OneVsAll, map[string]map[string]float64{
		"spam": {"free": 2.5, "win": 1},
		"ham":  {"meeting": 1.234, "free": -0.5},
	})
	f := vec(map[string]float64{"free": 1, "meeting": 1, "win": 1})

	ex := m.ExplainN(f, 1)
	require.Len(t, ex, 2)
	assert.Equal(t, "ham", ex[0].Category, "categories are explained in ascending order")
	assert.Equal(t, "ham: meeting(1.23); spam: free(2.5)", ex.String())

	all := m.Explain(f)
	assert.Equal(t, "ham: meeting(1.23) free(-0.5); spam: free(2.5) win(1)", all.String())
	assert.Equal(t, all.String(), m.Explanation(f, DefaultExplainN).String())
}

func TestMulticlass_Accessors(t *testing.T) {
	m := newMulticlass(t, Softmax, map[string]map[string]float64{
		"c": {"x": 1},
		"a": {"x": 2, "y": 1},
		"b": {},
	}, WithModelType("custom"))

	assert.Equal(t, []string{"a", "b", "c"}, m.Categories())
	assert.Equal(t, Softmax, m.Strategy())
	assert.Equal(t, "custom", m.ModelType())
	assert.Equal(t, 3, m.NumParams())
	assert.Equal(t, map[string]float64{"a": 2, "b": 0, "c": 1}, m.Scores(vec(map[string]float64{"x": 1})))

	comp, ok := m.Component("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, comp.Weight("y"))
	_, ok = m.Component("missing")
	assert.False(t, ok)

	cats := m.Categories()
	cats[0] = "mutated"
	assert.Equal(t, "a", m.Categories()[0])
}

func TestNewMulticlass_Invalid(t *testing.T) {
	_, err := NewMulticlass(Strategy(99), map[string]*sparse.Vector{"a": sparse.New()})
	assert.Error(t, err)

	_, err = NewMulticlass(Softmax, nil)
	assert.Error(t, err)
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "one_vs_all", OneVsAll.String())
	assert.Equal(t, "softmax", Softmax.String())
	assert.Equal(t, "raw_normalized", RawNormalized.String())
	assert.Equal(t, "Strategy(7)", Strategy(7).String())
}

func TestStrategyForModelType(t *testing.T) {
	tests := []struct {
		modelType string
		want      Strategy
		known     bool
	}{
		{MulticlassLogisticRegression, Softmax, true},
		{MulticlassMIRA, RawNormalized, true},
		{OneVsAllModelType, OneVsAll, true},
		{"", OneVsAll, false},
		{"gbdt", OneVsAll, false},
	}

	for _, tt := range tests {
		got, known := StrategyForModelType(tt.modelType)
		assert.Equal(t, tt.want, got, tt.modelType)
		assert.Equal(t, tt.known, known, tt.modelType)
	}
	assert.True(t, IsBinaryModelType(PassiveAggressive))
	assert.False(t, IsBinaryModelType(MulticlassMIRA))
}

func TestMulticlass_ThresholdAndDocument(t *testing.T) {
	m := newMulticlass(t, RawNormalized, map[string]map[string]float64{
		"a": {"x": 0.001, "y": 3},
		"b": {"x": 2},
	})

	pruned := m.ThresholdParams(0.01)
	assert.Equal(t, 2, pruned.NumParams())
	assert.Equal(t, 3, m.NumParams())

	data, err := model.Encode(pruned)
	require.NoError(t, err)
	assert.JSONEq(t, `{"modelType":"multiclass_mira","param":{"a":{"vector":{"y":3}},"b":{"vector":{"x":2}}}}`, string(data))
}

func TestMulticlass_ConcurrentPredict(t *testing.T) {
	m := newMulticlass(t, Softmax, map[string]map[string]float64{
		"a": {"x": 1},
		"b": {"x": 2},
	})
	f := vec(map[string]float64{"x": 1})
	want, err := m.Predict(f)
	require.NoError(t, err)

	xs := make([]*sparse.Vector, 1000)
	for i := range xs {
		xs[i] = f
	}
	preds, err := PredictBatch(context.Background(), m, xs)
	require.NoError(t, err)
	for _, p := range preds {
		assert.Equal(t, want, p)
	}
}

func BenchmarkMulticlass_Predict(b *testing.B) {
	params := make(map[string]*sparse.Vector)
	for c := 0; c < 20; c++ {
		v := sparse.New()
		for i := 0; i < 1000; i++ {
			v.Set(string(rune(0x4E00+i)), float64((i+c)%7)-3)
		}
		params[string(rune('a'+c))] = v
	}
	m, err := NewMulticlass(Softmax, params)
	require.NoError(b, err)
	f := sparse.New()
	for i := 0; i < 30; i++ {
		f.Set(string(rune(0x4E00+i*7)), 0.1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Predict(f)
	}
}

package linear

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/sparse"
)

func vec(m map[string]float64) *sparse.Vector {
	return sparse.FromMap(m)
}

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0), "Sigmoid(0) must be exactly 0.5")
	assert.InDelta(t, 0.9525741268224334, Sigmoid(3), 1e-12)
	assert.InDelta(t, 1-Sigmoid(3), Sigmoid(-3), 1e-12)

	for _, z := range []float64{-1e6, -745, -40, -1, 1, 40, 710, 1e6, math.MaxFloat64, -math.MaxFloat64, math.Inf(1), math.Inf(-1)} {
		p := Sigmoid(z)
		assert.Greaterf(t, p, 0.0, "Sigmoid(%g) = %g", z, p)
		assert.Lessf(t, p, 1.0, "Sigmoid(%g) = %g", z, p)
	}
	assert.True(t, math.IsNaN(Sigmoid(math.NaN())))
}

func TestBinary_ScoreAndPredict(t *testing.T) {
	b := NewBinary(vec(map[string]float64{"a": 1, "b": -2}))
	f := vec(map[string]float64{"a": 3})

	assert.Equal(t, 3.0, b.Score(f))
	assert.InDelta(t, 0.9526, b.Predict(f), 1e-4)
	assert.Equal(t, Sigmoid(3), b.Predict(f))
	assert.Equal(t, LogisticRegression, b.ModelType())
	assert.Equal(t, 2, b.NumParams())
	assert.Equal(t, -2.0, b.Weight("b"))
	assert.Zero(t, b.Weight("c"))
}

func TestBinary_StrictRange(t *testing.T) {
	b := NewBinary(vec(map[string]float64{"a": 1e300, "b": -1e300}))

	for _, f := range []*sparse.Vector{
		vec(map[string]float64{"a": 1e10}),
		vec(map[string]float64{"b": 1e10}),
		vec(map[string]float64{"a": 1, "b": 1}),
		sparse.New(),
	} {
		p := b.Predict(f)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	}
}

func TestBinary_Dummy(t *testing.T) {
	d := NewDummy()
	assert.Equal(t, Dummy, d.ModelType())
	assert.Equal(t, 0.5, d.Predict(vec(map[string]float64{"anything": 42, "else": -1})))
	assert.Equal(t, 0.5, d.Predict(sparse.New()))
	assert.Empty(t, d.Params())
}

func TestBinary_IsImmutable(t *testing.T) {
	params := vec(map[string]float64{"a": 1})
	b := NewBinary(params)

	params.Set("a", 100)
	b.Params()["a"] = 50

	assert.Equal(t, 1.0, b.Weight("a"))
}

func TestBinary_Explain(t *testing.T) {
	b := NewBinary(vec(map[string]float64{"a": 1.5, "b": -2, "c": 1.0 / 3, "d": 7, "unused": 100}))
	f := vec(map[string]float64{"a": 1, "b": 1, "c": 1, "d": 0.001, "only-in-f": 5})

	got := b.ExplainN(f, 3)
	assert.Equal(t, []string{"d(7)", "b(-2)", "a(1.5)"}, got.Strings())

	all := b.ExplainN(f, -1)
	assert.Equal(t, "d(7) b(-2) a(1.5) c(0.33)", all.String())

	assert.Empty(t, b.ExplainN(f, 0))
	assert.Len(t, b.Explain(f), 4, "Explain is capped at 10 but only 4 keys intersect")
}

func TestBinary_ExplainProperties(t *testing.T) {
	params := map[string]float64{}
	features := map[string]float64{}
	for i := 0; i < 40; i++ {
		k := string(rune('A' + i))
		params[k] = float64(i%5) - 2.5
		if i%3 != 0 {
			features[k] = 1
		}
	}
	features["zz-missing"] = 1
	b := NewBinary(vec(params))
	f := vec(features)

	for _, n := range []int{1, 5, 10, 100} {
		got := b.ExplainN(f, n)
		assert.LessOrEqual(t, len(got), n)
		for _, a := range got {
			assert.Contains(t, params, a.Key)
			assert.Contains(t, features, a.Key)
		}
		assert.Equal(t, got, b.ExplainN(f, n), "explain must be deterministic")
	}
}

func TestBinary_ExplainTieBreak(t *testing.T) {
	b := NewBinary(vec(map[string]float64{"b": 1, "a": -1, "c": 1}))
	f := vec(map[string]float64{"a": 1, "b": 1, "c": 1})
	assert.Equal(t, "a(-1) b(1) c(1)", b.ExplainN(f, -1).String())
}

func TestFormatWeight(t *testing.T) {
	tests := []struct {
		w    float64
		want string
	}{
		{1.5, "1.5"},
		{-2, "-2"},
		{1.0 / 3, "0.33"},
		{2.5, "2.5"},
		{0.005, "0.01"},
		{-0.125, "-0.13"},
		{0.001, "0"},
		{-0.001, "0"},
		{12345.678, "12345.68"},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, formatWeight(tt.w), "formatWeight(%g)", tt.w)
	}
}

func TestBinary_ThresholdParams(t *testing.T) {
	b := NewBinary(vec(map[string]float64{"a": 0.001, "b": 2}), WithModelType(Hinge))
	pruned := b.ThresholdParams(0.01)

	assert.Equal(t, map[string]float64{"b": 2}, pruned.Params())
	assert.Equal(t, Hinge, pruned.ModelType())
	assert.Equal(t, 2, b.NumParams())
}

func TestBinary_Document(t *testing.T) {
	meta := map[string]json.RawMessage{"epoch": json.RawMessage(`3`)}
	b := NewBinary(vec(map[string]float64{"a": 1}), WithMetadata(meta))

	data, err := model.Encode(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"modelType":"logistic_regression","param":{"vector":{"a":1}},"epoch":3}`, string(data))

	doc, err := b.Document()
	require.NoError(t, err)
	doc.Metadata["epoch"] = json.RawMessage(`4`)
	again, err := b.Document()
	require.NoError(t, err)
	epoch, _ := again.Epoch()
	assert.Equal(t, int64(3), epoch, "Document must not expose internal metadata")
}

func BenchmarkBinary_Predict(b *testing.B) {
	params := sparse.New()
	for i := 0; i < 5000; i++ {
		params.Set(string(rune(0x4E00+i)), float64(i%7)-3)
	}
	clf := NewBinary(params)
	f := sparse.New()
	for i := 0; i < 50; i++ {
		f.Set(string(rune(0x4E00+i*3)), 1)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = clf.Predict(f)
	}
}

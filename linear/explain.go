package linear

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/linscore/core/sparse"
)

// DefaultExplainN is the number of attributions returned by Explain.
const DefaultExplainN = 10

// Attribution is one parameter weight that took part in a prediction.
type Attribution struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

// String renders the attribution as key(w) with w rounded to two decimals.
func (a Attribution) String() string {
	return a.Key + "(" + formatWeight(a.Weight) + ")"
}

// Attributions is ordered by descending |Weight|.
type Attributions []Attribution

// Strings renders each attribution.
func (as Attributions) Strings() []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.String()
	}
	return out
}

func (as Attributions) String() string {
	return strings.Join(as.Strings(), " ")
}

// CategoryExplanation holds the attributions of one multiclass category.
type CategoryExplanation struct {
	Category     string       `json:"category"`
	Attributions Attributions `json:"attributions"`
}

// Explanations is ordered by ascending category.
type Explanations []CategoryExplanation

func (es Explanations) String() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Category + ": " + e.Attributions.String()
	}
	return strings.Join(parts, "; ")
}

// attribute ranks the keys present in both params and f by descending
// absolute parameter weight; equal magnitudes are ordered by key. n < 0
// returns every shared key.
func attribute(params, f *sparse.Vector, n int) Attributions {
	if n == 0 {
		return Attributions{}
	}

	small, large := f, params
	if small.Len() > large.Len() {
		small, large = large, small
	}

	out := make(Attributions, 0, small.Len())
	small.Range(func(k string, _ float64) {
		if large.Has(k) {
			out = append(out, Attribution{Key: k, Weight: params.Get(k)})
		}
	})

	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Weight), math.Abs(out[j].Weight)
		if ai != aj {
			return ai > aj
		}
		return out[i].Key < out[j].Key
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// formatWeight rounds half away from zero to two decimals and drops trailing
// zeros: 1.5 -> "1.5", -2 -> "-2", 1/3 -> "0.33".
func formatWeight(w float64) string {
	r := math.Round(w*100) / 100
	if r == 0 {
		r = 0 // no "-0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

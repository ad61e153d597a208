package evaluation

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// ConfusionMatrix counts (actual, predicted) category pairs. Rows are actual
// categories and columns predicted ones, both in the order given to
// NewConfusionMatrix.
type ConfusionMatrix struct {
	categories []string
	index      map[string]int
	counts     *mat.Dense
	total      float64
}

// NewConfusionMatrix creates an empty matrix over categories. Duplicates are
// ignored; at least one category is required.
func NewConfusionMatrix(categories []string) (*ConfusionMatrix, error) {
	cats := make([]string, 0, len(categories))
	index := make(map[string]int, len(categories))
	for _, c := range categories {
		if _, dup := index[c]; dup {
			continue
		}
		index[c] = len(cats)
		cats = append(cats, c)
	}
	if len(cats) == 0 {
		return nil, lserrors.NewValueError("NewConfusionMatrix", "at least one category is required")
	}
	return &ConfusionMatrix{
		categories: cats,
		index:      index,
		counts:     mat.NewDense(len(cats), len(cats), nil),
	}, nil
}

// Categories returns the categories in row order.
func (c *ConfusionMatrix) Categories() []string {
	return slices.Clone(c.categories)
}

// Add records one observation.
func (c *ConfusionMatrix) Add(actual, predicted string) error {
	return c.AddWeighted(actual, predicted, 1)
}

// AddWeighted records an observation with weight w.
func (c *ConfusionMatrix) AddWeighted(actual, predicted string, w float64) error {
	i, ok := c.index[actual]
	if !ok {
		return lserrors.NewValueError("ConfusionMatrix.Add", fmt.Sprintf("unknown actual category %q", actual))
	}
	j, ok := c.index[predicted]
	if !ok {
		return lserrors.NewValueError("ConfusionMatrix.Add", fmt.Sprintf("unknown predicted category %q", predicted))
	}
	if w < 0 || !lserrors.IsFinite(w) {
		return lserrors.NewValidationError("weight", "must be finite and non-negative", w)
	}
	c.counts.Set(i, j, c.counts.At(i, j)+w)
	c.total += w
	return nil
}

// Merge adds the counts of other, which must have the same categories in the
// same order.
func (c *ConfusionMatrix) Merge(other *ConfusionMatrix) error {
	if !slices.Equal(c.categories, other.categories) {
		return lserrors.NewValueError("ConfusionMatrix.Merge", "category sets differ")
	}
	c.counts.Add(c.counts, other.counts)
	c.total += other.total
	return nil
}

// Count returns the weight recorded for (actual, predicted).
func (c *ConfusionMatrix) Count(actual, predicted string) float64 {
	i, ok := c.index[actual]
	if !ok {
		return 0
	}
	j, ok := c.index[predicted]
	if !ok {
		return 0
	}
	return c.counts.At(i, j)
}

// Total returns the total recorded weight.
func (c *ConfusionMatrix) Total() float64 { return c.total }

// Matrix returns a copy of the counts.
func (c *ConfusionMatrix) Matrix() *mat.Dense {
	return mat.DenseCopyOf(c.counts)
}

// Accuracy is the share of observations on the diagonal.
func (c *ConfusionMatrix) Accuracy() float64 {
	return ratio(mat.Trace(c.counts), c.total)
}

// ClassAccuracy treats category as a one-vs-rest problem and returns
// (tp + tn) / total.
func (c *ConfusionMatrix) ClassAccuracy(category string) float64 {
	i, ok := c.index[category]
	if !ok {
		return 0
	}
	tp := c.counts.At(i, i)
	fn := floats.Sum(mat.Row(nil, i, c.counts)) - tp
	fp := floats.Sum(mat.Col(nil, i, c.counts)) - tp
	return ratio(c.total-fn-fp, c.total)
}

// Precision returns tp / (tp + fp) for category, or 0 when nothing was
// predicted as category.
func (c *ConfusionMatrix) Precision(category string) float64 {
	i, ok := c.index[category]
	if !ok {
		return 0
	}
	return ratio(c.counts.At(i, i), floats.Sum(mat.Col(nil, i, c.counts)))
}

// Recall returns tp / (tp + fn) for category, or 0 when category never
// occurred.
func (c *ConfusionMatrix) Recall(category string) float64 {
	i, ok := c.index[category]
	if !ok {
		return 0
	}
	return ratio(c.counts.At(i, i), floats.Sum(mat.Row(nil, i, c.counts)))
}

// F1 is the harmonic mean of Precision and Recall.
func (c *ConfusionMatrix) F1(category string) float64 {
	p, r := c.Precision(category), c.Recall(category)
	return ratio(2*p*r, p+r)
}

// MacroPrecision averages Precision over all categories.
func (c *ConfusionMatrix) MacroPrecision() float64 { return c.macro(c.Precision) }

// MacroRecall averages Recall over all categories.
func (c *ConfusionMatrix) MacroRecall() float64 { return c.macro(c.Recall) }

// MacroF1 averages F1 over all categories.
func (c *ConfusionMatrix) MacroF1() float64 { return c.macro(c.F1) }

func (c *ConfusionMatrix) macro(metric func(string) float64) float64 {
	vals := make([]float64, len(c.categories))
	for i, cat := range c.categories {
		vals[i] = metric(cat)
	}
	return floats.Sum(vals) / float64(len(vals))
}

// String renders the matrix as an aligned table, actual categories down the
// left and predicted ones across the top.
func (c *ConfusionMatrix) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "actual\\predicted\t")
	for _, cat := range c.categories {
		fmt.Fprintf(w, "%s\t", cat)
	}
	fmt.Fprintln(w)
	for i, cat := range c.categories {
		fmt.Fprintf(w, "%s\t", cat)
		for j := range c.categories {
			fmt.Fprintf(w, "%g\t", c.counts.At(i, j))
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
	return sb.String()
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

package linear

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/sparse"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Strategy selects how per-category scores become a distribution.
type Strategy int

const (
	// OneVsAll scores each category with the sigmoid and divides by the sum.
	// The result is a renormalization, not a calibrated posterior.
	OneVsAll Strategy = iota
	// Softmax divides exp(score) by the sum of exponentials.
	Softmax
	// RawNormalized divides each raw score by the sum of scores. Mixed-sign
	// scores yield values outside [0, 1].
	RawNormalized
)

func (s Strategy) String() string {
	switch s {
	case OneVsAll:
		return "one_vs_all"
	case Softmax:
		return "softmax"
	case RawNormalized:
		return "raw_normalized"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Multiclass is a linear model over a fixed set of categories.
type Multiclass struct {
	strategy   Strategy
	components map[string]*Binary
	categories []string
	modelType  string
	metadata   map[string]json.RawMessage
}

var (
	_ model.MulticlassPredictor = (*Multiclass)(nil)
	_ model.Classifier          = (*Multiclass)(nil)
)

// NewMulticlass creates a multiclass model with one parameter vector per
// category. The vectors are copied. The model type defaults to the one that
// selects strategy when loaded.
func NewMulticlass(strategy Strategy, params map[string]*sparse.Vector, opts ...Option) (*Multiclass, error) {
	switch strategy {
	case OneVsAll, Softmax, RawNormalized:
	default:
		return nil, lserrors.NewValidationError("strategy", "unknown multiclass strategy", strategy)
	}
	if len(params) == 0 {
		return nil, lserrors.NewValidationError("params", "at least one category is required", len(params))
	}

	c := newConfig(ModelTypeForStrategy(strategy), opts)
	m := &Multiclass{
		strategy:   strategy,
		components: make(map[string]*Binary, len(params)),
		categories: make([]string, 0, len(params)),
		modelType:  c.modelType,
		metadata:   c.metadata,
	}
	for cat, v := range params {
		m.components[cat] = NewBinary(v, WithModelType(c.modelType))
		m.categories = append(m.categories, cat)
	}
	sort.Strings(m.categories)
	return m, nil
}

// Strategy returns the combination rule.
func (m *Multiclass) Strategy() Strategy {
	return m.strategy
}

// ModelType returns the declared model type.
func (m *Multiclass) ModelType() string {
	return m.modelType
}

// Categories returns the category labels in ascending order.
func (m *Multiclass) Categories() []string {
	return append([]string(nil), m.categories...)
}

// Component returns the binary model of one category.
func (m *Multiclass) Component(category string) (*Binary, bool) {
	b, ok := m.components[category]
	return b, ok
}

// NumParams returns the total number of parameters over all categories.
func (m *Multiclass) NumParams() int {
	n := 0
	for _, b := range m.components {
		n += b.NumParams()
	}
	return n
}

// Scores returns the raw dot product of every category with f.
func (m *Multiclass) Scores(f *sparse.Vector) map[string]float64 {
	out := make(map[string]float64, len(m.categories))
	for _, c := range m.categories {
		out[c] = m.components[c].Score(f)
	}
	return out
}

// Predict combines the per-category scores of f according to the strategy.
// A zero or non-finite denominator fails with a NumericalDegenerateError
// instead of producing NaN or Inf.
func (m *Multiclass) Predict(f *sparse.Vector) (model.Prediction, error) {
	values := make([]float64, len(m.categories))
	for i, c := range m.categories {
		b := m.components[c]
		switch m.strategy {
		case RawNormalized:
			values[i] = b.Score(f)
		case Softmax:
			values[i] = math.Exp(b.Score(f))
		case OneVsAll:
			values[i] = b.Predict(f)
		}
	}

	sum := floats.Sum(values)
	if err := lserrors.CheckDenominator("Multiclass.Predict", m.strategy.String(), sum, values); err != nil {
		return model.Prediction{}, err
	}

	normalized := make([]float64, len(values))
	for i, v := range values {
		normalized[i] = v / sum
	}
	// A near-cancelled raw sum can push a quotient past MaxFloat64.
	if err := lserrors.CheckValues("Multiclass.Predict", m.strategy.String(), normalized); err != nil {
		return model.Prediction{}, err
	}

	probs := make(map[string]float64, len(values))
	for i, c := range m.categories {
		probs[c] = normalized[i]
	}
	return model.NewPrediction(probs), nil
}

// Explain returns the DefaultExplainN attributions of every category.
func (m *Multiclass) Explain(f *sparse.Vector) Explanations {
	return m.ExplainN(f, DefaultExplainN)
}

// ExplainN returns one explanation per category in ascending category order.
func (m *Multiclass) ExplainN(f *sparse.Vector, n int) Explanations {
	out := make(Explanations, len(m.categories))
	for i, c := range m.categories {
		out[i] = CategoryExplanation{
			Category:     c,
			Attributions: m.components[c].ExplainN(f, n),
		}
	}
	return out
}

// Explanation implements model.Explainer.
func (m *Multiclass) Explanation(f *sparse.Vector, n int) fmt.Stringer {
	return m.ExplainN(f, n)
}

// ThresholdParams returns a copy of m whose components drop the parameters
// with |w| < t.
func (m *Multiclass) ThresholdParams(t float64) *Multiclass {
	out := &Multiclass{
		strategy:   m.strategy,
		components: make(map[string]*Binary, len(m.components)),
		categories: m.Categories(),
		modelType:  m.modelType,
		metadata:   m.metadata,
	}
	for c, b := range m.components {
		out.components[c] = b.ThresholdParams(t)
	}
	return out
}

// Document implements model.Encoder.
func (m *Multiclass) Document() (*model.Document, error) {
	params := make(map[string]*sparse.Vector, len(m.components))
	for c, b := range m.components {
		params[c] = b.params
	}
	doc, err := model.NewMulticlassDocument(m.modelType, params)
	if err != nil {
		return nil, err
	}
	doc.Metadata = copyMetadata(m.metadata)
	return doc, nil
}

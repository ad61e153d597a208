// Package linear implements inference for sparse linear models: a binary
// logistic classifier and multiclass models combining one parameter vector
// per category under one of three strategies.
//
// Classifiers are immutable after construction and safe for concurrent use.
package linear

import (
	"encoding/json"
	"fmt"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/sparse"
)

// Binary is a two-class linear model scored with the logistic sigmoid.
type Binary struct {
	params    *sparse.Vector
	modelType string
	metadata  map[string]json.RawMessage
}

var (
	_ model.BinaryPredictor = (*Binary)(nil)
	_ model.Classifier      = (*Binary)(nil)
)

// NewBinary creates a binary classifier over a copy of params. The model type
// defaults to logistic_regression.
func NewBinary(params *sparse.Vector, opts ...Option) *Binary {
	c := newConfig(LogisticRegression, opts)
	return &Binary{
		params:    params.Clone(),
		modelType: c.modelType,
		metadata:  c.metadata,
	}
}

// NewDummy returns the development-mode classifier: empty parameters, model
// type "dummy". It predicts 0.5 for every instance.
func NewDummy() *Binary {
	return NewBinary(sparse.New(), WithModelType(Dummy))
}

// Score returns the dot product of the parameters with f.
func (b *Binary) Score(f *sparse.Vector) float64 {
	return b.params.Dot(f)
}

// Predict returns the probability of the positive class, strictly in (0, 1).
func (b *Binary) Predict(f *sparse.Vector) float64 {
	return Sigmoid(b.Score(f))
}

// Params returns a copy of the parameter weights.
func (b *Binary) Params() map[string]float64 {
	return b.params.Params()
}

// Weight returns a single parameter weight, or 0.
func (b *Binary) Weight(key string) float64 {
	return b.params.Get(key)
}

// NumParams returns the number of non-zero parameters.
func (b *Binary) NumParams() int {
	return b.params.Len()
}

// ModelType returns the declared model type.
func (b *Binary) ModelType() string {
	return b.modelType
}

// Explain returns the DefaultExplainN largest-magnitude parameters that
// appear in f.
func (b *Binary) Explain(f *sparse.Vector) Attributions {
	return b.ExplainN(f, DefaultExplainN)
}

// ExplainN is Explain with an explicit limit; n < 0 means no limit.
func (b *Binary) ExplainN(f *sparse.Vector, n int) Attributions {
	return attribute(b.params, f, n)
}

// Explanation implements model.Explainer.
func (b *Binary) Explanation(f *sparse.Vector, n int) fmt.Stringer {
	return b.ExplainN(f, n)
}

// ThresholdParams returns a copy of b without the parameters whose |w| < t.
func (b *Binary) ThresholdParams(t float64) *Binary {
	return &Binary{
		params:    b.params.Threshold(t),
		modelType: b.modelType,
		metadata:  b.metadata,
	}
}

// Document implements model.Encoder.
func (b *Binary) Document() (*model.Document, error) {
	doc, err := model.NewBinaryDocument(b.modelType, b.params)
	if err != nil {
		return nil, err
	}
	doc.Metadata = copyMetadata(b.metadata)
	return doc, nil
}

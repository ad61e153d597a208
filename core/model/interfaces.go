// Package model provides the interfaces shared by every classifier and the
// JSON document format they are loaded from.
package model

import (
	"fmt"

	"github.com/YuminosukeSato/linscore/core/sparse"
)

// Scorer is implemented by models exposing the raw linear score of an instance.
type Scorer interface {
	// Score returns the dot product of the model parameters with f.
	Score(f *sparse.Vector) float64
}

// BinaryPredictor is implemented by two-class models.
type BinaryPredictor interface {
	Scorer

	// Predict returns the probability of the positive class, in (0, 1).
	Predict(f *sparse.Vector) float64
}

// MulticlassPredictor is implemented by models over a fixed category set.
type MulticlassPredictor interface {
	// Predict returns a distribution over Categories.
	Predict(f *sparse.Vector) (Prediction, error)

	// Categories returns the category labels in ascending order.
	Categories() []string
}

// Explainer is implemented by models that can attribute a prediction to the
// features of an instance.
type Explainer interface {
	// Explanation returns the top n contributions for f; n < 0 means all.
	Explanation(f *sparse.Vector, n int) fmt.Stringer
}

// Encoder is implemented by models that can write themselves back to the
// document format.
type Encoder interface {
	Document() (*Document, error)
}

// Classifier is anything the loader can produce: a binary or a multiclass
// model. Callers type-switch or assert BinaryPredictor / MulticlassPredictor.
type Classifier interface {
	Explainer
	Encoder

	// ModelType returns the declared model type, e.g. "logistic_regression".
	ModelType() string

	// NumParams returns the number of stored parameter weights.
	NumParams() int
}

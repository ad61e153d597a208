package linear

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/parallel"
	"github.com/YuminosukeSato/linscore/core/sparse"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Binary probability columns of PredictProba.
const (
	NegativeLabel = "0"
	PositiveLabel = "1"
)

// Columns returns the column labels PredictProba uses for c.
func Columns(c model.Classifier) ([]string, error) {
	switch m := c.(type) {
	case *Binary:
		return []string{NegativeLabel, PositiveLabel}, nil
	case *Multiclass:
		return m.Categories(), nil
	default:
		return nil, lserrors.Newf("linear: unsupported classifier %T", c)
	}
}

// PredictProba scores every instance and returns one row per instance. For a
// Binary model the columns are (1-p, p); for a Multiclass model they follow
// Categories. Large batches are scored in parallel.
func PredictProba(ctx context.Context, c model.Classifier, xs []*sparse.Vector) (*mat.Dense, error) {
	cols, err := Columns(c)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, lserrors.WithStack(lserrors.ErrEmptyData)
	}

	out := mat.NewDense(len(xs), len(cols), nil)
	err = parallel.ParallelizeWithThreshold(ctx, len(xs), parallel.DefaultThreshold,
		func(ctx context.Context, start, end int) (err error) {
			defer lserrors.Recover(&err, "linear.PredictProba")
			for i := start; i < end; i++ {
				switch m := c.(type) {
				case *Binary:
					p := m.Predict(xs[i])
					out.Set(i, 0, 1-p)
					out.Set(i, 1, p)
				case *Multiclass:
					pred, err := m.Predict(xs[i])
					if err != nil {
						return lserrors.Wrapf(err, "instance %d", i)
					}
					for j, cat := range cols {
						out.Set(i, j, pred.Probs[cat])
					}
				}
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PredictBatch runs Multiclass.Predict over xs. Results keep the input order.
func PredictBatch(ctx context.Context, m *Multiclass, xs []*sparse.Vector) ([]model.Prediction, error) {
	out := make([]model.Prediction, len(xs))
	err := parallel.ParallelizeWithThreshold(ctx, len(xs), parallel.DefaultThreshold,
		func(ctx context.Context, start, end int) (err error) {
			defer lserrors.Recover(&err, "linear.PredictBatch")
			for i := start; i < end; i++ {
				pred, err := m.Predict(xs[i])
				if err != nil {
					return lserrors.Wrapf(err, "instance %d", i)
				}
				out[i] = pred
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Predict scores one instance with any classifier of this package. A Binary
// model yields the two-category prediction over NegativeLabel and
// PositiveLabel.
func Predict(c model.Classifier, f *sparse.Vector) (model.Prediction, error) {
	switch m := c.(type) {
	case *Binary:
		p := m.Predict(f)
		return model.NewPrediction(map[string]float64{NegativeLabel: 1 - p, PositiveLabel: p}), nil
	case *Multiclass:
		return m.Predict(f)
	default:
		return model.Prediction{}, lserrors.Newf("linear: unsupported classifier %T", c)
	}
}

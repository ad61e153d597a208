package evaluation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/linscore/core/model"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Multiclass accumulates category predictions over a fixed category set.
type Multiclass struct {
	categories []string
	conf       *ConfusionMatrix
	perClass   map[string]*Binary
	brier      []float64
	logLoss    []float64
}

// NewMulticlass returns an empty accumulator over categories.
func NewMulticlass(categories []string) (*Multiclass, error) {
	conf, err := NewConfusionMatrix(categories)
	if err != nil {
		return nil, err
	}
	m := &Multiclass{
		categories: conf.Categories(),
		conf:       conf,
		perClass:   make(map[string]*Binary, len(categories)),
	}
	for _, c := range m.categories {
		m.perClass[c] = NewBinary()
	}
	return m, nil
}

// Categories returns the evaluated categories.
func (m *Multiclass) Categories() []string { return m.conf.Categories() }

// Add records the prediction p for an instance whose true category is actual.
// Categories missing from p count as probability 0.
func (m *Multiclass) Add(actual string, p model.Prediction) error {
	if _, ok := m.perClass[actual]; !ok {
		return lserrors.NewValueError("Multiclass.Add", fmt.Sprintf("unknown category %q", actual))
	}
	for _, c := range m.categories {
		if prob := p.ProbOrElse(c, 0); math.IsNaN(prob) || prob < 0 || prob > 1 {
			return lserrors.NewValidationError("prob."+c, "must be within [0, 1]", prob)
		}
	}
	if err := m.conf.Add(actual, p.Label); err != nil {
		return err
	}

	var sq float64
	for _, c := range m.categories {
		prob := p.ProbOrElse(c, 0)
		if err := m.perClass[c].Add(c == actual, prob); err != nil {
			return lserrors.Wrapf(err, "Multiclass.Add: category %q", c)
		}
		d := prob - indicator(c == actual)
		sq += d * d
	}
	m.brier = append(m.brier, sq)

	prob := math.Max(p.ProbOrElse(actual, 0), logLossEpsilon)
	m.logLoss = append(m.logLoss, -math.Log(prob))
	return nil
}

// Merge appends the observations of other, which must cover the same
// categories.
func (m *Multiclass) Merge(other *Multiclass) error {
	if err := m.conf.Merge(other.conf); err != nil {
		return err
	}
	for c, b := range other.perClass {
		if err := m.perClass[c].Merge(b); err != nil {
			return err
		}
	}
	m.brier = append(m.brier, other.brier...)
	m.logLoss = append(m.logLoss, other.logLoss...)
	return nil
}

// Len returns the number of observations.
func (m *Multiclass) Len() int { return len(m.brier) }

// Confusion returns the confusion matrix of labels against predicted
// labels. The caller must not modify it.
func (m *Multiclass) Confusion() *ConfusionMatrix { return m.conf }

// Class returns the one-vs-rest evaluation of category.
func (m *Multiclass) Class(category string) (*Binary, bool) {
	b, ok := m.perClass[category]
	return b, ok
}

// AUC returns the one-vs-rest AUC of category.
func (m *Multiclass) AUC(category string) float64 {
	b, ok := m.perClass[category]
	if !ok {
		return 0
	}
	return b.AUC()
}

// MeanAUC averages the one-vs-rest AUC over all categories.
func (m *Multiclass) MeanAUC() float64 {
	aucs := make([]float64, len(m.categories))
	for i, c := range m.categories {
		aucs[i] = m.perClass[c].AUC()
	}
	return floats.Sum(aucs) / float64(len(aucs))
}

// Brier is the mean over instances of the squared distance between the
// predicted distribution and the one-hot label.
func (m *Multiclass) Brier() float64 { return mean(m.brier) }

// LogLoss is the mean negative log-probability of the true category.
func (m *Multiclass) LogLoss() float64 { return mean(m.logLoss) }

// Accuracy is the share of instances whose predicted label is correct.
func (m *Multiclass) Accuracy() float64 { return m.conf.Accuracy() }

// Statistics returns every metric keyed by name, with per-category values
// under "<category>.<metric>".
func (m *Multiclass) Statistics() map[string]float64 {
	stats := map[string]float64{
		"count":         float64(m.Len()),
		"auc.avg":       m.MeanAUC(),
		"brier":         m.Brier(),
		"log_loss":      m.LogLoss(),
		"accuracy":      m.Accuracy(),
		"precision.avg": m.conf.MacroPrecision(),
		"recall.avg":    m.conf.MacroRecall(),
		"f1.avg":        m.conf.MacroF1(),
	}
	for _, c := range m.categories {
		addClassStats(stats, m.conf, c)
		stats[c+".auc"] = m.perClass[c].AUC()
	}
	return stats
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Sum(xs) / float64(len(xs))
}

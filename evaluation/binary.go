// Package evaluation measures how well predicted probabilities match observed
// labels.
//
// Binary accumulates (label, probability) pairs and reports ranking (AUC),
// calibration (Brier score, log loss) and thresholded metrics derived from a
// 2×2 ConfusionMatrix. Multiclass does the same for category predictions,
// with one-vs-rest AUC per category. Accumulators are not safe for
// concurrent use; evaluate shards separately and Merge them.
package evaluation

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Labels of the binary confusion matrix.
const (
	NegativeLabel = "0"
	PositiveLabel = "1"
)

// DecisionThreshold is the probability above which a binary prediction counts
// as positive. A probability of exactly 0.5 is negative, matching the
// argmax tie-break towards the smaller category.
const DecisionThreshold = 0.5

// logLossEpsilon keeps log loss finite for probabilities of exactly 0 or 1.
const logLossEpsilon = 1e-15

// Binary accumulates binary predictions.
type Binary struct {
	labels []bool
	probs  []float64
	conf   *ConfusionMatrix
}

// NewBinary returns an empty accumulator.
func NewBinary() *Binary {
	conf, _ := NewConfusionMatrix([]string{NegativeLabel, PositiveLabel})
	return &Binary{conf: conf}
}

// Add records one observation. prob is the predicted probability of the
// positive class and must lie in [0, 1].
func (b *Binary) Add(positive bool, prob float64) error {
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return lserrors.NewValidationError("prob", "must be within [0, 1]", prob)
	}
	b.labels = append(b.labels, positive)
	b.probs = append(b.probs, prob)
	return b.conf.Add(labelOf(positive), labelOf(prob > DecisionThreshold))
}

// AddLabel is Add with a numeric label; values above 0.5 are positive.
func (b *Binary) AddLabel(label, prob float64) error {
	return b.Add(label > 0.5, prob)
}

// Merge appends the observations of other.
func (b *Binary) Merge(other *Binary) error {
	if err := b.conf.Merge(other.conf); err != nil {
		return err
	}
	b.labels = append(b.labels, other.labels...)
	b.probs = append(b.probs, other.probs...)
	return nil
}

// Len returns the number of observations.
func (b *Binary) Len() int { return len(b.probs) }

// Positives returns the number of positive observations.
func (b *Binary) Positives() int {
	n := 0
	for _, l := range b.labels {
		if l {
			n++
		}
	}
	return n
}

// Confusion returns the thresholded confusion matrix. The caller must not
// modify it.
func (b *Binary) Confusion() *ConfusionMatrix { return b.conf }

// Curve is a receiver operating characteristic. Points run from (0, 0) to
// (1, 1) with non-decreasing FPR; Thresholds[i] is the cutoff at which a
// probability >= Thresholds[i] is called positive.
type Curve struct {
	TPR        []float64
	FPR        []float64
	Thresholds []float64
}

// ROC computes the ROC curve over every distinct predicted probability. It
// returns an empty curve when either class is absent.
func (b *Binary) ROC() Curve {
	pos := b.Positives()
	if pos == 0 || pos == len(b.labels) {
		return Curve{}
	}
	y := slices.Clone(b.probs)
	classes := slices.Clone(b.labels)
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, thresh := stat.ROC(nil, y, classes, nil)
	return Curve{TPR: tpr, FPR: fpr, Thresholds: thresh}
}

// AUC is the area under the ROC curve. It is 0.5 when either class is absent
// and the curve is undefined.
func (b *Binary) AUC() float64 {
	c := b.ROC()
	if len(c.FPR) < 2 {
		return 0.5
	}
	return integrate.Trapezoidal(c.FPR, c.TPR)
}

// Brier is the mean squared difference between probability and label.
func (b *Binary) Brier() float64 {
	if len(b.probs) == 0 {
		return 0
	}
	sq := make([]float64, len(b.probs))
	for i, p := range b.probs {
		d := p - indicator(b.labels[i])
		sq[i] = d * d
	}
	return floats.Sum(sq) / float64(len(sq))
}

// LogLoss is the mean negative log-likelihood of the labels.
func (b *Binary) LogLoss() float64 {
	if len(b.probs) == 0 {
		return 0
	}
	ll := make([]float64, len(b.probs))
	for i, p := range b.probs {
		p = math.Min(math.Max(p, logLossEpsilon), 1-logLossEpsilon)
		if b.labels[i] {
			ll[i] = -math.Log(p)
		} else {
			ll[i] = -math.Log(1 - p)
		}
	}
	return floats.Sum(ll) / float64(len(ll))
}

// Accuracy is the share of thresholded predictions that match the label.
func (b *Binary) Accuracy() float64 { return b.conf.Accuracy() }

// Precision of the positive class.
func (b *Binary) Precision() float64 { return b.conf.Precision(PositiveLabel) }

// Recall of the positive class.
func (b *Binary) Recall() float64 { return b.conf.Recall(PositiveLabel) }

// F1 of the positive class.
func (b *Binary) F1() float64 { return b.conf.F1(PositiveLabel) }

// Statistics returns every metric keyed by name. Averages are macro averages
// over both classes; "0.*" and "1.*" are per-class values.
func (b *Binary) Statistics() map[string]float64 {
	stats := map[string]float64{
		"count":         float64(b.Len()),
		"auc":           b.AUC(),
		"brier":         b.Brier(),
		"log_loss":      b.LogLoss(),
		"accuracy":      b.Accuracy(),
		"precision.avg": b.conf.MacroPrecision(),
		"recall.avg":    b.conf.MacroRecall(),
		"f1.avg":        b.conf.MacroF1(),
	}
	addClassStats(stats, b.conf, NegativeLabel)
	addClassStats(stats, b.conf, PositiveLabel)
	return stats
}

func addClassStats(stats map[string]float64, conf *ConfusionMatrix, category string) {
	stats[category+".accuracy"] = conf.ClassAccuracy(category)
	stats[category+".precision"] = conf.Precision(category)
	stats[category+".recall"] = conf.Recall(category)
	stats[category+".f1"] = conf.F1(category)
}

func labelOf(positive bool) string {
	if positive {
		return PositiveLabel
	}
	return NegativeLabel
}

func indicator(positive bool) float64 {
	if positive {
		return 1
	}
	return 0
}

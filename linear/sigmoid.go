package linear

import "math"

var (
	minProb = math.SmallestNonzeroFloat64
	maxProb = math.Nextafter(1, 0)
)

// Sigmoid computes the logistic function 1/(1+e^-z).
//
// The branch on the sign of z keeps e^x from overflowing. The result is
// clamped to the open interval (0, 1) so that saturated inputs still report
// a probability strictly between 0 and 1. Sigmoid(0) is exactly 0.5.
func Sigmoid(z float64) float64 {
	var p float64
	if z >= 0 {
		p = 1 / (1 + math.Exp(-z))
	} else {
		ez := math.Exp(z)
		p = ez / (1 + ez)
	}
	switch {
	case math.IsNaN(p):
		return p
	case p <= 0:
		return minProb
	case p >= 1:
		return maxProb
	}
	return p
}

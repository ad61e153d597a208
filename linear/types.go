package linear

// Binary model types. All of them score with the logistic sigmoid at
// inference time regardless of the loss they were trained with.
const (
	LogisticRegression     = "logistic_regression"
	Hinge                  = "hinge"
	Perceptron             = "perceptron"
	PassiveAggressive      = "passive_aggressive"
	MIRA                   = "MIRA"
	LeastSquaresRegression = "least_squares_regression"
	AdagradLogistic        = "adagrad_logistic"
	Dummy                  = "dummy"
)

// Multiclass model types.
const (
	MulticlassLogisticRegression = "multiclass_logistic_regression"
	MulticlassMIRA               = "multiclass_mira"
	OneVsAllModelType            = "one_vs_all"
)

var binaryModelTypes = map[string]bool{
	LogisticRegression:     true,
	Hinge:                  true,
	Perceptron:             true,
	PassiveAggressive:      true,
	MIRA:                   true,
	LeastSquaresRegression: true,
	AdagradLogistic:        true,
	Dummy:                  true,
}

// IsBinaryModelType reports whether modelType names a known binary model.
func IsBinaryModelType(modelType string) bool {
	return binaryModelTypes[modelType]
}

// StrategyForModelType maps a multiclass model type to its combination rule.
// ok is false for unknown types; the returned strategy is then OneVsAll.
func StrategyForModelType(modelType string) (s Strategy, ok bool) {
	switch modelType {
	case MulticlassLogisticRegression:
		return Softmax, true
	case MulticlassMIRA:
		return RawNormalized, true
	case OneVsAllModelType:
		return OneVsAll, true
	default:
		return OneVsAll, false
	}
}

// ModelTypeForStrategy returns the model type written when encoding a
// multiclass model built directly from a strategy.
func ModelTypeForStrategy(s Strategy) string {
	switch s {
	case Softmax:
		return MulticlassLogisticRegression
	case RawNormalized:
		return MulticlassMIRA
	default:
		return OneVsAllModelType
	}
}

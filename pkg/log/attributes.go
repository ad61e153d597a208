// Package log defines standard attribute keys for inference operations.
//
// Using these keys keeps log lines from the loader, the classifiers and the
// registry consistent, so that they can be filtered by model, source or
// operation. Keys follow a hierarchical naming convention ("model.type",
// "load.source").

package log

// Model and Operation Context
const (
	// ModelTypeKey is the declared modelType of a loaded document.
	// Examples: "logistic_regression", "multiclass_logistic_regression", "dummy"
	ModelTypeKey = "model.type"

	// ModelIDKey identifies one loaded model instance (a UUID assigned at load time).
	ModelIDKey = "model.id"

	// StrategyKey is the multiclass combination rule in use.
	// Values: "raw_normalized", "softmax", "one_vs_all"
	StrategyKey = "model.strategy"

	// CategoriesKey is the number of categories of a multiclass model.
	CategoriesKey = "model.categories"

	// OperationKey specifies the operation being performed.
	// Standard values: "load", "predict", "explain", "evaluate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	// Examples: "loader", "registry", "cli"
	ComponentKey = "ml.component"

	// PhaseKey indicates the loader state reached.
	// Values: "reading", "parsed", "dispatched"
	PhaseKey = "ml.phase"
)

// Model Source
const (
	// SourceKey is the identifier of the model source (path, URL, redis key).
	SourceKey = "load.source"

	// SizeKey is the number of bytes declared by or read from the source.
	SizeKey = "load.size_bytes"

	// LimitKey is the configured maximum model size in bytes.
	LimitKey = "load.limit_bytes"

	// StrictKey reports whether strict model type checking is enabled.
	StrictKey = "load.strict"
)

// Data Shape and Performance
const (
	// FeaturesKey indicates the number of features in a vector or model.
	FeaturesKey = "data.features"

	// SamplesKey indicates the number of instances in a batch.
	SamplesKey = "data.samples"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// CacheKey is the registry entry name involved in a cache event.
	CacheKey = "cache.key"
)

// Error and Warning Context
const (
	// ErrorKey carries the error message.
	ErrorKey = "error"

	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// StacktraceKey contains the stack trace recorded by cockroachdb/errors.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationLoad     = "load"
	OperationPredict  = "predict"
	OperationExplain  = "explain"
	OperationEvaluate = "evaluate"

	PhaseReading    = "reading"
	PhaseParsed     = "parsed"
	PhaseDispatched = "dispatched"

	ErrorModelNotFound       = "MODEL_NOT_FOUND"
	ErrorModelTooLarge       = "MODEL_TOO_LARGE"
	ErrorModelMalformed      = "MODEL_MALFORMED"
	ErrorUnknownModelType    = "UNKNOWN_MODEL_TYPE"
	ErrorNumericalDegenerate = "NUMERICAL_DEGENERATE"
	ErrorLoadTimeout         = "LOAD_TIMEOUT"
)

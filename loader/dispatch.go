package loader

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/sparse"
	"github.com/YuminosukeSato/linscore/linear"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Shape names used in errors and logs.
const (
	shapeBinary     = "binary"
	shapeMulticlass = "multiclass"
)

// shape is the typed form of a document's param, decided once after parsing.
type shape interface {
	name() string
}

type binaryShape struct {
	params *sparse.Vector
}

func (binaryShape) name() string { return shapeBinary }

type multiclassShape struct {
	params map[string]*sparse.Vector
}

func (multiclassShape) name() string { return shapeMulticlass }

// parseShape classifies param:
//
//	{"vector": {k: w, ...}}                  binary
//	{cat: {"vector": {k: w, ...}}, ...}      multiclass
//
// Anything else is malformed.
func parseShape(source string, param json.RawMessage) (shape, error) {
	if len(bytes.TrimSpace(param)) == 0 {
		return nil, lserrors.NewModelMalformedError(source, "param is missing", nil)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(param, &entries); err != nil {
		return nil, lserrors.NewModelMalformedError(source, "param must be an object", err)
	}
	if len(entries) == 0 {
		return nil, lserrors.NewModelMalformedError(source, "param is empty", nil)
	}

	if raw, ok := entries[model.VectorField]; ok {
		var v sparse.Vector
		if err := json.Unmarshal(raw, &v); err == nil {
			return binaryShape{params: &v}, nil
		}
		// A category may itself be named "vector"; try the multiclass form.
	}

	cats := make([]string, 0, len(entries))
	for c := range entries {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	params := make(map[string]*sparse.Vector, len(entries))
	for _, c := range cats {
		var bp model.BinaryParam
		if err := json.Unmarshal(entries[c], &bp); err != nil {
			return nil, lserrors.NewModelMalformedError(source,
				"param."+c+" must be {\"vector\": {...}} of numbers", err)
		}
		if bp.Vector == nil {
			return nil, lserrors.NewModelMalformedError(source, "param."+c+" has no vector", nil)
		}
		params[c] = bp.Vector
	}
	return multiclassShape{params: params}, nil
}

// dispatch builds the classifier for doc. An unknown non-empty modelType fails
// in strict mode; otherwise binary shapes keep sigmoid scoring and
// multiclass shapes fall back to one-vs-all, with a warning.
func (l *Loader) dispatch(source string, doc *model.Document) (model.Classifier, error) {
	sh, err := parseShape(source, doc.Param)
	if err != nil {
		return nil, err
	}

	opts := []linear.Option{
		linear.WithModelType(doc.ModelType),
		linear.WithMetadata(doc.Metadata),
	}

	switch s := sh.(type) {
	case binaryShape:
		if doc.ModelType != "" && !linear.IsBinaryModelType(doc.ModelType) {
			if l.strict {
				return nil, lserrors.NewUnknownModelTypeError(source, doc.ModelType, shapeBinary)
			}
			lserrors.Warn(lserrors.NewUnknownModelTypeWarning(source, doc.ModelType, linear.LogisticRegression))
		}
		return linear.NewBinary(s.params, opts...), nil

	case multiclassShape:
		strategy, known := linear.StrategyForModelType(doc.ModelType)
		if !known && doc.ModelType != "" {
			if l.strict {
				return nil, lserrors.NewUnknownModelTypeError(source, doc.ModelType, shapeMulticlass)
			}
			lserrors.Warn(lserrors.NewUnknownModelTypeWarning(source, doc.ModelType, strategy.String()))
		}
		m, err := linear.NewMulticlass(strategy, s.params, opts...)
		if err != nil {
			return nil, lserrors.NewModelMalformedError(source, "invalid multiclass param", err)
		}
		return m, nil

	default:
		return nil, lserrors.NewModelMalformedError(source, "unrecognized param shape", nil)
	}
}

// Package linscore is a client-side inference library for linear and
// logistic models trained elsewhere.
//
// A model document is JSON: a declared modelType and a param object holding
// either one sparse weight vector (binary) or one vector per category
// (multiclass). linscore loads such documents under a size cap, turns them
// into immutable classifiers and scores sparse feature vectors with them.
//
// # Features
//
//   - Binary scoring: sigmoid of the dot product, never exactly 0 or 1
//   - Multiclass scoring with three distinct combination rules: Softmax,
//     OneVsAll and RawNormalized
//   - Explanations: the present features with the largest weights, rendered
//     as key(weight)
//   - Loading from files, HTTP or Redis with a size cap, a timeout, strict or
//     lenient model-type checking and a dummy mode
//   - Typed errors matchable with errors.Is and errors.As
//   - Offline evaluation: AUC, Brier score, log loss, confusion matrices and
//     ROC plots
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/linscore/core/sparse"
//	    "github.com/YuminosukeSato/linscore/linear"
//	    "github.com/YuminosukeSato/linscore/loader"
//	)
//
//	func main() {
//	    l := loader.New(loader.WithMaxSize(8 << 20))
//	    clf, err := l.Load(context.Background(), loader.FileSource("models/spam.json"))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    f := sparse.FromMap(map[string]float64{"free": 1, "winner": 2})
//	    pred, err := linear.Predict(clf, f)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(pred.Label, pred.Prob(linear.PositiveLabel))
//	    fmt.Println(clf.Explanation(f, 5))
//	}
//
// # Packages
//
//   - core/sparse: string-keyed sparse vectors and the dot product
//   - core/model: classifier interfaces, the model document and Prediction
//   - core/parallel: bounded fan-out for batch scoring
//   - linear: Binary and Multiclass classifiers, explanations, batch helpers
//   - loader: sources, size cap, shape dispatch and YAML configuration
//   - registry: LRU cache of named models with file watching
//   - evaluation: binary and multiclass evaluation metrics
//   - pkg/errors: the error taxonomy
//   - pkg/log: logging interface and the zerolog backend
//   - cmd/linscore: command-line interface
//
// # Concurrency
//
// Classifiers are immutable after loading and may be shared by any number of
// goroutines. Only Load performs I/O; it honours its context.
package linscore

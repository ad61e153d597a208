package main

import (
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/YuminosukeSato/linscore/core/sparse"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lserrors.Wrapf(err, "open %s", path)
	}
	return f, nil
}

// readInstances decodes a stream of JSON feature objects, one per instance.
// Whitespace, including newlines, separates instances.
func readInstances(r io.Reader, fn func(i int, f *sparse.Vector) error) error {
	dec := json.NewDecoder(r)
	for i := 0; ; i++ {
		f := sparse.New()
		if err := dec.Decode(f); err != nil {
			if err == io.EOF {
				return nil
			}
			return lserrors.Wrapf(err, "instance %d", i)
		}
		if err := fn(i, f); err != nil {
			return err
		}
	}
}

// example is one line of an evaluation data set.
type example struct {
	Label    json.RawMessage `json:"label"`
	Features *sparse.Vector  `json:"features"`
}

// readExamples decodes a stream of {"label": ..., "features": {...}} objects.
func readExamples(r io.Reader) ([]example, error) {
	dec := json.NewDecoder(r)
	var out []example
	for i := 0; ; i++ {
		var ex example
		if err := dec.Decode(&ex); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, lserrors.Wrapf(err, "example %d", i)
		}
		if len(ex.Label) == 0 {
			return nil, lserrors.Newf("example %d: missing label", i)
		}
		if ex.Features == nil {
			ex.Features = sparse.New()
		}
		out = append(out, ex)
	}
}

// category returns the label as a category name. Numbers are formatted
// without a trailing ".0" so that 1 and "1" name the same category.
func (ex example) category() (string, error) {
	var s string
	if err := json.Unmarshal(ex.Label, &s); err == nil {
		return s, nil
	}
	var b bool
	if err := json.Unmarshal(ex.Label, &b); err == nil {
		if b {
			return "1", nil
		}
		return "0", nil
	}
	var f float64
	if err := json.Unmarshal(ex.Label, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", lserrors.Newf("label %s is neither a string, a number nor a boolean", ex.Label)
}

// positive interprets the label of a binary example: true, 1 and "1" are
// positive; false, 0 and "0" negative.
func (ex example) positive() (bool, error) {
	c, err := ex.category()
	if err != nil {
		return false, err
	}
	switch c {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	default:
		return false, lserrors.Newf("label %s is not binary", ex.Label)
	}
}

// Package sparse provides the string-keyed sparse vector used both as model
// parameters and as feature vectors.
//
// A key that is not stored has weight 0. Builder operations never leave an
// explicit zero behind: setting or accumulating a key to exactly 0 removes it.
package sparse

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Vector is a sparse mapping from feature name to weight.
//
// The zero value is an empty vector ready for use. A Vector used as model
// parameters is never mutated after construction and may be shared between
// goroutines; builder methods (Set, Add, AddScaled, Scale) are for callers
// assembling feature vectors and are not safe for concurrent use.
type Vector struct {
	m map[string]float64
}

// New returns an empty vector.
func New() *Vector {
	return &Vector{}
}

// FromMap builds a vector from m. Zero weights are dropped and m is copied.
func FromMap(m map[string]float64) *Vector {
	v := &Vector{m: make(map[string]float64, len(m))}
	for k, w := range m {
		if w != 0 {
			v.m[k] = w
		}
	}
	return v
}

// Dot returns the sum of v[k]*other[k] over the keys present in both vectors.
// Only the smaller operand is iterated.
func (v *Vector) Dot(other *Vector) float64 {
	small, large := v, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	if small.Len() == 0 {
		return 0
	}

	var sum float64
	for k, w := range small.m {
		if o, ok := large.m[k]; ok {
			sum += w * o
		}
	}
	return sum
}

// Get returns the weight stored under key, or 0.
func (v *Vector) Get(key string) float64 {
	if v == nil {
		return 0
	}
	return v.m[key]
}

// Has reports whether key is stored.
func (v *Vector) Has(key string) bool {
	if v == nil {
		return false
	}
	_, ok := v.m[key]
	return ok
}

// Params returns a copy of the stored weights.
func (v *Vector) Params() map[string]float64 {
	out := make(map[string]float64, v.Len())
	if v == nil {
		return out
	}
	for k, w := range v.m {
		out[k] = w
	}
	return out
}

// Len returns the number of stored keys.
func (v *Vector) Len() int {
	if v == nil {
		return 0
	}
	return len(v.m)
}

// Keys returns the stored keys in ascending order.
func (v *Vector) Keys() []string {
	keys := make([]string, 0, v.Len())
	if v == nil {
		return keys
	}
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls fn for each stored entry in unspecified order.
func (v *Vector) Range(fn func(key string, weight float64)) {
	if v == nil {
		return
	}
	for k, w := range v.m {
		fn(k, w)
	}
}

// Clone returns a deep copy of v.
func (v *Vector) Clone() *Vector {
	if v == nil {
		return New()
	}
	return FromMap(v.m)
}

// Set stores weight under key; a weight of 0 deletes the key.
func (v *Vector) Set(key string, weight float64) {
	if weight == 0 {
		delete(v.m, key)
		return
	}
	if v.m == nil {
		v.m = make(map[string]float64)
	}
	v.m[key] = weight
}

// Add adds delta to the weight under key.
func (v *Vector) Add(key string, delta float64) {
	v.Set(key, v.Get(key)+delta)
}

// AddScaled adds scale*other to v.
func (v *Vector) AddScaled(other *Vector, scale float64) {
	other.Range(func(k string, w float64) {
		v.Add(k, w*scale)
	})
}

// Scale multiplies every weight by factor. Scaling by 0 empties the vector.
func (v *Vector) Scale(factor float64) {
	if factor == 0 {
		v.m = nil
		return
	}
	for k, w := range v.m {
		v.Set(k, w*factor)
	}
}

// Threshold returns a copy of v without the entries whose |weight| < t.
func (v *Vector) Threshold(t float64) *Vector {
	out := &Vector{m: make(map[string]float64, v.Len())}
	v.Range(func(k string, w float64) {
		if math.Abs(w) >= t {
			out.m[k] = w
		}
	})
	return out
}

// L2Norm returns the Euclidean norm of v.
func (v *Vector) L2Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dense lays v out over keys as a gonum vector. Keys that are not stored
// become 0; stored keys not in keys are ignored.
func (v *Vector) Dense(keys []string) *mat.VecDense {
	if len(keys) == 0 {
		return nil
	}
	data := make([]float64, len(keys))
	for i, k := range keys {
		data[i] = v.Get(k)
	}
	return mat.NewVecDense(len(keys), data)
}

// MarshalJSON encodes v as a plain JSON object.
func (v *Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Params())
}

// UnmarshalJSON decodes a JSON object of numbers. Zero weights are dropped.
// An empty JSON array is accepted as the empty vector, since some writers
// cannot tell an empty map from an empty list.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil && list != nil {
		if len(list) > 0 {
			return lserrors.New("sparse: vector must be an object of numbers, got a non-empty array")
		}
		*v = *New()
		return nil
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return lserrors.Wrap(err, "sparse: vector must be an object of numbers")
	}
	if raw == nil {
		return lserrors.New("sparse: vector must be an object of numbers, got null")
	}
	*v = *FromMap(raw)
	return nil
}

package linear

import "encoding/json"

type config struct {
	modelType string
	metadata  map[string]json.RawMessage
}

// Option configures a Binary or Multiclass classifier at construction.
type Option func(*config)

// WithModelType sets the declared model type.
func WithModelType(modelType string) Option {
	return func(c *config) {
		c.modelType = modelType
	}
}

// WithMetadata attaches document metadata (epoch, training settings) that is
// carried through Document but never read by scoring. m is copied.
func WithMetadata(m map[string]json.RawMessage) Option {
	return func(c *config) {
		c.metadata = copyMetadata(m)
	}
}

func copyMetadata(m map[string]json.RawMessage) map[string]json.RawMessage {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func newConfig(defaultType string, opts []Option) config {
	c := config{modelType: defaultType}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

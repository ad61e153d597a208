package loader

import (
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
	"github.com/YuminosukeSato/linscore/pkg/log"
)

// Config is the YAML configuration of a Loader and of the named models that
// the registry and the CLI resolve.
//
//	max_size: 67108864
//	strict: false
//	timeout: 30s
//	log_level: info
//	models:
//	  spam:   { file: models/spam.json }
//	  topics: { url: https://example.com/topics.json }
//	  cached: { redis: { addr: localhost:6379, key: models:cached } }
type Config struct {
	MaxSize  int64                  `yaml:"max_size" json:"max_size"`
	Strict   bool                   `yaml:"strict" json:"strict"`
	Dummy    bool                   `yaml:"dummy" json:"dummy"`
	Timeout  Duration               `yaml:"timeout" json:"timeout"`
	LogLevel string                 `yaml:"log_level" json:"log_level"`
	Models   map[string]ModelConfig `yaml:"models" json:"models"`
}

// ModelConfig locates one model document. Exactly one of File, URL and Redis
// is set.
type ModelConfig struct {
	File  string       `yaml:"file,omitempty" json:"file,omitempty"`
	URL   string       `yaml:"url,omitempty" json:"url,omitempty"`
	Redis *RedisConfig `yaml:"redis,omitempty" json:"redis,omitempty"`
}

// RedisConfig addresses a document stored in Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	DB       int    `yaml:"db,omitempty" json:"db,omitempty"`
	Key      string `yaml:"key" json:"key"`
}

// Duration is a time.Duration written as "30s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return lserrors.NewValidationError("timeout", "invalid duration", s)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DefaultConfig returns the configuration New uses.
func DefaultConfig() Config {
	return Config{MaxSize: DefaultMaxSize, LogLevel: "info"}
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, lserrors.Wrapf(err, "read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, lserrors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes and validates YAML configuration. Unset fields keep
// their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, lserrors.Wrap(err, "parse yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxSize <= 0 {
		return lserrors.NewValidationError("max_size", "must be positive", c.MaxSize)
	}
	if c.Timeout < 0 {
		return lserrors.NewValidationError("timeout", "must not be negative", time.Duration(c.Timeout).String())
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, name := range c.ModelNames() {
		if err := c.Models[name].validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (m ModelConfig) validate(name string) error {
	set := 0
	if m.File != "" {
		set++
	}
	if m.URL != "" {
		set++
	}
	if m.Redis != nil {
		set++
		if m.Redis.Addr == "" || m.Redis.Key == "" {
			return lserrors.NewValidationError("models."+name+".redis", "addr and key are required", m.Redis.Addr+"/"+m.Redis.Key)
		}
	}
	if set != 1 {
		return lserrors.NewValidationError("models."+name, "exactly one of file, url, redis must be set", set)
	}
	return nil
}

// ModelNames returns the configured model names in ascending order.
func (c Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for n := range c.Models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Options converts the configuration into Loader options.
func (c Config) Options() []Option {
	return []Option{
		WithMaxSize(c.MaxSize),
		WithStrict(c.Strict),
		WithDummy(c.Dummy),
		WithTimeout(time.Duration(c.Timeout)),
	}
}

// FromConfig creates a Loader from configuration. Additional options are
// applied after the configured ones.
func FromConfig(c Config, opts ...Option) (*Loader, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return New(append(c.Options(), opts...)...), nil
}

// Source builds the Source of a named model. Redis clients are created on
// demand; close them with the returned closer.
func (c Config) Source(name string) (Source, func() error, error) {
	m, ok := c.Models[name]
	if !ok {
		return nil, nil, lserrors.NewModelNotFoundError(name, lserrors.Newf("model %q is not configured", name))
	}
	if err := m.validate(name); err != nil {
		return nil, nil, err
	}
	noop := func() error { return nil }

	switch {
	case m.File != "":
		return FileSource(m.File), noop, nil
	case m.URL != "":
		client := &http.Client{Timeout: time.Duration(c.Timeout)}
		return HTTPSource{URL: m.URL, Client: client}, noop, nil
	default:
		client := redis.NewClient(&redis.Options{
			Addr:     m.Redis.Addr,
			Password: m.Redis.Password,
			DB:       m.Redis.DB,
		})
		return RedisSource{Client: client, Key: m.Redis.Key}, client.Close, nil
	}
}

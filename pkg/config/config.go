package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/quill/pkg/normalize"
	"github.com/cuemby/quill/pkg/tokenize"
)

// Config holds Quill's configuration
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogJSON     bool   `yaml:"log_json"`
	MetricsAddr string `yaml:"metrics_addr"`

	Debounce  Duration `yaml:"debounce"`
	QueueSize int      `yaml:"queue_size"`

	Tokenizer   Tokenizer   `yaml:"tokenizer"`
	Normalizers Normalizers `yaml:"normalizers"`
}

// Tokenizer selects how file contents are split into tokens
type Tokenizer struct {
	Kind    string `yaml:"kind"`    // "whitespace" or "regex"
	Pattern string `yaml:"pattern"` // delimiter pattern for the regex kind
}

// Normalizers configures the token normalizer chain. The chain applies in
// the order unicode, lowercase, stop words.
type Normalizers struct {
	Unicode   string   `yaml:"unicode"` // "", "nfc", "nfd", "nfkc" or "nfkd"
	LowerCase bool     `yaml:"lowercase"`
	StopWords []string `yaml:"stop_words"`
}

// Duration wraps time.Duration with YAML support for strings like "750ms"
type Duration time.Duration

// UnmarshalYAML parses a duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		MetricsAddr: "127.0.0.1:2112",
		Debounce:    Duration(time.Second),
		QueueSize:   1024,
		Tokenizer: Tokenizer{
			Kind:    "regex",
			Pattern: `[^\w-]+`,
		},
		Normalizers: Normalizers{
			Unicode:   "nfc",
			LowerCase: true,
			StopWords: []string{"a", "the", "and", "or", "not"},
		},
	}
}

// Load reads the config file at path on top of the defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	switch c.Tokenizer.Kind {
	case "whitespace":
	case "regex":
		if c.Tokenizer.Pattern == "" {
			return fmt.Errorf("tokenizer: regex kind requires a pattern")
		}
		if _, err := regexp.Compile(c.Tokenizer.Pattern); err != nil {
			return fmt.Errorf("tokenizer: %w", err)
		}
	default:
		return fmt.Errorf("tokenizer: unknown kind %q", c.Tokenizer.Kind)
	}

	if c.Normalizers.Unicode != "" {
		if _, err := normalize.ParseUnicode(c.Normalizers.Unicode); err != nil {
			return fmt.Errorf("normalizers: %w", err)
		}
	}

	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive")
	}

	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	return nil
}

// Factory builds the configured tokenizer factory
func (c *Config) Factory() (tokenize.Factory, error) {
	switch c.Tokenizer.Kind {
	case "whitespace":
		return tokenize.NewWhitespaceFactory(), nil
	case "regex":
		return tokenize.NewRegexFactory(c.Tokenizer.Pattern)
	default:
		return nil, fmt.Errorf("unknown tokenizer kind %q", c.Tokenizer.Kind)
	}
}

// NormalizerChain builds the configured normalizer chain
func (c *Config) NormalizerChain() ([]normalize.Normalizer, error) {
	var chain []normalize.Normalizer

	if c.Normalizers.Unicode != "" {
		u, err := normalize.ParseUnicode(c.Normalizers.Unicode)
		if err != nil {
			return nil, err
		}
		chain = append(chain, u)
	}

	if c.Normalizers.LowerCase {
		chain = append(chain, normalize.LowerCase{})
	}

	if len(c.Normalizers.StopWords) > 0 {
		chain = append(chain, normalize.NewStopWords(c.Normalizers.StopWords...))
	}

	return chain, nil
}

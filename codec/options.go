package codec

import "github.com/packr/packr/dict"

// Config holds the tunables a Encoder/Decoder pair needs to agree on out of
// band (dictionary capacity and the streaming batch thresholds of §4.6).
// There is no in-frame negotiation of these values — a decoder configured
// differently from its encoder will desync, same as the teacher's blob
// encode/decode option pairs.
type Config struct {
	DictCapacity  int
	MaxBatchRows  int
	MaxBatchBytes int
	UseLZ77       bool
}

// DefaultMaxBatchRows and DefaultMaxBatchBytes are the streaming scheduler
// thresholds of spec §4.6.
const (
	DefaultMaxBatchRows  = 128
	DefaultMaxBatchBytes = 4096
)

func defaultConfig() Config {
	return Config{
		DictCapacity:  dict.DefaultCapacity,
		MaxBatchRows:  DefaultMaxBatchRows,
		MaxBatchBytes: DefaultMaxBatchBytes,
		UseLZ77:       false,
	}
}

// Option configures an Encoder or Decoder, following the teacher's
// functional-options convention (mebo.go's NumericEncoderOption).
type Option func(*Config)

// WithLZ77 wraps every emitted frame in the LZ77 envelope of §4.8.
func WithLZ77() Option {
	return func(c *Config) { c.UseLZ77 = true }
}

// WithMaxBatchRows overrides the streaming scheduler's row threshold.
func WithMaxBatchRows(n int) Option {
	return func(c *Config) { c.MaxBatchRows = n }
}

// WithMaxBatchBytes overrides the streaming scheduler's byte threshold.
func WithMaxBatchBytes(n int) Option {
	return func(c *Config) { c.MaxBatchBytes = n }
}

// WithDictCapacity overrides the dictionary capacity (normally
// dict.DefaultCapacity; exists so tests can exercise eviction with a small
// number of insertions).
func WithDictCapacity(n int) Option {
	return func(c *Config) { c.DictCapacity = n }
}

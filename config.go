package colfile

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/hexbee-net/colfile/compression"
	"github.com/hexbee-net/colfile/layout"
	"github.com/hexbee-net/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const errInvalidConfig = errors.Error("invalid configuration")

const (
	DefaultRowGroupRows     = 1 << 20
	DefaultRowGroupBytes    = 128 << 20
	DefaultMaxInFlightPages = 64
)

// Config holds the settings of readers and writers. Zero settings select
// the defaults, a zero Parallelism uses one worker per CPU. Readers only use Parallelism, MaxInFlightPages and Logger.
type Config struct {
	// Codec is the page compression: none, snappy, gzip, brotli, lz4 or zstd.
	Codec string `yaml:"codec" validate:"oneof=none uncompressed snappy gzip brotli lz4 zstd"`

	RowGroupRows  int   `yaml:"row_group_rows" validate:"gte=0"`
	RowGroupBytes int64 `yaml:"row_group_bytes" validate:"gte=0"`
	PageRows      int   `yaml:"page_rows" validate:"gte=0"`
	PageBytes     int   `yaml:"page_bytes" validate:"gte=0"`

	// Encoding is auto, plain or dictionary.
	Encoding string `yaml:"encoding" validate:"oneof=auto plain dictionary"`
	// IntegerEncoding is the fallback encoding of integer and timestamp
	// columns: plain or delta.
	IntegerEncoding     string  `yaml:"integer_encoding" validate:"oneof=plain delta"`
	DictionaryThreshold float64 `yaml:"dictionary_threshold" validate:"gt=0,lte=1"`

	// Parallelism bounds the column chunks encoded or decoded concurrently.
	Parallelism int `yaml:"parallelism" validate:"gte=0"`
	// MaxInFlightPages bounds the pages held in memory while reading.
	MaxInFlightPages int64 `yaml:"max_in_flight_pages" validate:"gte=0"`

	// Metadata is written in the footer key/value metadata.
	Metadata map[string]string `yaml:"metadata"`

	Logger *zerolog.Logger `yaml:"-" validate:"-"`
}

// DefaultConfig returns snappy compressed files with automatic encodings.
func DefaultConfig() Config {
	return Config{
		Codec:               "snappy",
		RowGroupRows:        DefaultRowGroupRows,
		RowGroupBytes:       DefaultRowGroupBytes,
		PageRows:            layout.DefaultPageRows,
		PageBytes:           layout.DefaultPageBytes,
		Encoding:            "auto",
		IntegerEncoding:     "plain",
		DictionaryThreshold: layout.DefaultDictionaryThreshold,
		MaxInFlightPages:    DefaultMaxInFlightPages,
	}
}

// LoadConfig reads a YAML configuration. Missing settings keep their
// default value, unknown settings are rejected.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to open configuration")
	}

	defer func() { _ = f.Close() }()

	return ReadConfig(f)
}

// ReadConfig is the same as LoadConfig but reads the YAML document from r.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(errors.WithStack(errInvalidConfig), err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the settings values.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.WithStack(errInvalidConfig), err.Error())
	}

	return nil
}

func (c Config) layoutOptions() (layout.Options, error) {
	opts := layout.DefaultOptions()

	codec, err := compression.ParseCodec(c.Codec)
	if err != nil {
		return opts, err
	}

	opts.Codec = codec
	opts.PageRows = c.PageRows
	opts.PageBytes = c.PageBytes
	opts.IntegerDelta = c.IntegerEncoding == "delta"
	opts.DictionaryThreshold = c.DictionaryThreshold

	switch c.Encoding {
	case "plain":
		opts.Mode = layout.EncodingPlain
	case "dictionary":
		opts.Mode = layout.EncodingDictionary
	default:
		opts.Mode = layout.EncodingAuto
	}

	return opts, nil
}

// withDefaults replaces the zero settings by their default value.
func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.Codec == "" {
		c.Codec = def.Codec
	}

	if c.RowGroupRows == 0 {
		c.RowGroupRows = def.RowGroupRows
	}

	if c.RowGroupBytes == 0 {
		c.RowGroupBytes = def.RowGroupBytes
	}

	if c.PageRows == 0 {
		c.PageRows = def.PageRows
	}

	if c.PageBytes == 0 {
		c.PageBytes = def.PageBytes
	}

	if c.Encoding == "" {
		c.Encoding = def.Encoding
	}

	if c.IntegerEncoding == "" {
		c.IntegerEncoding = def.IntegerEncoding
	}

	if c.DictionaryThreshold == 0 {
		c.DictionaryThreshold = def.DictionaryThreshold
	}

	if c.MaxInFlightPages == 0 {
		c.MaxInFlightPages = def.MaxInFlightPages
	}

	return c
}

func (c Config) parallelism() int {
	if c.Parallelism <= 0 {
		return runtime.GOMAXPROCS(0)
	}

	return c.Parallelism
}

func (c Config) logger(ctx context.Context) *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return zerolog.Ctx(ctx)
}

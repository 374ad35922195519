package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/csvcount/pkg/compression"
	"github.com/ajitpratap0/csvcount/pkg/csvio"
	"github.com/ajitpratap0/csvcount/pkg/errors"
	"github.com/ajitpratap0/csvcount/pkg/index"
)

// StdinName is how standard input is named in logs and errors
const StdinName = "<stdin>"

// SourceConfig describes one data source. The zero value is not usable;
// build one with NewSourceConfig.
type SourceConfig struct {
	path        string
	dialect     csvio.Dialect
	compression compression.Algorithm
	stdin       io.Reader
}

// Option customizes a SourceConfig during construction
type Option func(*SourceConfig)

// WithDelimiter overrides the delimiter sniffed from the file extension
func WithDelimiter(b byte) Option {
	return func(c *SourceConfig) { c.dialect.Delimiter = b }
}

// WithNoHeaders treats the first row as data
func WithNoHeaders(noHeaders bool) Option {
	return func(c *SourceConfig) { c.dialect.HasHeaders = !noHeaders }
}

// WithFlexible tolerates records with differing field counts
func WithFlexible(flexible bool) Option {
	return func(c *SourceConfig) { c.dialect.Flexible = flexible }
}

// WithQuoting enables or disables quote recognition
func WithQuoting(quoting bool) Option {
	return func(c *SourceConfig) { c.dialect.Quoting = quoting }
}

// WithComment skips lines starting with b; 0 disables comments
func WithComment(b byte) Option {
	return func(c *SourceConfig) { c.dialect.Comment = b }
}

// WithStdin replaces os.Stdin as the standard input stream
func WithStdin(r io.Reader) Option {
	return func(c *SourceConfig) { c.stdin = r }
}

// NewSourceConfig describes the source at path. An empty path or "-"
// selects standard input.
func NewSourceConfig(path string, opts ...Option) (SourceConfig, error) {
	if path == "-" {
		path = ""
	}

	c := SourceConfig{
		path:        path,
		dialect:     csvio.DefaultDialect(),
		compression: compression.None,
		stdin:       os.Stdin,
	}
	if path != "" {
		c.compression = compression.Detect(path)
		c.dialect.Delimiter = DelimiterForPath(path)
	}

	for _, opt := range opts {
		opt(&c)
	}

	if err := c.dialect.Validate(); err != nil {
		return SourceConfig{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid dialect")
	}
	return c, nil
}

// DelimiterForPath picks the conventional delimiter for a file name,
// looking through a compression extension.
func DelimiterForPath(path string) byte {
	switch strings.ToLower(filepath.Ext(compression.TrimExtension(path))) {
	case ".tsv", ".tab":
		return '\t'
	case ".ssv":
		return ';'
	default:
		return ','
	}
}

// Dialect returns the record splitting rules
func (c SourceConfig) Dialect() csvio.Dialect {
	return c.dialect
}

// WithDialect returns a copy of c using d
func (c SourceConfig) WithDialect(d csvio.Dialect) SourceConfig {
	c.dialect = d
	return c
}

// Path returns the resolved file path; ok is false for standard input
func (c SourceConfig) Path() (string, bool) {
	return c.path, c.path != ""
}

// Name identifies the source in logs
func (c SourceConfig) Name() string {
	if c.path == "" {
		return StdinName
	}
	return c.path
}

// IsStdin reports whether records come from standard input
func (c SourceConfig) IsStdin() bool {
	return c.path == ""
}

// Compression returns the compression detected for the source
func (c SourceConfig) Compression() compression.Algorithm {
	return c.compression
}

// AcceleratedUnsupported reports whether the columnar engine cannot read
// the source format. Compressed sources are streamed only.
func (c SourceConfig) AcceleratedUnsupported() bool {
	return c.compression.IsCompressed()
}

// Open returns the decompressed byte stream of the source. Closing the
// stream of standard input leaves the process's stdin open.
func (c SourceConfig) Open() (io.ReadCloser, error) {
	if c.path == "" {
		return io.NopCloser(c.stdin), nil
	}

	f, err := os.Open(c.path) //nolint:gosec // G304: path is the user's input argument
	if os.IsNotExist(err) {
		return nil, errors.Newf(errors.ErrorTypeSourceNotFound, "%s does not exist", c.path).
			WithDetail("path", c.path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open source").
			WithDetail("path", c.path)
	}

	rc, err := compression.NewReader(c.compression, f)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeMalformedRecord, "failed to decompress source").
			WithDetail("path", c.path).
			WithDetail("compression", string(c.compression))
	}
	return rc, nil
}

// OpenReader opens the source with the given dialect
func (c SourceConfig) OpenReader(d csvio.Dialect) (csvio.Reader, error) {
	rc, err := c.Open()
	if err != nil {
		return nil, err
	}
	return csvio.NewReader(rc, d), nil
}

// ProbeIndex looks for a fresh index next to the source. Standard input
// and compressed sources never have one.
func (c SourceConfig) ProbeIndex() (*index.Handle, error) {
	if c.path == "" || c.compression.IsCompressed() {
		return nil, nil
	}
	return index.Probe(c.path, c.dialect.HasHeaders)
}

// BuildIndex scans the whole source and writes its index
func (c SourceConfig) BuildIndex() (uint64, error) {
	if c.path == "" {
		return 0, errors.New(errors.ErrorTypeConfig, "cannot index standard input")
	}
	if c.compression.IsCompressed() {
		return 0, errors.Newf(errors.ErrorTypeConfig, "cannot index %s compressed data", c.compression).
			WithDetail("path", c.path)
	}

	d := c.dialect
	d.HasHeaders = false
	r, err := c.OpenReader(d)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	return index.Create(c.path, r)
}

package count

import (
	"io"

	"github.com/ajitpratap0/csvcount/pkg/csvio"
	"github.com/ajitpratap0/csvcount/pkg/index"
)

// Source is the data source consumed by the Engine. config.SourceConfig
// implements it.
type Source interface {
	// Dialect returns the record splitting rules
	Dialect() csvio.Dialect
	// Open returns the decompressed byte stream of the source
	Open() (io.ReadCloser, error)
	// ProbeIndex returns the source's index, or nil when there is none
	ProbeIndex() (*index.Handle, error)
	// Path returns the file path; ok is false for standard input
	Path() (path string, ok bool)
	// IsStdin reports whether records come from standard input
	IsStdin() bool
	// AcceleratedUnsupported reports whether the columnar engine cannot
	// read the source format
	AcceleratedUnsupported() bool
	// Name identifies the source in logs
	Name() string
}

// Strategy names the path that produced a Result
type Strategy string

const (
	StrategyIndex       Strategy = "index"
	StrategyStream      Strategy = "stream"
	StrategyAccelerated Strategy = "accelerated"
)

// Request selects what Compute reports and which paths it may take
type Request struct {
	// Width also measures the widest record; forces the stream strategy
	Width bool
	// DisableAccelerated skips the columnar engine
	DisableAccelerated bool
	// LowMemory trades speed for a smaller footprint in the columnar engine
	LowMemory bool
}

// Result is the outcome of one counting operation. Width is zero when it
// was not computed.
type Result struct {
	Count    uint64
	Width    int
	Strategy Strategy
	// Fallback is set when an accelerated run was redone by the scanner
	Fallback bool
}

package columnar

import (
	"context"
	"math"
	"math/big"
	"runtime"
	"strconv"
	"strings"
)

// Kind tags an Outcome
type Kind int

const (
	// Counted means Count holds the number of data records
	Counted Kind = iota
	// EmptyResult means the engine produced no usable count
	EmptyResult
)

func (k Kind) String() string {
	switch k {
	case Counted:
		return "counted"
	case EmptyResult:
		return "empty_result"
	default:
		return "unknown"
	}
}

// Reasons attached to EmptyResult outcomes
const (
	ReasonNoRows     = "no_rows"
	ReasonNonInteger = "non_integer"
	ReasonEmptyFile  = "empty_file"

	// ReasonSingleColumn is returned for one column files, where a blank
	// line reads as a NULL row but the streaming reader skips it
	ReasonSingleColumn = "single_column"
)

// Outcome is the non-error result of an aggregation
type Outcome struct {
	Kind   Kind
	Count  uint64
	Reason string
}

// CountedOutcome returns a Counted outcome holding n
func CountedOutcome(n uint64) Outcome {
	return Outcome{Kind: Counted, Count: n}
}

// EmptyOutcome returns an EmptyResult outcome with the given reason
func EmptyOutcome(reason string) Outcome {
	return Outcome{Kind: EmptyResult, Reason: reason}
}

// Plan describes one aggregation over a file on disk
type Plan struct {
	Path       string
	Delimiter  byte
	Comment    byte
	HasHeaders bool
	LowMemory  bool
	// Threads caps engine parallelism; zero means one per CPU
	Threads       int
	Optimizations Optimizations
}

// Aggregator counts the records of a file using a columnar engine
type Aggregator interface {
	// Available reports whether the engine is linked into this build
	Available() bool
	// Count aggregates the file named by plan.Path
	Count(ctx context.Context, plan Plan) (Outcome, error)
}

// threads resolves the worker count, halved in low memory mode
func (p Plan) threads() int {
	n := p.Threads
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if p.LowMemory {
		n /= 2
	}
	if n < 1 {
		n = 1
	}
	return n
}

// readCSV renders the read_csv call for p. The dialect is spelled out
// so the engine never guesses escapes, skipped rows or padding that the
// streaming reader would reject.
func (p Plan) readCSV() string {
	var opts strings.Builder
	opts.WriteString("delim=")
	opts.WriteString(quoteLiteral(string(p.Delimiter)))
	opts.WriteString(", quote='\"', escape='\"'")
	opts.WriteString(", header=")
	opts.WriteString(strconv.FormatBool(p.HasHeaders))
	opts.WriteString(", skip=0, null_padding=false")
	if p.Comment != 0 {
		opts.WriteString(", comment=")
		opts.WriteString(quoteLiteral(string(p.Comment)))
	}
	if p.Optimizations.TypeCoercion {
		opts.WriteString(", all_varchar=true")
	}
	opts.WriteString(", parallel=true")

	return "read_csv(" + quoteLiteral(p.Path) + ", " + opts.String() + ")"
}

// ColumnsQuery returns a statement yielding no rows whose result columns
// are the columns of the file
func (p Plan) ColumnsQuery() string {
	return "SELECT * FROM " + p.readCSV() + " LIMIT 0"
}

// Query returns the counting statement for p
func (p Plan) Query() string {
	return "SELECT CAST(sum(constant) AS BIGINT) AS row_count FROM (SELECT 1 AS constant FROM " +
		p.readCSV() + ") GROUP BY constant"
}

// Statements returns the session settings to apply before Query.
// memoryLimit is in bytes and only used in low memory mode.
func (p Plan) Statements(memoryLimit uint64) []string {
	stmts := []string{"SET threads=" + strconv.Itoa(p.threads())}
	stmts = append(stmts, p.Optimizations.statements()...)
	if p.LowMemory && memoryLimit > 0 {
		mb := memoryLimit >> 20
		if mb < minMemoryLimitMB {
			mb = minMemoryLimitMB
		}
		stmts = append(stmts, "SET memory_limit='"+strconv.FormatUint(mb, 10)+"MB'")
	}
	return stmts
}

// quoteLiteral renders s as a SQL string literal
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// extractCount converts a scanned aggregate into a record count. Anything
// that is not a non-negative integer is rejected.
func extractCount(v any) (uint64, bool) {
	switch n := v.(type) {
	case int64:
		return nonNegative(n)
	case int32:
		return nonNegative(int64(n))
	case int:
		return nonNegative(int64(n))
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case *big.Int:
		if n == nil || n.Sign() < 0 || !n.IsUint64() {
			return 0, false
		}
		return n.Uint64(), true
	case float64:
		if n < 0 || n != math.Trunc(n) || n > math.MaxUint64 {
			return 0, false
		}
		return uint64(n), true
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		return u, err == nil
	case []byte:
		u, err := strconv.ParseUint(string(n), 10, 64)
		return u, err == nil
	default:
		return 0, false
	}
}

func nonNegative(n int64) (uint64, bool) {
	if n < 0 {
		return 0, false
	}
	return uint64(n), true
}

package csvio

import (
	"fmt"
	"io"
)

// Dialect describes how a byte stream is split into records.
type Dialect struct {
	// Delimiter separates fields. Must be a single ASCII byte.
	Delimiter byte
	// Quoting enables RFC 4180 quote handling.
	Quoting bool
	// Flexible allows records with differing field counts.
	Flexible bool
	// HasHeaders consumes the first record as a header row.
	HasHeaders bool
	// Comment marks lines to skip when they start with it; 0 disables.
	Comment byte
}

// DefaultDialect is comma separated, quoted, strict, with a header row.
func DefaultDialect() Dialect {
	return Dialect{
		Delimiter:  ',',
		Quoting:    true,
		HasHeaders: true,
	}
}

// Validate checks that the delimiter and comment bytes are usable.
func (d Dialect) Validate() error {
	if err := validSeparator("delimiter", d.Delimiter); err != nil {
		return err
	}
	if d.Comment != 0 {
		if err := validSeparator("comment", d.Comment); err != nil {
			return err
		}
		if d.Comment == d.Delimiter {
			return fmt.Errorf("comment prefix %q must differ from the delimiter", d.Comment)
		}
	}
	return nil
}

func validSeparator(name string, b byte) error {
	switch {
	case b == 0:
		return fmt.Errorf("%s must not be NUL", name)
	case b >= 0x80:
		return fmt.Errorf("%s %q must be an ASCII byte", name, b)
	case b == '"' || b == '\r' || b == '\n':
		return fmt.Errorf("%s %q is reserved", name, b)
	}
	return nil
}

// Reader returns records one at a time.
type Reader interface {
	// Read fills rec with the next record. It returns false at end of input.
	Read(rec *Record) (bool, error)
	// Offset is the byte offset where the last returned record started.
	Offset() int64
	// Close releases the underlying stream.
	Close() error
}

// NewReader wraps rc with the reader matching d.Quoting.
func NewReader(rc io.ReadCloser, d Dialect) Reader {
	if d.Quoting {
		return newQuotedReader(rc, d)
	}
	return newRawReader(rc, d)
}

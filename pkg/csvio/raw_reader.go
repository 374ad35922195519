package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
)

const rawBufferSize = 64 * 1024

// rawReader treats every line as one record and never interprets quotes.
type rawReader struct {
	rc              io.ReadCloser
	br              *bufio.Reader
	d               Dialect
	long            []byte
	pos             int64
	offset          int64
	line            int
	fieldsPerRecord int
	headerPending   bool
}

func newRawReader(rc io.ReadCloser, d Dialect) *rawReader {
	return &rawReader{
		rc:            rc,
		br:            bufio.NewReaderSize(rc, rawBufferSize),
		d:             d,
		headerPending: d.HasHeaders,
	}
}

// readLine returns the next line including its terminator. The slice is
// only valid until the next call.
func (r *rawReader) readLine() ([]byte, error) {
	line, err := r.br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		r.long = append(r.long[:0], line...)
		for err == bufio.ErrBufferFull {
			line, err = r.br.ReadSlice('\n')
			r.long = append(r.long, line...)
		}
		line = r.long
	}
	r.pos += int64(len(line))

	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	return line, err
}

func (r *rawReader) Read(rec *Record) (bool, error) {
	for {
		start := r.pos
		line, err := r.readLine()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		r.line++

		line = trimTerminator(line)
		if len(line) == 0 {
			continue
		}
		if r.d.Comment != 0 && line[0] == r.d.Comment {
			continue
		}

		rec.Reset()
		r.split(line, rec)

		if !r.d.Flexible {
			if r.fieldsPerRecord == 0 {
				r.fieldsPerRecord = rec.Len()
			} else if rec.Len() != r.fieldsPerRecord {
				return false, &csv.ParseError{StartLine: r.line, Line: r.line, Column: 1, Err: csv.ErrFieldCount}
			}
		}

		if r.headerPending {
			r.headerPending = false
			continue
		}

		r.offset = start
		return true, nil
	}
}

func (r *rawReader) split(line []byte, rec *Record) {
	for {
		i := bytes.IndexByte(line, r.d.Delimiter)
		if i < 0 {
			rec.appendField(line)
			return
		}
		rec.appendField(line[:i])
		line = line[i+1:]
	}
}

func (r *rawReader) Offset() int64 {
	return r.offset
}

func (r *rawReader) Close() error {
	return r.rc.Close()
}

func trimTerminator(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

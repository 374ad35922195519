package csvio

import (
	"bytes"
	"encoding/csv"
	"io"
)

// lineStarts records the byte offset of every line start as input flows
// into csv.Reader, which only reports record positions as line and column.
type lineStarts struct {
	r      io.Reader
	read   int64
	first  int // line number of starts[0]
	starts []int64
}

func newLineStarts(r io.Reader) *lineStarts {
	return &lineStarts{r: r, first: 1, starts: []int64{0}}
}

func (l *lineStarts) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	buf := p[:n]
	base := l.read
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		base += int64(i) + 1
		l.starts = append(l.starts, base)
		buf = buf[i+1:]
	}
	l.read += int64(n)
	return n, err
}

// offset returns the byte offset of line and column and forgets the
// lines before it. Lines must be asked for in increasing order.
func (l *lineStarts) offset(line, column int) int64 {
	i := line - l.first
	off := l.starts[i] + int64(column-1)
	l.starts = l.starts[i:]
	l.first = line
	return off
}

type quotedReader struct {
	rc            io.ReadCloser
	r             *csv.Reader
	lines         *lineStarts
	headerPending bool
	offset        int64
}

func newQuotedReader(rc io.ReadCloser, d Dialect) *quotedReader {
	lines := newLineStarts(rc)
	r := csv.NewReader(lines)
	r.Comma = rune(d.Delimiter)
	if d.Comment != 0 {
		r.Comment = rune(d.Comment)
	}
	r.ReuseRecord = true
	if d.Flexible {
		r.FieldsPerRecord = -1
	}

	return &quotedReader{
		rc:            rc,
		r:             r,
		lines:         lines,
		headerPending: d.HasHeaders,
	}
}

func (q *quotedReader) Read(rec *Record) (bool, error) {
	for {
		fields, err := q.r.Read()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		line, column := q.r.FieldPos(0)
		start := q.lines.offset(line, column)

		if q.headerPending {
			q.headerPending = false
			continue
		}

		rec.Reset()
		for _, f := range fields {
			rec.appendString(f)
		}
		q.offset = start
		return true, nil
	}
}

func (q *quotedReader) Offset() int64 {
	return q.offset
}

func (q *quotedReader) Close() error {
	return q.rc.Close()
}

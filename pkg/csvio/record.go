package csvio

// Record is one row of byte fields. Field bytes are stored back to back
// and the buffer is overwritten by every Read, so callers that retain
// data must copy it.
type Record struct {
	buf  []byte
	ends []int
}

// NewRecord returns an empty record with room for a typical row.
func NewRecord() *Record {
	return &Record{
		buf:  make([]byte, 0, 1024),
		ends: make([]int, 0, 16),
	}
}

// Reset empties the record without releasing its storage.
func (r *Record) Reset() {
	r.buf = r.buf[:0]
	r.ends = r.ends[:0]
}

func (r *Record) appendField(b []byte) {
	r.buf = append(r.buf, b...)
	r.ends = append(r.ends, len(r.buf))
}

func (r *Record) appendString(s string) {
	r.buf = append(r.buf, s...)
	r.ends = append(r.ends, len(r.buf))
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.ends)
}

// Field returns the bytes of field i.
func (r *Record) Field(i int) []byte {
	start := 0
	if i > 0 {
		start = r.ends[i-1]
	}
	return r.buf[start:r.ends[i]]
}

// Bytes returns all field bytes concatenated, without delimiters.
func (r *Record) Bytes() []byte {
	return r.buf
}

// Width is the serialized length of the record: its fields joined by a
// single-byte delimiter, without quoting bytes or the record terminator.
func (r *Record) Width() int {
	if len(r.ends) == 0 {
		return 0
	}
	return len(r.buf) + len(r.ends) - 1
}

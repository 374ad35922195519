package count

import (
	"encoding/csv"

	"github.com/ajitpratap0/csvcount/pkg/csvio"
	"github.com/ajitpratap0/csvcount/pkg/errors"
)

// Scan reads every record of r once. Without width it only counts. With
// width it also tracks the widest record and adds the first record's
// delimiter count to it, assuming every record shares that topology.
func Scan(r csvio.Reader, width bool) (uint64, int, error) {
	rec := csvio.NewRecord()

	if !width {
		var n uint64
		for {
			ok, err := r.Read(rec)
			if err != nil {
				return 0, 0, readError(err, n)
			}
			if !ok {
				return n, 0, nil
			}
			n++
		}
	}

	ok, err := r.Read(rec)
	if err != nil {
		return 0, 0, readError(err, 0)
	}
	if !ok {
		return 0, 0, nil
	}

	n := uint64(1)
	maxWidth := rec.Width()
	delimiters := rec.Len() - 1
	if delimiters < 0 {
		delimiters = 0
	}

	for {
		ok, err := r.Read(rec)
		if err != nil {
			return 0, 0, readError(err, n)
		}
		if !ok {
			break
		}
		n++
		if w := rec.Width(); w > maxWidth {
			maxWidth = w
		}
	}
	return n, maxWidth + delimiters, nil
}

func readError(err error, counted uint64) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return errors.Wrap(err, errors.ErrorTypeMalformedRecord, "malformed record").
			WithDetail("line", perr.Line).
			WithDetail("records_read", counted)
	}
	return errors.Wrap(err, errors.ErrorTypeFile, "failed to read source").
		WithDetail("records_read", counted)
}

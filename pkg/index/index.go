// Package index reads and writes record-offset indexes for delimited files.
//
// An index lives next to its data file with an ".idx" suffix. It holds one
// big-endian uint64 start offset per record (the header row included)
// followed by a big-endian uint64 with the total number of records:
//
//	+----------+----------+-----+--------------+-------+
//	| offset 0 | offset 1 | ... | offset n - 1 |   n   |
//	+----------+----------+-----+--------------+-------+
//
// An index is only trusted while it is at least as new as the data file.
// Counting never writes an index; Create is used by the index command.
package index

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/csvcount/pkg/csvio"
	"github.com/ajitpratap0/csvcount/pkg/errors"
	"github.com/ajitpratap0/csvcount/pkg/mmap"
)

// Suffix is appended to a data file path to locate its index
const Suffix = ".idx"

// PathFor returns the index path for a data file
func PathFor(dataPath string) string {
	return dataPath + Suffix
}

// Handle is a validated, read-only index
type Handle struct {
	path       string
	region     *mmap.Region
	total      uint64
	hasHeaders bool
}

// Probe looks for a usable index next to dataPath.
//
// It returns (nil, nil) when there is no index file, an
// ErrorTypeIndexUnavailable error when the index is stale or corrupt,
// and an open Handle otherwise. The caller must Close the handle.
func Probe(dataPath string, hasHeaders bool) (*Handle, error) {
	idxPath := PathFor(dataPath)

	idxStat, err := os.Stat(idxPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIndexUnavailable, "failed to stat index").
			WithDetail("index", idxPath)
	}

	dataStat, err := os.Stat(dataPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIndexUnavailable, "failed to stat data file").
			WithDetail("path", dataPath)
	}
	if dataStat.ModTime().After(idxStat.ModTime()) {
		return nil, errors.New(errors.ErrorTypeIndexUnavailable, "index is stale").
			WithDetail("index", idxPath).
			WithDetail("data_modified", dataStat.ModTime()).
			WithDetail("index_modified", idxStat.ModTime())
	}

	return Open(idxPath, hasHeaders)
}

// Open maps an index file and validates its layout without checking
// freshness.
func Open(idxPath string, hasHeaders bool) (*Handle, error) {
	region, err := mmap.Open(idxPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIndexUnavailable, "failed to open index").
			WithDetail("index", idxPath)
	}

	size := region.Len()
	if size%8 != 0 {
		region.Close()
		return nil, errors.Newf(errors.ErrorTypeIndexUnavailable, "index size %d is not a multiple of 8", size).
			WithDetail("index", idxPath)
	}

	total, err := region.Uint64At(size - 8)
	if err != nil {
		region.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeIndexUnavailable, "failed to read record count").
			WithDetail("index", idxPath)
	}
	if want := uint64(size/8 - 1); total != want {
		region.Close()
		return nil, errors.Newf(errors.ErrorTypeIndexUnavailable, "index claims %d records but holds %d offsets", total, want).
			WithDetail("index", idxPath)
	}

	return &Handle{
		path:       idxPath,
		region:     region,
		total:      total,
		hasHeaders: hasHeaders,
	}, nil
}

// Count returns the number of data records, excluding the header row when
// the source has one.
func (h *Handle) Count() uint64 {
	if h.hasHeaders && h.total > 0 {
		return h.total - 1
	}
	return h.total
}

// Len returns the number of indexed records including any header row
func (h *Handle) Len() uint64 {
	return h.total
}

// Offset returns the byte offset of record i in the data file
func (h *Handle) Offset(i uint64) (int64, error) {
	if i >= h.total {
		return 0, errors.Newf(errors.ErrorTypeIndexUnavailable, "record %d out of range [0, %d)", i, h.total)
	}
	v, err := h.region.Uint64At(int64(i) * 8)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeIndexUnavailable, "failed to read offset")
	}
	return int64(v), nil
}

// Path returns the index file path
func (h *Handle) Path() string {
	return h.path
}

// Close releases the mapping
func (h *Handle) Close() error {
	return h.region.Close()
}

// Write scans every record from r and writes the index layout to w. The
// reader must be opened without header handling so the header row gets an
// offset too. It returns the number of records written.
func Write(r csvio.Reader, w io.Writer) (uint64, error) {
	bw := bufio.NewWriterSize(w, 64*1024)
	rec := csvio.NewRecord()
	var buf [8]byte
	var n uint64

	for {
		ok, err := r.Read(rec)
		if err != nil {
			return n, errors.Wrap(err, errors.ErrorTypeMalformedRecord, "failed to read record").
				WithDetail("record", n)
		}
		if !ok {
			break
		}
		binary.BigEndian.PutUint64(buf[:], uint64(r.Offset()))
		if _, err := bw.Write(buf[:]); err != nil {
			return n, errors.Wrap(err, errors.ErrorTypeFile, "failed to write index")
		}
		n++
	}

	binary.BigEndian.PutUint64(buf[:], n)
	if _, err := bw.Write(buf[:]); err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeFile, "failed to write index")
	}
	if err := bw.Flush(); err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeFile, "failed to flush index")
	}
	return n, nil
}

// Create writes the index for dataPath atomically: records are written to
// a temporary file in the same directory which then replaces any existing
// index.
func Create(dataPath string, r csvio.Reader) (uint64, error) {
	idxPath := PathFor(dataPath)

	tmp, err := os.CreateTemp(filepath.Dir(idxPath), filepath.Base(idxPath)+".*.tmp")
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeFile, "failed to create index file").
			WithDetail("index", idxPath)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	n, err := Write(r, tmp)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, errors.ErrorTypeFile, "failed to sync index")
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeFile, "failed to close index")
	}
	if err := os.Rename(tmp.Name(), idxPath); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeFile, "failed to install index").
			WithDetail("index", idxPath)
	}
	return n, nil
}

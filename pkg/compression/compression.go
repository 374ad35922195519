// Package compression opens compressed data sources as plain byte streams.
//
// The algorithm is chosen from the file extension:
//
//	.gz   gzip
//	.sz   snappy (framed)
//	.s2   s2
//	.zst  zstandard
//	.lz4  lz4 (framed)
//
// Anything else is read as is. Compressed sources are streamed only; they
// cannot be memory mapped, indexed or handed to the columnar engine.
package compression

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// LZ4 represents framed lz4 compression
	LZ4 Algorithm = "lz4"
)

var extensions = map[string]Algorithm{
	".gz":  Gzip,
	".sz":  Snappy,
	".s2":  S2,
	".zst": Zstd,
	".lz4": LZ4,
}

// Detect returns the algorithm implied by path's extension.
func Detect(path string) Algorithm {
	if algo, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return algo
	}
	return None
}

// TrimExtension strips a compression extension from path, so that
// "data.tsv.sz" yields "data.tsv".
func TrimExtension(path string) string {
	if Detect(path) == None {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// IsCompressed reports whether the algorithm transforms the bytes.
func (a Algorithm) IsCompressed() bool {
	return a != None && a != ""
}

// readCloser closes the decompressor and then the source.
type readCloser struct {
	io.Reader
	closeDecoder func() error
	src          io.Closer
}

func (r *readCloser) Close() error {
	var err error
	if r.closeDecoder != nil {
		err = r.closeDecoder()
	}
	if cerr := r.src.Close(); err == nil {
		err = cerr
	}
	return err
}

// NewReader returns a stream of the decompressed bytes of src. Closing
// the result closes src.
func NewReader(algo Algorithm, src io.ReadCloser) (io.ReadCloser, error) {
	switch algo {
	case None, "":
		return src, nil
	case Gzip:
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &readCloser{Reader: zr, closeDecoder: zr.Close, src: src}, nil
	case Snappy:
		return &readCloser{Reader: snappy.NewReader(src), src: src}, nil
	case S2:
		return &readCloser{Reader: s2.NewReader(src), src: src}, nil
	case Zstd:
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return &readCloser{
			Reader:       dec,
			closeDecoder: func() error { dec.Close(); return nil },
			src:          src,
		}, nil
	case LZ4:
		return &readCloser{Reader: lz4.NewReader(src), src: src}, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algo)
	}
}

// NewWriter returns a writer compressing into dst. Close flushes the
// compressed stream but leaves dst open.
func NewWriter(algo Algorithm, dst io.Writer) (io.WriteCloser, error) {
	switch algo {
	case None, "":
		return nopWriteCloser{dst}, nil
	case Gzip:
		return gzip.NewWriter(dst), nil
	case Snappy:
		return snappy.NewBufferedWriter(dst), nil
	case S2:
		return s2.NewWriter(dst), nil
	case Zstd:
		enc, err := zstd.NewWriter(dst)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	case LZ4:
		return lz4.NewWriter(dst), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algo)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

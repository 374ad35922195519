// Package mmap provides read-only memory-mapped file regions for
// random-access lookups
package mmap

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// Region is a read-only view of a whole file
type Region struct {
	file   *os.File
	data   []byte
	mapped bool

	mu sync.RWMutex
}

// Open maps the file at path. Empty files cannot be mapped.
func Open(path string) (*Region, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path comes from the caller's source configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	size := stat.Size()
	if size == 0 {
		file.Close()
		return nil, fmt.Errorf("file is empty")
	}
	if int64(int(size)) != size {
		file.Close()
		return nil, fmt.Errorf("file too large to map: %d bytes", size)
	}

	data, mapped, err := mapFile(file, int(size))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}

	if mapped {
		// Lookups jump around; readahead would only waste page cache
		_ = adviseRandom(data)
	}

	return &Region{
		file:   file,
		data:   data,
		mapped: mapped,
	}, nil
}

// Len returns the size of the region in bytes
func (r *Region) Len() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.data))
}

// Slice returns length bytes starting at offset. The slice aliases the
// mapping and must not be used after Close.
func (r *Region) Slice(offset, length int64) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.data == nil {
		return nil, fmt.Errorf("region is closed")
	}
	size := int64(len(r.data))
	if offset < 0 || length < 0 || offset+length > size {
		return nil, fmt.Errorf("range [%d, %d) out of bounds [0, %d)", offset, offset+length, size)
	}
	return r.data[offset : offset+length], nil
}

// Uint64At decodes the big-endian uint64 stored at offset
func (r *Region) Uint64At(offset int64) (uint64, error) {
	b, err := r.Slice(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Close unmaps the file and closes it
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error

	if r.data != nil {
		if r.mapped {
			err = unmap(r.data)
		}
		r.data = nil
	}

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}

	return err
}

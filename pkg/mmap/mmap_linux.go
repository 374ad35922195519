//go:build linux
// +build linux

package mmap

import (
	"os"
	"syscall"
)

// mapFile wraps the mmap system call
func mapFile(f *os.File, length int) ([]byte, bool, error) {
	data, err := syscall.Mmap(int(f.Fd()), 0, length, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// unmap wraps the munmap system call
func unmap(b []byte) error {
	return syscall.Munmap(b)
}

// adviseRandom wraps madvise(MADV_RANDOM)
func adviseRandom(b []byte) error {
	return syscall.Madvise(b, syscall.MADV_RANDOM)
}

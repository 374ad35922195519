//go:build darwin
// +build darwin

package mmap

import (
	"os"
	"syscall"
	"unsafe"
)

// madvRandom is MADV_RANDOM from <sys/mman.h>
const madvRandom = 1

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

// adviseRandom wraps the madvise system call
func adviseRandom(b []byte) error {
	// On macOS, we need to use the madvise system call directly
	_, _, err := syscall.Syscall(syscall.SYS_MADVISE, uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)), uintptr(madvRandom))
	if err != 0 {
		return err
	}
	return nil
}

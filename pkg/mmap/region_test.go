package mmap

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "region.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRegionReads(t *testing.T) {
	data := make([]byte, 24)
	binary.BigEndian.PutUint64(data[0:], 7)
	binary.BigEndian.PutUint64(data[8:], 1<<40)
	binary.BigEndian.PutUint64(data[16:], 2)

	r, err := Open(writeFile(t, data))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, int64(24), r.Len())

	v, err := r.Uint64At(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), v)

	v, err = r.Uint64At(16)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	b, err := r.Slice(0, 8)
	require.NoError(t, err)
	assert.Equal(t, data[:8], b)
}

func TestRegionBounds(t *testing.T) {
	r, err := Open(writeFile(t, make([]byte, 10)))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Uint64At(5)
	assert.Error(t, err)
	_, err = r.Slice(-1, 2)
	assert.Error(t, err)
	_, err = r.Slice(0, 11)
	assert.Error(t, err)
}

func TestRegionEmptyFile(t *testing.T) {
	_, err := Open(writeFile(t, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestRegionMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRegionClosed(t *testing.T) {
	r, err := Open(writeFile(t, make([]byte, 8)))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.Uint64At(0)
	assert.Error(t, err)
	assert.NoError(t, r.Close())
}

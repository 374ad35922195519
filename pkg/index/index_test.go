package index

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/csvcount/pkg/csvio"
	"github.com/ajitpratap0/csvcount/pkg/errors"
)

const sample = "name,age\nalice,30\n\"bob, jr\",41\ncarol,52\n"

func rawDialect() csvio.Dialect {
	d := csvio.DefaultDialect()
	d.HasHeaders = false
	return d
}

func writeData(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func createIndex(t *testing.T, dataPath string) uint64 {
	t.Helper()
	f, err := os.Open(dataPath)
	require.NoError(t, err)
	r := csvio.NewReader(f, rawDialect())
	defer r.Close()

	n, err := Create(dataPath, r)
	require.NoError(t, err)
	return n
}

func TestWriteLayout(t *testing.T) {
	var buf bytes.Buffer
	r := csvio.NewReader(io.NopCloser(strings.NewReader(sample)), rawDialect())

	n, err := Write(r, &buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	b := buf.Bytes()
	require.Len(t, b, 5*8)
	offsets := []uint64{0, 9, 18, 31}
	for i, want := range offsets {
		assert.Equal(t, want, binary.BigEndian.Uint64(b[i*8:]), "offset %d", i)
	}
	assert.Equal(t, uint64(4), binary.BigEndian.Uint64(b[32:]))
}

func TestProbeAbsent(t *testing.T) {
	h, err := Probe(writeData(t, sample), true)
	assert.NoError(t, err)
	assert.Nil(t, h)
}

func TestProbePresent(t *testing.T) {
	dataPath := writeData(t, sample)
	assert.Equal(t, uint64(4), createIndex(t, dataPath))

	h, err := Probe(dataPath, true)
	require.NoError(t, err)
	require.NotNil(t, h)
	defer h.Close()

	assert.Equal(t, uint64(3), h.Count())
	assert.Equal(t, uint64(4), h.Len())
	assert.Equal(t, PathFor(dataPath), h.Path())

	off, err := h.Offset(2)
	require.NoError(t, err)
	data, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data[off:]), "\"bob, jr\""))

	_, err = h.Offset(4)
	assert.Error(t, err)
}

func TestProbeWithoutHeaders(t *testing.T) {
	dataPath := writeData(t, sample)
	createIndex(t, dataPath)

	h, err := Probe(dataPath, false)
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, uint64(4), h.Count())
}

func TestProbeStale(t *testing.T) {
	dataPath := writeData(t, sample)
	createIndex(t, dataPath)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(dataPath, later, later))

	h, err := Probe(dataPath, true)
	assert.Nil(t, h)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIndexUnavailable))
	assert.Contains(t, err.Error(), "stale")
}

func TestProbeCorrupt(t *testing.T) {
	tests := map[string][]byte{
		"empty":          {},
		"not aligned":    make([]byte, 13),
		"wrong trailer":  append(make([]byte, 16), 0, 0, 0, 0, 0, 0, 0, 9),
		"trailer too big": func() []byte {
			b := make([]byte, 8)
			binary.BigEndian.PutUint64(b, 1)
			return b
		}(),
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dataPath := writeData(t, sample)
			require.NoError(t, os.WriteFile(PathFor(dataPath), content, 0o600))
			past := time.Now().Add(-time.Hour)
			require.NoError(t, os.Chtimes(dataPath, past, past))

			h, err := Probe(dataPath, true)
			assert.Nil(t, h)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeIndexUnavailable))
		})
	}
}

func TestCreateReplacesExistingIndex(t *testing.T) {
	dataPath := writeData(t, "a\n1\n")
	assert.Equal(t, uint64(2), createIndex(t, dataPath))

	require.NoError(t, os.WriteFile(dataPath, []byte(sample), 0o600))
	assert.Equal(t, uint64(4), createIndex(t, dataPath))

	entries, err := os.ReadDir(filepath.Dir(dataPath))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary index files must not be left behind")
}

func TestWriteFailsOnMalformedRecord(t *testing.T) {
	r := csvio.NewReader(io.NopCloser(strings.NewReader("a,b\n1,2,3\n")), rawDialect())
	_, err := Write(r, io.Discard)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedRecord))
}

func TestWriteOffsetsSkipBlankLines(t *testing.T) {
	var buf bytes.Buffer
	data := "a,b\n\n\r\n\"c\",d\n"
	r := csvio.NewReader(io.NopCloser(strings.NewReader(data)), rawDialect())

	n, err := Write(r, &buf)
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	second := binary.BigEndian.Uint64(buf.Bytes()[8:])
	assert.Equal(t, uint64(7), second)
	assert.True(t, strings.HasPrefix(data[second:], "\"c\""))
}

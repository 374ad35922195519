package testutil

import (
	"compress/gzip"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCSV(t *testing.T) {
	data := GenerateCSV(4)
	lines := strings.Split(strings.TrimSuffix(data, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "id,name,value", lines[0])
	assert.Equal(t, `0,"record, 0",0.00`, lines[1])
	assert.Equal(t, "1,record_1,1.23", lines[2])
}

func TestWriteGzip(t *testing.T) {
	path := WriteGzip(t, "data.csv.gz", "a,b\n")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

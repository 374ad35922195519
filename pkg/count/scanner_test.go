package count

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/csvcount/pkg/csvio"
	"github.com/ajitpratap0/csvcount/pkg/errors"
)

func reader(input string, d csvio.Dialect) csvio.Reader {
	return csvio.NewReader(io.NopCloser(strings.NewReader(input)), d)
}

func widthDialect() csvio.Dialect {
	d := csvio.DefaultDialect()
	d.HasHeaders = false
	d.Quoting = false
	d.Flexible = true
	return d
}

func TestScanWidthUsesFirstRecordBaseline(t *testing.T) {
	n, w, err := Scan(reader("name,age\na,1\nbb,22\n", widthDialect()), true)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	assert.Equal(t, 9, w)
}

func TestScanWidthWiderLaterRecord(t *testing.T) {
	n, w, err := Scan(reader("a,b\nlonger,value\n", widthDialect()), true)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	// widest record plus the first record's single delimiter
	assert.Equal(t, len("longer,value")+1, w)
}

func TestScanWidthSingleField(t *testing.T) {
	_, w, err := Scan(reader("abc\nde\n", widthDialect()), true)
	require.NoError(t, err)
	assert.Equal(t, 3, w)
}

func TestScanEmpty(t *testing.T) {
	for _, width := range []bool{true, false} {
		d := csvio.DefaultDialect()
		n, w, err := Scan(reader("name,age\n", d), width)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, w)

		n, w, err = Scan(reader("", widthDialect()), width)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, w)
	}
}

func TestScanCountOnlyReportsNoWidth(t *testing.T) {
	n, w, err := Scan(reader("h\n1\n2\n3\n", csvio.DefaultDialect()), false)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	assert.Zero(t, w)
}

func TestScanStrictMismatchIsMalformed(t *testing.T) {
	_, _, err := Scan(reader("a,b\n1,2\n3\n", csvio.DefaultDialect()), false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedRecord))
	assert.True(t, errors.IsFatal(err))
}

func TestScanFlexibleMismatch(t *testing.T) {
	d := csvio.DefaultDialect()
	d.Flexible = true
	n, _, err := Scan(reader("a,b\n1,2\n3\n4,5,6\n", d), false)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

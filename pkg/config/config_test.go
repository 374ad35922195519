package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/csvcount/pkg/compression"
	"github.com/ajitpratap0/csvcount/pkg/csvio"
	"github.com/ajitpratap0/csvcount/pkg/errors"
	"github.com/ajitpratap0/csvcount/pkg/index"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDelimiterForPath(t *testing.T) {
	assert.Equal(t, byte(','), DelimiterForPath("a.csv"))
	assert.Equal(t, byte('\t'), DelimiterForPath("a.TSV"))
	assert.Equal(t, byte('\t'), DelimiterForPath("a.tab.gz"))
	assert.Equal(t, byte(';'), DelimiterForPath("a.ssv.lz4"))
	assert.Equal(t, byte(','), DelimiterForPath("a"))
}

func TestNewSourceConfigOptions(t *testing.T) {
	src, err := NewSourceConfig("data.tsv",
		WithDelimiter('|'),
		WithNoHeaders(true),
		WithFlexible(true),
		WithQuoting(false),
		WithComment('#'),
	)
	require.NoError(t, err)

	d := src.Dialect()
	assert.Equal(t, byte('|'), d.Delimiter)
	assert.False(t, d.HasHeaders)
	assert.True(t, d.Flexible)
	assert.False(t, d.Quoting)
	assert.Equal(t, byte('#'), d.Comment)

	path, ok := src.Path()
	assert.True(t, ok)
	assert.Equal(t, "data.tsv", path)
	assert.False(t, src.IsStdin())
}

func TestNewSourceConfigRejectsBadDialect(t *testing.T) {
	_, err := NewSourceConfig("data.csv", WithDelimiter('"'))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestWithDialectReturnsCopy(t *testing.T) {
	src, err := NewSourceConfig("data.csv")
	require.NoError(t, err)

	d := src.Dialect()
	d.Flexible = true
	changed := src.WithDialect(d)

	assert.False(t, src.Dialect().Flexible)
	assert.True(t, changed.Dialect().Flexible)
}

func TestOpenMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")
	src, err := NewSourceConfig(missing)
	require.NoError(t, err)

	_, err = src.Open()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSourceNotFound))
	assert.Contains(t, err.Error(), missing)
}

func TestOpenStdin(t *testing.T) {
	src, err := NewSourceConfig("", WithStdin(strings.NewReader("a\n1\n")))
	require.NoError(t, err)

	_, ok := src.Path()
	assert.False(t, ok)
	assert.False(t, src.AcceleratedUnsupported())

	rc, err := src.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))
	require.NoError(t, rc.Close())

	h, err := src.ProbeIndex()
	assert.NoError(t, err)
	assert.Nil(t, h)
}

func TestOpenCompressed(t *testing.T) {
	var buf bytes.Buffer
	w, err := compression.NewWriter(compression.Snappy, &buf)
	require.NoError(t, err)
	_, err = w.Write([]byte("a\tb\n1\t2\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	src, err := NewSourceConfig(writeFile(t, "data.tsv.sz", buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, src.AcceleratedUnsupported())

	r, err := src.OpenReader(src.Dialect())
	require.NoError(t, err)
	defer r.Close()

	n := 0
	for {
		ok, err := r.Read(csvio.NewRecord())
		require.NoError(t, err)
		if !ok {
			break
		}
		n++
	}
	assert.Equal(t, 1, n)

	_, err = src.BuildIndex()
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestBuildAndProbeIndex(t *testing.T) {
	src, err := NewSourceConfig(writeFile(t, "data.csv", []byte("h\n1\n2\n3\n")))
	require.NoError(t, err)

	h, err := src.ProbeIndex()
	require.NoError(t, err)
	assert.Nil(t, h)

	n, err := src.BuildIndex()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	h, err = src.ProbeIndex()
	require.NoError(t, err)
	require.NotNil(t, h)
	defer h.Close()
	assert.Equal(t, uint64(3), h.Count())

	path, _ := src.Path()
	assert.Equal(t, index.PathFor(path), h.Path())
}

func TestBuildIndexStdin(t *testing.T) {
	src, err := NewSourceConfig("-", WithStdin(strings.NewReader("")))
	require.NoError(t, err)
	_, err = src.BuildIndex()
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]byte{",": ',', ";": ';', "tab": '\t', `\t`: '\t', "\t": '\t', "|": '|'} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "ab", "§"} {
		_, err := ParseDelimiter(in)
		assert.Error(t, err, in)
	}
}

func TestProfileValidateAndOptions(t *testing.T) {
	p := NewProfile()
	require.NoError(t, p.Validate())

	p.Source.Delimiter = "tab"
	p.Source.Comment = "#"
	p.Source.NoHeaders = true
	require.NoError(t, p.Validate())

	opts, err := p.SourceOptions()
	require.NoError(t, err)
	src, err := NewSourceConfig("data.csv", opts...)
	require.NoError(t, err)
	assert.Equal(t, byte('\t'), src.Dialect().Delimiter)
	assert.Equal(t, byte('#'), src.Dialect().Comment)
	assert.False(t, src.Dialect().HasHeaders)

	p.Source.Delimiter = "::"
	assert.Error(t, p.Validate())

	p = NewProfile()
	p.Engine.Threads = -1
	assert.Error(t, p.Validate())

	p = NewProfile()
	p.Observability.LogFormat = "xml"
	assert.Error(t, p.Validate())
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("CSVCOUNT_TEST_A", "x")
	assert.Equal(t, "x-y", substituteEnvVars("${CSVCOUNT_TEST_A}-y"))
	assert.Equal(t, "-", substituteEnvVars("${CSVCOUNT_TEST_UNSET}-"))
	assert.Equal(t, "${open", substituteEnvVars("${open"))
}

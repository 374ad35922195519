//go:build cgo && ((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64)))

package columnar

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/csvcount/pkg/errors"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func plan(path string) Plan {
	return Plan{
		Path:          path,
		Delimiter:     ',',
		HasHeaders:    true,
		Threads:       2,
		Optimizations: DefaultOptimizations(),
	}
}

func TestDuckDBCount(t *testing.T) {
	agg := NewDuckDB(zaptest.NewLogger(t))
	require.True(t, agg.Available())

	out, err := agg.Count(context.Background(), plan(writeCSV(t, "name,age\nalice,30\n\"bob, jr\",41\ncarol,52\n")))
	require.NoError(t, err)
	assert.Equal(t, Counted, out.Kind)
	assert.Equal(t, uint64(3), out.Count)
}

func TestDuckDBCountWithoutHeaders(t *testing.T) {
	p := plan(writeCSV(t, "a,1\nb,2\n"))
	p.HasHeaders = false
	p.LowMemory = true

	out, err := NewDuckDB(nil).Count(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out.Count)
}

func TestDuckDBEmptyFile(t *testing.T) {
	out, err := NewDuckDB(nil).Count(context.Background(), plan(writeCSV(t, "")))
	require.NoError(t, err)
	assert.Equal(t, EmptyResult, out.Kind)
	assert.Equal(t, ReasonEmptyFile, out.Reason)
}

func TestDuckDBMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.csv")
	_, err := NewDuckDB(nil).Count(context.Background(), plan(missing))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSourceNotFound))
	assert.Contains(t, err.Error(), missing)
}

func TestDuckDBSingleColumnDefersToStream(t *testing.T) {
	out, err := NewDuckDB(nil).Count(context.Background(), plan(writeCSV(t, "a\n1\n\n2\n")))
	require.NoError(t, err)
	assert.Equal(t, EmptyResult, out.Kind)
	assert.Equal(t, ReasonSingleColumn, out.Reason)
}

func TestDuckDBRejectsBackslashEscape(t *testing.T) {
	_, err := NewDuckDB(nil).Count(context.Background(), plan(writeCSV(t, "a,b\n\"x\\\"\",2\n3,4\n")))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAcceleratedPlan))
}

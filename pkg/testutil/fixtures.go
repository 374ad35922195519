package testutil

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// WriteFile writes content to name inside a fresh temporary directory
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// WriteGzip writes content gzip-compressed to name inside a fresh
// temporary directory
func WriteGzip(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// Backdate moves path's modification time an hour into the past, so an
// index written afterwards is fresh
func Backdate(t *testing.T, path string) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))
}

// GenerateCSV returns a header line and records data rows. Every third
// row has a quoted field holding the delimiter.
func GenerateCSV(records int) string {
	var b strings.Builder
	b.WriteString("id,name,value\n")
	for i := 0; i < records; i++ {
		name := fmt.Sprintf("record_%d", i)
		if i%3 == 0 {
			name = fmt.Sprintf("\"record, %d\"", i)
		}
		fmt.Fprintf(&b, "%d,%s,%.2f\n", i, name, float64(i)*1.23)
	}
	return b.String()
}

// FixtureSuite is a testify suite owning a temporary directory for data files
type FixtureSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	tempDir string
}

// SetupTest runs before each test in the suite
func (s *FixtureSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), time.Minute)
	s.tempDir = s.T().TempDir()
}

// TearDownTest runs after each test in the suite
func (s *FixtureSuite) TearDownTest() {
	s.cancel()
}

// Context returns the test context
func (s *FixtureSuite) Context() context.Context {
	return s.ctx
}

// TempDir returns the temporary directory path
func (s *FixtureSuite) TempDir() string {
	return s.tempDir
}

// CreateTempFile creates a file with content in the suite's directory
func (s *FixtureSuite) CreateTempFile(name string, content string) string {
	path := filepath.Join(s.tempDir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

// AssertNoTempFiles fails when dir holds any entry
func (s *FixtureSuite) AssertNoTempFiles(dir string) {
	entries, err := os.ReadDir(dir)
	s.Require().NoError(err)
	s.Empty(entries, "temporary files left behind")
}

package columnar

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csverrors "github.com/ajitpratap0/csvcount/pkg/errors"
)

func TestMaterialize(t *testing.T) {
	dir := t.TempDir()
	tf, err := Materialize(strings.NewReader("a,b\n1,2\n"), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(tf.Path()))
	assert.Equal(t, ".csv", filepath.Ext(tf.Path()))
	assert.Equal(t, int64(8), tf.Size())

	rc, err := tf.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "a,b\n1,2\n", string(data))

	require.NoError(t, tf.Remove())
	_, err = os.Stat(tf.Path())
	assert.True(t, os.IsNotExist(err))

	// second removal is harmless
	assert.NoError(t, tf.Remove())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestMaterializeFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := Materialize(failingReader{}, dir)
	require.Error(t, err)
	assert.True(t, csverrors.IsType(err, csverrors.ErrorTypeFile))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoveFailureIsCleanupError(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "child"), nil, 0o600))

	// a non-empty directory cannot be removed with os.Remove
	tf := &TempFile{path: sub}
	err := tf.Remove()
	require.Error(t, err)
	assert.True(t, csverrors.IsType(err, csverrors.ErrorTypeTempFileCleanup))
	assert.False(t, csverrors.IsFatal(err))
}

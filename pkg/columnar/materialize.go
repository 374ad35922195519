package columnar

import (
	"io"
	"os"

	"github.com/ajitpratap0/csvcount/pkg/errors"
)

const tempPattern = "csvcount-*.csv"

// TempFile is a stream copied to disk so it can be read more than once
type TempFile struct {
	path  string
	bytes int64
}

// Materialize copies r into a new file in dir (os.TempDir when empty).
// The file is synced and closed before Materialize returns. On failure
// no file is left behind.
func Materialize(r io.Reader, dir string) (*TempFile, error) {
	f, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create temporary file").
			WithDetail("dir", dir)
	}
	tf := &TempFile{path: f.Name()}

	n, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tf.path)
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to materialize standard input").
			WithDetail("path", tf.path)
	}

	tf.bytes = n
	return tf, nil
}

// Path returns the file's location
func (t *TempFile) Path() string { return t.path }

// Size returns the number of bytes copied
func (t *TempFile) Size() int64 { return t.bytes }

// Open opens the file for reading
func (t *TempFile) Open() (io.ReadCloser, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open temporary file").
			WithDetail("path", t.path)
	}
	return f, nil
}

// Remove deletes the file. Removing an already removed file is not an error.
func (t *TempFile) Remove() error {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrorTypeTempFileCleanup, "failed to remove temporary file").
			WithDetail("path", t.path)
	}
	return nil
}

package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
)

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.clf")

	w, err := NewWriter(path)
	require.NoError(t, err)

	_, err = w.Write([]byte("column"))
	require.NoError(t, err)
	_, err = w.Write([]byte("file"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), w.Size())
	require.NoError(t, w.Close())

	r, err := NewReader(path)
	require.NoError(t, err)

	defer func() { _ = r.Close() }()

	assert.Equal(t, int64(10), r.Size())

	p := make([]byte, 4)
	n, err := r.ReadAt(p, 6)
	require.NoError(t, err)
	assert.Equal(t, "file", string(p[:n]))
}

func TestNewReader_Missing(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

//go:build linux

package platform

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy_TransfersWholeFile(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("sendfile test payload "), 4096)

	srcPath := filepath.Join(dir, "src.bin")
	require.NoError(t, os.WriteFile(srcPath, data, 0o644))

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()

	dstPath := filepath.Join(dir, "dst.bin")
	dst, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer dst.Close()

	n, err := Copy(dst, src, int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopy_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(srcPath, nil, 0o644))

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(dir, "out"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer dst.Close()

	n, err := Copy(dst, src, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported())
}

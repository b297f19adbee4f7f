package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dircp/internal/platform"
)

func TestSendfile_Prerequisites(t *testing.T) {
	missing := NewSendfile(0, testLogger()).ValidatePrerequisites()
	if platform.Supported() {
		assert.Empty(t, missing)
	} else {
		require.Len(t, missing, 1)
		assert.Contains(t, missing[0], "sendfile")
	}
}

func TestSendfile_LargeFile(t *testing.T) {
	if !platform.Supported() {
		t.Skip("no zero-copy primitive on this host")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	// Bigger than the strategy's buffer so the sendfile loop iterates.
	writeTree(t, src, map[string]string{
		"big.bin":   strings.Repeat("0123456789abcdef", 16*1024), // 256 KiB
		"small.txt": "small",
	})

	result := NewSendfile(64, testLogger()).CopyDirectory(context.Background(), src, dst, false)

	require.True(t, result.Success, "err: %s", result.Err)
	assert.Equal(t, int64(16*16*1024+5), result.BytesCopied)
	requireSameTree(t, src, dst)
}

func TestSendfile_RewindAndRetry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.txt")
	dst := filepath.Join(dir, "out.txt")
	writeTree(t, dir, map[string]string{"in.txt": "retry me please"})

	strategy := NewSendfile(4, testLogger())

	in, err := os.Open(src)
	require.NoError(t, err)
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer out.Close()

	// Poison the destination as a failed sendfile attempt would.
	_, err = out.WriteString("partial garbage")
	require.NoError(t, err)

	n, err := strategy.rewindAndRetry(in, out, make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(len("retry me please")), n)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "retry me please", string(data))
}

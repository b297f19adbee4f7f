package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two top-level directory components, 100 and 50 bytes, no root files.
func TestPipeline_ComponentScenario(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeTree(t, src, map[string]string{
		"alpha/data.bin":  strings.Repeat("a", 100),
		"beta/one.txt":    strings.Repeat("b", 20),
		"beta/two/so.txt": strings.Repeat("c", 30),
	})

	result := NewPipeline(4, testLogger()).CopyDirectory(context.Background(), src, dst, false)

	require.True(t, result.Success, "err: %s", result.Err)
	assert.Equal(t, int64(150), result.BytesCopied)
	assert.Equal(t, "Pipeline", result.StrategyUsed)
	requireSameTree(t, src, dst)
}

func TestPipeline_RootFilesAreComponents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeTree(t, src, map[string]string{
		"loose.txt":     "loose root file",
		"comp/body.txt": "component body",
	})

	result := NewPipeline(2, testLogger()).CopyDirectory(context.Background(), src, dst, false)

	require.True(t, result.Success, "err: %s", result.Err)
	assert.Equal(t, int64(len("loose root file")+len("component body")), result.BytesCopied)
	requireSameTree(t, src, dst)
}

func TestPipeline_EmptySourceFallsBack(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.MkdirAll(src, 0o755))

	result := NewPipeline(4, testLogger()).CopyDirectory(context.Background(), src, dst, false)

	require.True(t, result.Success, "err: %s", result.Err)
	assert.Equal(t, "Pipeline (fallback)", result.StrategyUsed)
	assert.Zero(t, result.BytesCopied)
	assert.DirExists(t, dst)
}

func TestPipeline_OnlyGitFallsBack(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeTree(t, src, map[string]string{".git/config": "cfg"})

	result := NewPipeline(4, testLogger()).CopyDirectory(context.Background(), src, dst, true)

	require.True(t, result.Success, "err: %s", result.Err)
	assert.Equal(t, "Pipeline (fallback)", result.StrategyUsed)
	assert.NoDirExists(t, filepath.Join(dst, ".git"))
}

func TestPipeline_PerComponentFailureTolerated(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("mode-based read denial is ineffective as root")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeTree(t, src, map[string]string{
		"good/a.txt": "good bytes",
		"bad/b.txt":  "hidden",
	})
	require.NoError(t, os.Chmod(filepath.Join(src, "bad", "b.txt"), 0o000))
	t.Cleanup(func() {
		_ = os.Chmod(filepath.Join(src, "bad", "b.txt"), 0o644)
	})

	result := NewPipeline(4, testLogger()).CopyDirectory(context.Background(), src, dst, false)

	require.True(t, result.Success, "err: %s", result.Err)
	assert.Equal(t, int64(len("good bytes")), result.BytesCopied)
	assert.FileExists(t, filepath.Join(dst, "good", "a.txt"))
}

package engine

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTree materializes files under root; keys are slash-separated relative
// paths, values are file contents. Parent directories are created as needed.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func hashFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	h := blake3.Sum256(data)
	return h[:]
}

// listTree returns the sorted relative paths of all regular files under root.
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var rels []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			rels = append(rels, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(rels)
	return rels
}

// requireSameTree asserts dst holds exactly the same regular files as src,
// with identical contents.
func requireSameTree(t *testing.T, src, dst string) {
	t.Helper()
	srcFiles := listTree(t, src)
	require.Equal(t, srcFiles, listTree(t, dst))
	for _, rel := range srcFiles {
		require.Equal(t,
			hashFile(t, filepath.Join(src, rel)),
			hashFile(t, filepath.Join(dst, rel)),
			"content mismatch for %s", rel)
	}
}

package bench

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dircp/internal/engine"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunner() *Runner {
	service := engine.NewService(engine.ServiceOptions{
		DefaultKind: engine.KindBaseline,
		BufferKB:    64,
		MaxWorkers:  2,
	}, testLogger())
	return NewRunner(service, 64, testLogger())
}

func buildWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "workspace")
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	require.NoError(t, os.MkdirAll(root, 0o755))
	return root
}

var benchCategories = []string{"traversal", "copy_strategies", "parallel_workers", "pipeline"}

func TestComprehensive_AlwaysReturnsAllCategories(t *testing.T) {
	workspaces := map[string]map[string]string{
		"empty":      {},
		"singleFile": {"only.txt": "just one file"},
		"deeplyNested": {
			"a/b/c/d/e/f/g/deep.txt": "deep",
			"a/b/c/shallow.txt":      "shallow",
			"top.txt":                "top",
		},
	}

	for name, files := range workspaces {
		t.Run(name, func(t *testing.T) {
			workspace := buildWorkspace(t, files)

			results := testRunner().Comprehensive(context.Background(), workspace, "", false)

			for _, category := range benchCategories {
				rs, ok := results[category]
				require.True(t, ok, "category %s missing", category)
				assert.NotNil(t, rs, "category %s must be a (possibly short) list", category)
			}
		})
	}
}

func TestComprehensive_MissingWorkspaceStillCompletes(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	results := testRunner().Comprehensive(context.Background(), missing, "", false)

	for _, category := range benchCategories {
		_, ok := results[category]
		assert.True(t, ok, "category %s missing", category)
	}
	// Traversal trials must carry the error rather than vanish.
	require.NotEmpty(t, results["traversal"])
	assert.NotEmpty(t, results["traversal"][0].Errors)
}

func TestComprehensive_WritesReport(t *testing.T) {
	workspace := buildWorkspace(t, map[string]string{"f.txt": "data"})
	outputDir := t.TempDir()

	testRunner().Comprehensive(context.Background(), workspace, outputDir, false)

	data, err := os.ReadFile(filepath.Join(outputDir, "benchmark_report.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "categories:")
	assert.Contains(t, string(data), "traversal")
}

func TestTraversalBenchmark_TrialCount(t *testing.T) {
	workspace := buildWorkspace(t, map[string]string{"a.txt": "abc", "sub/b.txt": "defg"})

	results := testRunner().TraversalBenchmark(workspace, 2)

	assert.Len(t, results, 4) // 2 methods x 2 iterations
	for _, r := range results {
		assert.Equal(t, "traversal", r.Operation)
		assert.Empty(t, r.Errors)
		assert.Equal(t, int64(2), r.FileCount)
		assert.Equal(t, int64(7), r.TotalSize)
	}
}

func TestStrategyBenchmark_CleansUpDestinations(t *testing.T) {
	workspace := buildWorkspace(t, map[string]string{"a.txt": "abcde"})
	dstBase := t.TempDir()

	runner := testRunner()
	results := runner.StrategyBenchmark(context.Background(), workspace, dstBase, runner.service.AvailableKinds())

	require.Len(t, results, len(runner.service.AvailableKinds()))
	for _, r := range results {
		assert.Equal(t, "strategy_copy", r.Operation)
		assert.Empty(t, r.Errors)
		assert.Equal(t, int64(5), r.TotalSize)
	}

	// Unconditional cleanup: nothing survives under dstBase.
	entries, err := os.ReadDir(dstBase)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStrategyBenchmark_BadSourceKeepsGoing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing-src")
	dstBase := t.TempDir()

	runner := testRunner()
	results := runner.StrategyBenchmark(context.Background(), missing, dstBase, []engine.Kind{engine.KindBaseline, engine.KindBuffered})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEmpty(t, r.Errors)
	}
}

func TestWorkerScalingBenchmark(t *testing.T) {
	workspace := buildWorkspace(t, map[string]string{
		"a.txt": "aaaa", "b.txt": "bbbb", "sub/c.txt": "cccc",
	})
	dstBase := t.TempDir()

	results := testRunner().WorkerScalingBenchmark(context.Background(), workspace, dstBase, []int{1, 2, 4})

	require.Len(t, results, 3)
	assert.Equal(t, "parallel_1_workers", results[0].Method)
	assert.Equal(t, "parallel_4_workers", results[2].Method)
	for _, r := range results {
		assert.Equal(t, int64(12), r.TotalSize)
		assert.Empty(t, r.Errors)
	}
}

func TestPipelineBenchmark_Phases(t *testing.T) {
	workspace := buildWorkspace(t, map[string]string{
		"alpha/data.bin": strings.Repeat("a", 100),
		"beta/file.txt":  strings.Repeat("b", 50),
	})
	cacheDir := filepath.Join(t.TempDir(), "cache")

	results := testRunner().PipelineBenchmark(context.Background(), workspace, cacheDir, []string{"alpha", "beta"})

	require.Len(t, results, 2)
	sizing, copying := results[0], results[1]

	assert.Equal(t, "size_discovery", sizing.Method)
	assert.Equal(t, int64(150), sizing.TotalSize)
	assert.Equal(t, int64(2), sizing.FileCount)

	assert.Equal(t, "parallel_copy", copying.Method)
	assert.Equal(t, int64(150), copying.TotalSize)
	assert.FileExists(t, filepath.Join(cacheDir, "alpha", "data.bin"))
	assert.FileExists(t, filepath.Join(cacheDir, "beta", "file.txt"))
}

func TestPipelineBenchmark_MissingComponent(t *testing.T) {
	workspace := buildWorkspace(t, map[string]string{"alpha/a.txt": "abc"})
	cacheDir := filepath.Join(t.TempDir(), "cache")

	results := testRunner().PipelineBenchmark(context.Background(), workspace, cacheDir, []string{"alpha", "ghost"})

	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].Errors)
	assert.NotEmpty(t, results[1].Errors)
	assert.Equal(t, int64(3), results[1].TotalSize)
}

func TestResult_SpeedSummary(t *testing.T) {
	assert.Equal(t, "512.00 MB/s", Result{ThroughputMBps: 512}.SpeedSummary())
	assert.Equal(t, "2.50 GB/s", Result{ThroughputMBps: 2500}.SpeedSummary())
	assert.Equal(t, "0.00 MB/s", Result{}.SpeedSummary())
}

func TestGuard_RecoversPanics(t *testing.T) {
	runner := testRunner()

	results := runner.guard("boom", func() []Result {
		panic("category exploded")
	})

	require.Len(t, results, 1)
	assert.Equal(t, "boom", results[0].Operation)
	assert.Contains(t, results[0].Errors[0], "category exploded")
}

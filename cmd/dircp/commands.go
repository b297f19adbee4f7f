package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dircp/internal/bench"
	"dircp/internal/engine"
)

func newCopyCmd(flags *appFlags) *cobra.Command {
	var (
		strategy   string
		workers    int
		bufferKB   int
		includeGit bool
	)

	cmd := &cobra.Command{
		Use:   "copy SRC DST",
		Short: "Copy a directory tree with the selected strategy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			service := newService(flags, strategy, workers, bufferKB)
			result := service.CopyDirectory(ctx, args[0], args[1], !includeGit, "")

			printResult(cmd, result)
			if !result.Success {
				return fmt.Errorf("copy failed: %s", result.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "strategy: baseline, buffered, sendfile, parallel, pipeline")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker pool size for parallel strategies")
	cmd.Flags().IntVar(&bufferKB, "buffer-kb", 0, "copy buffer size in KiB")
	cmd.Flags().BoolVar(&includeGit, "include-git", false, "copy .git entries instead of skipping them")
	return cmd
}

func printResult(cmd *cobra.Command, r engine.Result) {
	status := "ok"
	if !r.Success {
		status = "failed"
	}
	cmd.Printf("%s  strategy=%s  bytes=%d  elapsed=%s  speed=%.2f MB/s\n",
		status, r.StrategyUsed, r.BytesCopied, r.Elapsed.Round(time.Millisecond), r.SpeedMBps())
}

func newStrategiesCmd(flags *appFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List registered strategies and their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service := newService(flags, "", 0, 0)
			for _, info := range service.Available() {
				marker := " "
				if info.Kind == service.DefaultKind() {
					marker = "*"
				}
				cmd.Printf("%s %-10s %-10s %s\n", marker, info.Kind, info.Name, info.Description)
				if len(info.MissingPrereqs) > 0 {
					cmd.Printf("             missing: %s\n", strings.Join(info.MissingPrereqs, "; "))
				}
			}
			return nil
		},
	}
}

func newBenchCmd(flags *appFlags) *cobra.Command {
	var (
		output   string
		workers  int
		bufferKB int
	)

	cmd := &cobra.Command{
		Use:   "bench WORKSPACE",
		Short: "Benchmark traversal methods and copy strategies against a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			service := newService(flags, "", workers, bufferKB)
			runner := bench.NewRunner(service, bufferKB, slog.Default())

			results := runner.Comprehensive(ctx, args[0], output, flags.verbose)
			for _, category := range []string{"traversal", "copy_strategies", "parallel_workers", "pipeline"} {
				cmd.Printf("%s:\n", category)
				for _, r := range results[category] {
					if len(r.Errors) > 0 {
						cmd.Printf("  %-24s error: %s\n", r.Method, strings.Join(r.Errors, "; "))
						continue
					}
					cmd.Printf("  %-24s %8.3fs  %6d files  %s\n",
						r.Method, r.Duration, r.FileCount, r.SpeedSummary())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for the YAML benchmark report")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker pool size for parallel strategies")
	cmd.Flags().IntVar(&bufferKB, "buffer-kb", 0, "copy buffer size in KiB")
	return cmd
}

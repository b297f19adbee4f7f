package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dircp/internal/config"
	"dircp/internal/engine"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

type appFlags struct {
	configPath string
	verbose    bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	flags := &appFlags{}

	root := &cobra.Command{
		Use:           "dircp",
		Short:         "Directory copies with selectable concurrency and I/O strategies",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default: XDG config dir)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "only log errors")

	root.AddCommand(newCopyCmd(flags))
	root.AddCommand(newStrategiesCmd(flags))
	root.AddCommand(newBenchCmd(flags))
	return root
}

func setupLogging(flags *appFlags) {
	level := slog.LevelInfo
	switch {
	case flags.quiet:
		level = slog.LevelError
	case flags.verbose:
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// newService loads settings and builds the copy service. CLI flags override
// the file; zero flag values mean "use the file or the default".
func newService(flags *appFlags, strategyFlag string, workersFlag, bufferFlag int) *engine.Service {
	settings, err := config.Load(flags.configPath)
	if err != nil {
		slog.Warn("config file unreadable, using defaults", "error", err)
	}
	if workersFlag > 0 {
		settings.MaxWorkers = workersFlag
	}
	if bufferFlag > 0 {
		settings.BufferKB = bufferFlag
	}

	kind, ok := engine.ParseKind(settings.Strategy)
	if !ok {
		kind = engine.KindBaseline
	}
	if strategyFlag != "" {
		if k, ok := engine.ParseKind(strategyFlag); ok {
			kind = k
		} else {
			slog.Warn("unknown strategy flag, using configured default", "strategy", strategyFlag)
		}
	}

	return engine.NewService(engine.ServiceOptions{
		DefaultKind: kind,
		BufferKB:    settings.BufferKB,
		MaxWorkers:  settings.MaxWorkers,
	}, slog.Default())
}

package engine

import (
	"context"
	"log/slog"
)

// ServiceOptions are the validated tunables the service is built with.
type ServiceOptions struct {
	DefaultKind Kind
	BufferKB    int
	MaxWorkers  int
}

// Service is the single entry point for directory copies. It owns the
// strategy registry, resolves which strategy runs, and substitutes Baseline
// whenever the requested one cannot.
type Service struct {
	strategies  map[Kind]Strategy
	defaultKind Kind
	logger      *slog.Logger
}

// Info describes a registered strategy for introspection.
type Info struct {
	Kind           Kind
	Name           string
	Description    string
	MissingPrereqs []string
	Available      bool
}

// NewService builds the registry: Baseline and Buffered unconditionally,
// Parallel and Pipeline with the configured tunables, and Sendfile only when
// its prerequisites hold right now. The registry is immutable afterward.
func NewService(opts ServiceOptions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	strategies := map[Kind]Strategy{
		KindBaseline: NewBaseline(logger),
		KindBuffered: NewBuffered(opts.BufferKB, logger),
		KindParallel: NewParallel(opts.MaxWorkers, opts.BufferKB, logger),
		KindPipeline: NewPipeline(opts.MaxWorkers, logger),
	}

	sendfile := NewSendfile(opts.BufferKB, logger)
	if missing := sendfile.ValidatePrerequisites(); len(missing) == 0 {
		strategies[KindSendfile] = sendfile
	} else {
		logger.Debug("sendfile strategy not registered", "missing", missing)
	}

	defaultKind := opts.DefaultKind
	if _, ok := strategies[defaultKind]; !ok {
		if defaultKind != "" {
			logger.Warn("default strategy unavailable, using baseline", "strategy", defaultKind)
		}
		defaultKind = KindBaseline
	}

	return &Service{
		strategies:  strategies,
		defaultKind: defaultKind,
		logger:      logger,
	}
}

// DefaultKind returns the kind used when no override is given.
func (s *Service) DefaultKind() Kind { return s.defaultKind }

// CopyDirectory resolves the effective strategy (override when non-empty,
// else the default) and runs it. An unregistered strategy, or one whose
// prerequisites fail at call time, is silently replaced by Baseline; only
// the warning log and Result.StrategyUsed reveal the substitution.
func (s *Service) CopyDirectory(ctx context.Context, src, dst string, excludeGit bool, override Kind) Result {
	kind := s.defaultKind
	if override != "" {
		kind = override
	}

	strategy, ok := s.strategies[kind]
	switch {
	case !ok:
		s.logger.Warn("strategy not registered, falling back to baseline", "strategy", kind)
		strategy = s.strategies[KindBaseline]
	case len(strategy.ValidatePrerequisites()) > 0:
		// Host capabilities can change after construction; re-check per call.
		s.logger.Warn("strategy prerequisites unmet, falling back to baseline",
			"strategy", kind, "missing", strategy.ValidatePrerequisites())
		strategy = s.strategies[KindBaseline]
	default:
		s.logger.Debug("strategy selected", "strategy", kind)
	}

	return strategy.CopyDirectory(ctx, src, dst, excludeGit)
}

// Available lists registered strategies in registration order.
func (s *Service) Available() []Info {
	var infos []Info
	for _, kind := range Kinds() {
		if info, ok := s.Info(kind); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// AvailableKinds lists the kinds currently registered.
func (s *Service) AvailableKinds() []Kind {
	var kinds []Kind
	for _, kind := range Kinds() {
		if _, ok := s.strategies[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Info returns introspection data for one kind; ok is false when the kind is
// not registered.
func (s *Service) Info(kind Kind) (Info, bool) {
	strategy, ok := s.strategies[kind]
	if !ok {
		return Info{}, false
	}
	missing := strategy.ValidatePrerequisites()
	return Info{
		Kind:           kind,
		Name:           strategy.Name(),
		Description:    strategy.Description(),
		MissingPrereqs: missing,
		Available:      len(missing) == 0,
	}, true
}

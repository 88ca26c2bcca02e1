// Package analyzer implements the signal analyzers: each one examines the
// repository through the repo.Provider and produces a partial,
// confidence-graded finding about one concern. Analyzers never report
// "nothing found" as an error; an empty signal is a valid result.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pipewright/internal/repo"
	"pipewright/internal/types"
)

// Analyzer detects one concern given repository file access.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, provider repo.Provider) (*types.Signal, error)
}

// DefaultTimeout bounds a single analyzer run. A slow analyzer degrades to
// a partial-data warning instead of blocking the whole run.
const DefaultTimeout = 10 * time.Second

// Runner executes a set of analyzers concurrently and joins their results.
type Runner struct {
	analyzers []Analyzer
	timeout   time.Duration
	log       *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTimeout overrides the per-analyzer timeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithAnalyzers replaces the default analyzer set.
func WithAnalyzers(as ...Analyzer) RunnerOption {
	return func(r *Runner) {
		r.analyzers = as
	}
}

// NewRunner builds a Runner with the default analyzer set.
func NewRunner(log *zap.Logger, opts ...RunnerOption) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		analyzers: []Analyzer{
			&ProjectAnalyzer{},
			&DependencyAnalyzer{},
			&CIAnalyzer{},
			&ContainerAnalyzer{},
			&DeploymentAnalyzer{},
		},
		timeout: DefaultTimeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fans the analyzers out against the provider and waits for all of them.
// A failed, panicked, or timed-out analyzer contributes a warning, never an
// aborted run; its fields are treated as absent.
func (r *Runner) Run(ctx context.Context, provider repo.Provider) ([]types.Signal, []types.Warning) {
	signals := make([]*types.Signal, len(r.analyzers))
	errs := make([]error, len(r.analyzers))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range r.analyzers {
		i, a := i, a
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, r.timeout)
			defer cancel()

			start := time.Now()
			sig, err := runOne(actx, a, provider)
			if err != nil {
				r.log.Warn("analyzer failed",
					zap.String("analyzer", a.Name()),
					zap.Duration("elapsed", time.Since(start)),
					zap.Error(err))
				errs[i] = err
				return nil // failure degrades, never aborts the group
			}
			r.log.Debug("analyzer finished",
				zap.String("analyzer", a.Name()),
				zap.Duration("elapsed", time.Since(start)))
			signals[i] = sig
			return nil
		})
	}
	_ = g.Wait()

	var out []types.Signal
	var warnings []types.Warning
	for i, a := range r.analyzers {
		if errs[i] != nil {
			warnings = append(warnings, types.Warning{
				Kind:    types.WarnPartialSignalFailure,
				Message: fmt.Sprintf("analyzer %s: %v", a.Name(), errs[i]),
			})
			continue
		}
		if signals[i] != nil {
			sig := *signals[i]
			sig.Analyzer = a.Name()
			out = append(out, sig)
		}
	}
	return out, warnings
}

// runOne isolates a single analyzer, converting panics into errors so one
// buggy analyzer cannot take down the run.
func runOne(ctx context.Context, a Analyzer, provider repo.Provider) (sig *types.Signal, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			sig = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	sig, err = a.Analyze(ctx, provider)
	if err == nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return sig, err
}

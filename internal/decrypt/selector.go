package decrypt

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
)

// Strategy is one way of recovering a protected document.
type Strategy interface {
	// Name identifies the strategy in outcomes and logs.
	Name() string
	// Decrypt recovers req.Input. Returning ErrNotEncrypted ends the request as a no-op.
	Decrypt(ctx context.Context, req Request) (Result, error)
}

// Selector tries strategies in priority order and stops at the first success.
type Selector struct {
	strategies    []Strategy
	fallback      Strategy
	allowFallback bool
}

// Option configures a Selector.
type Option func(*Selector)

// WithFallback sets the last-resort strategy, used only when allow is true.
func WithFallback(fallback Strategy, allow bool) Option {
	return func(s *Selector) {
		s.fallback = fallback
		s.allowFallback = allow
	}
}

// NewSelector returns a selector over strategies, tried in the given order.
func NewSelector(strategies []Strategy, opts ...Option) *Selector {
	sel := &Selector{
		strategies: strategies,
		fallback:   Identity{},
	}

	for _, opt := range opts {
		opt(sel)
	}

	return sel
}

// Decrypt runs the chain for req. It never panics and never returns an error;
// every failure is reported in the Outcome.
func (s *Selector) Decrypt(ctx context.Context, req Request) Outcome {
	outcome := Outcome{Input: req.Input}

	if err := checkInput(req.Input); err != nil {
		return fail(outcome, err)
	}

	if req.collides() {
		return fail(outcome, fmt.Errorf("%w: artifact paths for %q collide with the input", ErrOutputWriteFailed, req.Input))
	}

	logger := log.WithField("file", req.Input)

	for _, strategy := range s.strategies {
		if err := ctx.Err(); err != nil {
			return fail(outcome, err)
		}

		res, err := run(ctx, strategy, req)

		switch {
		case err == nil:
			logger.WithField("strategy", strategy.Name()).Debug("decrypted")

			return succeed(outcome, Decrypted, strategy.Name(), res)
		case errors.Is(err, ErrNotEncrypted):
			outcome.Kind = NotEncrypted
			outcome.Strategy = strategy.Name()
			outcome.Message = "file is not encrypted, nothing to do"

			return outcome
		default:
			logger.WithField("strategy", strategy.Name()).WithError(err).Debug("strategy did not succeed")

			outcome.Attempts = append(outcome.Attempts, Attempt{Strategy: strategy.Name(), Err: err})
		}
	}

	if s.fallback == nil || !s.allowFallback {
		return fail(outcome, ErrNoStrategy)
	}

	if err := ctx.Err(); err != nil {
		return fail(outcome, err)
	}

	res, err := run(ctx, s.fallback, req)
	if err != nil {
		outcome.Attempts = append(outcome.Attempts, Attempt{Strategy: s.fallback.Name(), Err: err})

		return fail(outcome, err)
	}

	logger.WithField("strategy", s.fallback.Name()).Warn("input copied unchanged")

	return succeed(outcome, Copied, s.fallback.Name(), res)
}

func fail(outcome Outcome, err error) Outcome {
	outcome.Kind = Failed
	outcome.Success = false
	outcome.Err = err
	outcome.Output = ""
	outcome.StatusFile = ""

	if summary := outcome.Summary(); summary != "" {
		outcome.Message = fmt.Sprintf("%v (%s)", err, summary)
	} else {
		outcome.Message = err.Error()
	}

	return outcome
}

func succeed(outcome Outcome, kind Kind, name string, res Result) Outcome {
	outcome.Kind = kind
	outcome.Success = true
	outcome.Strategy = name
	outcome.Message = res.Message
	outcome.Output = res.Output
	outcome.StatusFile = res.StatusFile

	return outcome
}

// run invokes a strategy and turns a panic into an error.
func run(ctx context.Context, strategy Strategy, req Request) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", strategy.Name(), r)
		}
	}()

	return strategy.Decrypt(ctx, req)
}

// checkInput verifies that path is an existing, readable regular file.
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInputNotFound, path, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q is not a regular file", ErrInputNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInputNotFound, path, err)
	}

	return f.Close()
}

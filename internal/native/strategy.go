package native

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/idelchi/docdecrypt/internal/decrypt"
)

// Strategy decrypts through the vendor library installed on the host.
type Strategy struct {
	opts       Options
	loader     Loader
	candidates func() []string
}

// StrategyOption configures a Strategy.
type StrategyOption func(*Strategy)

// WithLoader replaces the platform loader.
func WithLoader(loader Loader) StrategyOption {
	return func(s *Strategy) {
		s.loader = loader
	}
}

// WithCandidates replaces the default search locations.
func WithCandidates(paths ...string) StrategyOption {
	return func(s *Strategy) {
		s.candidates = func() []string { return paths }
	}
}

// New returns a strategy locating the library with opts.
func New(opts Options, options ...StrategyOption) *Strategy {
	s := &Strategy{
		opts:   opts,
		loader: Open,
	}

	s.candidates = func() []string { return Candidates(s.opts) }

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Name implements decrypt.Strategy.
func (s *Strategy) Name() string { return "native" }

// Candidates lists the searched locations.
func (s *Strategy) Candidates() []string {
	return s.candidates()
}

// Locate returns the first location holding the library.
func (s *Strategy) Locate() (string, bool) {
	return Find(s.candidates())
}

// Decrypt implements decrypt.Strategy. The library is not loaded when it cannot be found.
func (s *Strategy) Decrypt(_ context.Context, req decrypt.Request) (decrypt.Result, error) {
	candidates := s.candidates()

	path, ok := Find(candidates)
	if !ok {
		return decrypt.Result{}, fmt.Errorf("%w: library not found in %d locations",
			decrypt.ErrCapabilityUnavailable, len(candidates))
	}

	logger := log.WithFields(log.Fields{"library": path, "file": req.Input})

	lib, err := s.loader(path)
	if err != nil {
		if !errors.Is(err, decrypt.ErrCapabilityUnavailable) {
			err = fmt.Errorf("%w: %w", decrypt.ErrCapabilityUnavailable, err)
		}

		return decrypt.Result{}, err
	}

	logger.Debug("library loaded")

	err = WithSession(lib, func(lib Library) error {
		encrypted, err := lib.IsEncrypted(req.Input)
		if err != nil {
			return fmt.Errorf("%w: checking protection: %w", decrypt.ErrTransformFailed, err)
		}

		if !encrypted {
			return decrypt.ErrNotEncrypted
		}

		ok, err := lib.DecryptFile(req.Input, req.Output)
		if err != nil {
			return fmt.Errorf("%w: %w", decrypt.ErrTransformFailed, err)
		}

		if !ok {
			return fmt.Errorf("%w: library reported failure", decrypt.ErrTransformFailed)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, decrypt.ErrTransformFailed) {
			os.Remove(req.Output) //nolint:errcheck,gosec // best-effort removal of partial output
		}

		return decrypt.Result{}, err
	}

	if _, err := os.Stat(req.Output); err != nil {
		return decrypt.Result{}, fmt.Errorf("%w: library reported success but produced no output: %w",
			decrypt.ErrTransformFailed, err)
	}

	if err := decrypt.WriteStatus(req.StatusFile, decrypt.SuccessStatus(req.Output)); err != nil {
		os.Remove(req.Output) //nolint:errcheck,gosec // output without a status record is incomplete

		return decrypt.Result{}, err
	}

	return decrypt.Result{
		Output:     req.Output,
		StatusFile: req.StatusFile,
		Message:    "decrypted with " + path,
	}, nil
}

// Package logic wires the configuration to the decryption strategies and processes files.
package logic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/docdecrypt/internal/config"
	"github.com/idelchi/docdecrypt/internal/decrypt"
	"github.com/idelchi/docdecrypt/internal/fileutil"
	"github.com/idelchi/docdecrypt/internal/filter"
	"github.com/idelchi/docdecrypt/internal/native"
	"github.com/idelchi/docdecrypt/internal/remote"
)

// ErrFilesFailed is returned by Run when at least one file could not be processed.
var ErrFilesFailed = errors.New("some files could not be decrypted")

// Run is the main logic of the application.
//
//nolint:cyclop // processing pipeline with printer goroutine
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()

	scanned, err := resolveFiles(cfg)
	if err != nil {
		return fmt.Errorf("resolving files: %w", err)
	}

	excluded := scanned - len(cfg.Files)

	if cfg.Dry {
		dryRun(cfg, scanned, excluded, start)

		return nil
	}

	selector, err := newSelector(cfg)
	if err != nil {
		return fmt.Errorf("building strategies: %w", err)
	}

	layout := cfg.Layout()
	notify := newNotifier(cfg.Quiet)

	results := make(chan result, len(cfg.Files))
	printed := make(chan struct{})

	var st stats

	go func() {
		defer close(printed)

		for res := range results {
			notify.result(res)
			st.add(res)
		}
	}()

	group := errgroup.Group{}
	group.SetLimit(cfg.Parallel)

	for _, file := range cfg.Files {
		group.Go(func() error {
			res := result{Outcome: selector.Decrypt(ctx, layout.Request(file))}

			// A service may report an output path that does not exist locally.
			if !res.Failed() && exists(res.Output) {
				n, err := finalize(res.Outcome, cfg.Output.PreserveTimestamps)
				if err != nil {
					log.WithError(err).WithField("output", res.Output).Warn("finalizing output")
				}

				res.size = n
			}

			results <- res

			return nil
		})
	}

	_ = group.Wait()

	close(results)

	<-printed

	if cfg.Stats {
		st.print(scanned, excluded, time.Since(start))
	}

	if st.failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", ErrFilesFailed, st.failed, len(cfg.Files))
	}

	return nil
}

// resolveFiles expands cfg.Files and applies include/exclude filtering.
// Returns the total number of files scanned before filtering.
func resolveFiles(cfg *config.Config) (int, error) {
	includes, err := filter.Merge(cfg.Include, cfg.IncludeFrom)
	if err != nil {
		return 0, fmt.Errorf("loading include patterns: %w", err)
	}

	excludes, err := filter.Merge(cfg.Exclude, cfg.ExcludeFrom)
	if err != nil {
		return 0, fmt.Errorf("loading exclude patterns: %w", err)
	}

	// Never feed our own artifacts back in. A file carrying the status extension
	// would be overwritten by its own status record, so it is skipped as well.
	excludes = append(excludes, "*"+cfg.Output.DecryptedExt, "*"+cfg.Output.StatusExt)

	flt, err := filter.New(includes, excludes)
	if err != nil {
		return 0, fmt.Errorf("compiling patterns: %w", err)
	}

	files, scanned, err := filter.Resolve(cfg.Files, flt)
	if err != nil {
		return scanned, fmt.Errorf("filtering files: %w", err)
	}

	cfg.Files = files

	log.WithFields(log.Fields{"files": len(files), "scanned": scanned}).Debug("resolved files")

	return scanned, nil
}

// newSelector builds the strategy chain: native, then remote, then the identity fallback.
func newSelector(cfg *config.Config) (*decrypt.Selector, error) {
	var strategies []decrypt.Strategy

	if !cfg.Native.Disabled {
		strategies = append(strategies, native.New(nativeOptions(cfg)))
	}

	client, err := remoteClient(cfg)
	if err != nil {
		return nil, err
	}

	strategies = append(strategies, remote.NewStrategy(client, cfg.Remote.MaxBytes))

	return decrypt.NewSelector(strategies, decrypt.WithFallback(decrypt.Identity{}, cfg.Selector.AllowIdentity)), nil
}

func nativeOptions(cfg *config.Config) native.Options {
	return native.Options{
		Name:        cfg.Native.Library,
		SearchPaths: cfg.Native.SearchPaths,
		VendorDir:   cfg.Native.VendorDir,
	}
}

// remoteClient returns nil when no service is configured.
func remoteClient(cfg *config.Config) (*remote.Client, error) {
	if cfg.Remote.URL == "" {
		return nil, nil //nolint:nilnil // absence of a service is not an error
	}

	client, err := remote.NewClient(remote.Options{
		Endpoint:     cfg.Remote.URL,
		HealthURL:    cfg.Remote.HealthURL,
		ProbeTimeout: cfg.Remote.ProbeTimeout,
		Timeout:      cfg.Remote.Timeout,
		SendDeviceID: cfg.Remote.SendDeviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring remote service: %w", err)
	}

	return client, nil
}

// finalize applies the timestamp policy to the produced output and returns its size.
func finalize(outcome decrypt.Outcome, preserve bool) (int64, error) {
	var modTime time.Time

	if preserve {
		info, err := os.Stat(outcome.Input)
		if err != nil {
			return 0, fmt.Errorf("stat input %q: %w", outcome.Input, err)
		}

		modTime = info.ModTime()
	}

	return fileutil.FinalizeOutput(outcome.Output, preserve, modTime)
}

func exists(path string) bool {
	if path == "" {
		return false
	}

	_, err := os.Stat(path)

	return err == nil
}

// dryRun previews which artifacts would be produced without running any strategy.
func dryRun(cfg *config.Config, scanned, excluded int, start time.Time) {
	var st stats

	layout := cfg.Layout()

	for _, file := range cfg.Files {
		req := layout.Request(file)

		if !cfg.Quiet {
			fmt.Printf("Would decrypt %q -> %q (status %q)\n", req.Input, req.Output, req.StatusFile) //nolint:forbidigo
		}

		res := result{Outcome: decrypt.Outcome{Kind: decrypt.Decrypted, Success: true}}

		if info, err := os.Stat(file); err == nil {
			res.size = info.Size()
		}

		st.add(res)
	}

	if cfg.Stats {
		st.print(scanned, excluded, time.Since(start))
	}
}

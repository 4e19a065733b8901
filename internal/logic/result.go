package logic

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/idelchi/docdecrypt/internal/decrypt"
)

// result is an outcome together with the size of the produced output.
type result struct {
	decrypt.Outcome

	size int64
}

// notifier prints one line per processed file.
type notifier struct {
	quiet bool

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
}

func newNotifier(quiet bool) notifier {
	return notifier{
		quiet: quiet,
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed, color.Bold),
	}
}

func (n notifier) result(res result) {
	switch res.Kind {
	case decrypt.Failed:
		n.bad.Fprintf(color.Error, "Failed %q: %s\n", res.Input, res.Message) //nolint:errcheck
	case decrypt.NotEncrypted:
		if !n.quiet {
			n.warn.Fprintf(color.Output, "Skipped %q: %s\n", res.Input, res.Message) //nolint:errcheck
		}
	case decrypt.Copied:
		// Always shown: the output is not a decryption.
		n.warn.Fprintf(color.Output, "Copied %q -> %q: not a real decryption (%s)\n", //nolint:errcheck
			res.Input, res.Output, size(res.size))
	case decrypt.Decrypted:
		if !n.quiet {
			n.ok.Fprintf(color.Output, "Decrypted %q -> %q via %s (%s)\n", //nolint:errcheck
				res.Input, res.Output, res.Strategy, size(res.size))
		}
	}
}

type stats struct {
	decrypted, skipped, copied, failed int
	totalSize                          int64
}

func (s *stats) add(res result) {
	switch res.Kind {
	case decrypt.Decrypted:
		s.decrypted++
	case decrypt.NotEncrypted:
		s.skipped++
	case decrypt.Copied:
		s.copied++
	case decrypt.Failed:
		s.failed++
	}

	s.totalSize += res.size
}

func (s *stats) print(scanned, excluded int, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", excluded)
	fmt.Fprintf(os.Stderr, "  Decrypted: %d\n", s.decrypted)
	fmt.Fprintf(os.Stderr, "  Skipped:   %d\n", s.skipped)
	fmt.Fprintf(os.Stderr, "  Copied:    %d\n", s.copied)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", s.failed)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", size(s.totalSize))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))
}

func size(n int64) string {
	return humanize.IBytes(uint64(max(0, n))) //nolint:gosec // clamped to non-negative
}

package decrypt

import (
	"context"
	"fmt"
	"os"

	"github.com/idelchi/docdecrypt/internal/fileutil"
)

// Identity copies the input unchanged. It exists only to keep downstream
// tooling working when no real decryption is possible; its status record is
// marked with ModeIdentity.
type Identity struct{}

// Name implements Strategy.
func (Identity) Name() string { return "identity" }

// Decrypt implements Strategy.
func (Identity) Decrypt(_ context.Context, req Request) (Result, error) {
	if _, err := fileutil.CopyFile(req.Input, req.Output); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrOutputWriteFailed, err)
	}

	// An unchanged copy without its identity record looks like a real decryption.
	if err := WriteStatus(req.StatusFile, IdentityStatus(req.Output)); err != nil {
		os.Remove(req.Output) //nolint:errcheck,gosec // best-effort removal of the unmarked copy

		return Result{}, err
	}

	return Result{
		Output:     req.Output,
		StatusFile: req.StatusFile,
		Message:    "copied unchanged, this is NOT a real decryption",
	}, nil
}

package native

import (
	"fmt"
	"sync"

	"github.com/apex/log"

	"github.com/idelchi/docdecrypt/internal/decrypt"
)

// sessionMu serializes sessions: the library's state is process-global.
var sessionMu sync.Mutex //nolint:gochecknoglobals

// WithSession initializes lib, runs fn and releases lib.
//
// Release is called exactly once after a successful Install, on every exit
// path of fn including a panic, which is returned as ErrTransformFailed.
// A failed Install is not released.
func WithSession(lib Library, fn func(Library) error) (err error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	ok, err := lib.Install()
	if err != nil {
		return fmt.Errorf("%w: %w", decrypt.ErrCapabilityInitFailed, err)
	}

	if !ok {
		return fmt.Errorf("%w: install reported failure", decrypt.ErrCapabilityInitFailed)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", decrypt.ErrTransformFailed, r)
		}

		if relErr := lib.Release(); relErr != nil {
			log.WithError(relErr).Warn("releasing native library")
		}
	}()

	return fn(lib)
}

//go:build !windows

package native

import (
	"fmt"
	"runtime"

	"github.com/idelchi/docdecrypt/internal/decrypt"
)

// Open reports the library as unavailable: it only exists for Windows.
func Open(path string) (Library, error) {
	return nil, fmt.Errorf("%w: %q requires windows, running on %s/%s",
		decrypt.ErrCapabilityUnavailable, path, runtime.GOOS, runtime.GOARCH)
}

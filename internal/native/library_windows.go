//go:build windows

package native

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/idelchi/docdecrypt/internal/decrypt"
)

const (
	procInstall     = "DSCSInstall"
	procIsEncrypted = "DSCSIsEncryptedFile"
	procDecryptFile = "DSCSDecryptFile"
	procRelease     = "DSCSRelease"
)

type dll struct {
	install     *windows.LazyProc
	isEncrypted *windows.LazyProc
	decryptFile *windows.LazyProc
	release     *windows.LazyProc
}

// Open loads the library at path and resolves its exports.
// A library built for another architecture is reported as unavailable.
func Open(path string) (Library, error) {
	lazy := windows.NewLazyDLL(path)

	if err := lazy.Load(); err != nil {
		if errors.Is(err, windows.ERROR_BAD_EXE_FORMAT) {
			return nil, fmt.Errorf("%w: %q was built for a different architecture: %w",
				decrypt.ErrCapabilityUnavailable, path, err)
		}

		return nil, fmt.Errorf("%w: loading %q: %w", decrypt.ErrCapabilityUnavailable, path, err)
	}

	var lib dll

	for name, dst := range map[string]**windows.LazyProc{
		procInstall:     &lib.install,
		procIsEncrypted: &lib.isEncrypted,
		procDecryptFile: &lib.decryptFile,
		procRelease:     &lib.release,
	} {
		proc, err := findProc(lazy, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q lacks %s: %w", decrypt.ErrCapabilityUnavailable, path, name, err)
		}

		*dst = proc
	}

	return &lib, nil
}

// findProc prefers the wide-character export of name, as the vendor's own tooling does.
// Strings are always passed as UTF-16.
func findProc(lazy *windows.LazyDLL, name string) (*windows.LazyProc, error) {
	if wide := lazy.NewProc(name + "W"); wide.Find() == nil {
		return wide, nil
	}

	proc := lazy.NewProc(name)
	if err := proc.Find(); err != nil {
		return nil, err
	}

	return proc, nil
}

func (d *dll) Install() (bool, error) {
	r, _, _ := d.install.Call()

	return r != 0, nil
}

func (d *dll) IsEncrypted(path string) (bool, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, fmt.Errorf("encoding path %q: %w", path, err)
	}

	r, _, _ := d.isEncrypted.Call(uintptr(unsafe.Pointer(p)))

	return r != 0, nil
}

func (d *dll) DecryptFile(in, out string) (bool, error) {
	pin, err := windows.UTF16PtrFromString(in)
	if err != nil {
		return false, fmt.Errorf("encoding path %q: %w", in, err)
	}

	pout, err := windows.UTF16PtrFromString(out)
	if err != nil {
		return false, fmt.Errorf("encoding path %q: %w", out, err)
	}

	r, _, _ := d.decryptFile.Call(uintptr(unsafe.Pointer(pin)), uintptr(unsafe.Pointer(pout)))

	return r != 0, nil
}

func (d *dll) Release() error {
	if r, _, callErr := d.release.Call(); r == 0 {
		return fmt.Errorf("%s: %w", procRelease, callErr)
	}

	return nil
}

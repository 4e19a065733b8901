package native_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idelchi/docdecrypt/internal/decrypt"
	"github.com/idelchi/docdecrypt/internal/native"
)

// fakeLibrary is a scriptable stand-in for the vendor library.
type fakeLibrary struct {
	installOK   bool
	encrypted   bool
	decryptOK   bool
	decryptErr  error
	panicOnCall bool

	installs, releases, decrypts int
}

func (f *fakeLibrary) Install() (bool, error) {
	f.installs++

	return f.installOK, nil
}

func (f *fakeLibrary) IsEncrypted(string) (bool, error) {
	return f.encrypted, nil
}

func (f *fakeLibrary) DecryptFile(in, out string) (bool, error) {
	f.decrypts++

	if f.panicOnCall {
		panic("access violation reading 0x00000000")
	}

	if f.decryptErr != nil || !f.decryptOK {
		return false, f.decryptErr
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return false, err
	}

	return true, os.WriteFile(out, []byte(strings.ToUpper(string(data))), 0o600)
}

func (f *fakeLibrary) Release() error {
	f.releases++

	return nil
}

func setup(t *testing.T, lib *fakeLibrary) (*native.Strategy, decrypt.Request, *int) {
	t.Helper()

	dir := t.TempDir()

	libPath := filepath.Join(dir, native.DefaultLibraryName)
	if err := os.WriteFile(libPath, []byte("MZ"), 0o600); err != nil {
		t.Fatal(err)
	}

	input := filepath.Join(dir, "contract.docx")
	if err := os.WriteFile(input, []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}

	var loads int

	strategy := native.New(native.Options{},
		native.WithCandidates(filepath.Join(dir, "missing", native.DefaultLibraryName), libPath),
		native.WithLoader(func(path string) (native.Library, error) {
			loads++

			if path != libPath {
				t.Errorf("loader called with %q, want %q", path, libPath)
			}

			return lib, nil
		}),
	)

	return strategy, decrypt.DefaultLayout().Request(input), &loads
}

func TestStrategyDecrypts(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{installOK: true, encrypted: true, decryptOK: true}
	strategy, req, _ := setup(t, lib)

	res, err := strategy.Decrypt(context.Background(), req)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	got, err := os.ReadFile(res.Output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	if string(got) != "SECRET" {
		t.Errorf("output = %q", got)
	}

	status, err := os.ReadFile(res.StatusFile)
	if err != nil {
		t.Fatalf("reading status: %v", err)
	}

	if !strings.Contains(string(status), "result code : 1, result msg : success") {
		t.Errorf("status = %q", status)
	}

	if !strings.Contains(string(status), "File Name:"+req.Output) {
		t.Errorf("status = %q lacks output path", status)
	}

	if lib.installs != 1 || lib.releases != 1 {
		t.Errorf("installs=%d releases=%d, want 1/1", lib.installs, lib.releases)
	}
}

func TestStrategyNotEncrypted(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{installOK: true, encrypted: false}
	strategy, req, _ := setup(t, lib)

	_, err := strategy.Decrypt(context.Background(), req)
	if !errors.Is(err, decrypt.ErrNotEncrypted) {
		t.Fatalf("err = %v, want ErrNotEncrypted", err)
	}

	if lib.decrypts != 0 {
		t.Error("transform invoked for an unprotected file")
	}

	if lib.releases != 1 {
		t.Errorf("releases = %d, want 1", lib.releases)
	}

	for _, path := range []string{req.Output, req.StatusFile} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("artifact %q written for an unprotected file", path)
		}
	}
}

func TestStrategyLibraryAbsent(t *testing.T) {
	t.Parallel()

	var loads int

	strategy := native.New(native.Options{},
		native.WithCandidates(filepath.Join(t.TempDir(), native.DefaultLibraryName)),
		native.WithLoader(func(string) (native.Library, error) {
			loads++

			return &fakeLibrary{}, nil
		}),
	)

	_, err := strategy.Decrypt(context.Background(), decrypt.DefaultLayout().Request("whatever.doc"))
	if !errors.Is(err, decrypt.ErrCapabilityUnavailable) {
		t.Fatalf("err = %v, want ErrCapabilityUnavailable", err)
	}

	if loads != 0 {
		t.Errorf("loader called %d times for an absent library", loads)
	}
}

func TestStrategyInstallFails(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{installOK: false, encrypted: true}
	strategy, req, _ := setup(t, lib)

	_, err := strategy.Decrypt(context.Background(), req)
	if !errors.Is(err, decrypt.ErrCapabilityInitFailed) {
		t.Fatalf("err = %v, want ErrCapabilityInitFailed", err)
	}

	if lib.releases != 0 {
		t.Errorf("releases = %d after a failed install, want 0", lib.releases)
	}
}

func TestStrategyTransformFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lib  *fakeLibrary
	}{
		{name: "reports false", lib: &fakeLibrary{installOK: true, encrypted: true}},
		{name: "returns error", lib: &fakeLibrary{installOK: true, encrypted: true, decryptErr: errors.New("denied")}},
		{name: "panics", lib: &fakeLibrary{installOK: true, encrypted: true, panicOnCall: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			strategy, req, _ := setup(t, tt.lib)

			_, err := strategy.Decrypt(context.Background(), req)
			if !errors.Is(err, decrypt.ErrTransformFailed) {
				t.Fatalf("err = %v, want ErrTransformFailed", err)
			}

			if tt.lib.installs != 1 || tt.lib.releases != 1 {
				t.Errorf("installs=%d releases=%d, want exactly one release per install",
					tt.lib.installs, tt.lib.releases)
			}

			if _, err := os.Stat(req.StatusFile); !errors.Is(err, os.ErrNotExist) {
				t.Error("status record written for a failed transform")
			}
		})
	}
}

func TestStrategyLoaderUnavailable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	libPath := filepath.Join(dir, native.DefaultLibraryName)

	if err := os.WriteFile(libPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	strategy := native.New(native.Options{},
		native.WithCandidates(libPath),
		native.WithLoader(func(string) (native.Library, error) {
			return nil, errors.New("bad image format")
		}),
	)

	_, err := strategy.Decrypt(context.Background(), decrypt.DefaultLayout().Request("a.doc"))
	if !errors.Is(err, decrypt.ErrCapabilityUnavailable) {
		t.Errorf("err = %v, want ErrCapabilityUnavailable", err)
	}
}

func TestWithSessionReleasesOnPanic(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{installOK: true}

	err := native.WithSession(lib, func(native.Library) error {
		panic("boom")
	})
	if !errors.Is(err, decrypt.ErrTransformFailed) {
		t.Fatalf("err = %v, want ErrTransformFailed", err)
	}

	if lib.releases != 1 {
		t.Errorf("releases = %d, want 1", lib.releases)
	}
}

func TestWithSessionPropagatesError(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{installOK: true}
	want := errors.New("query failed")

	err := native.WithSession(lib, func(native.Library) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}

	if lib.installs != 1 || lib.releases != 1 {
		t.Errorf("installs=%d releases=%d", lib.installs, lib.releases)
	}
}

func TestStrategyUnwritableStatusRemovesOutput(t *testing.T) {
	t.Parallel()

	lib := &fakeLibrary{installOK: true, encrypted: true, decryptOK: true}
	strategy, req, _ := setup(t, lib)

	if err := os.Mkdir(req.StatusFile, 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := strategy.Decrypt(context.Background(), req)
	if !errors.Is(err, decrypt.ErrOutputWriteFailed) {
		t.Fatalf("err = %v, want %v", err, decrypt.ErrOutputWriteFailed)
	}

	if _, err := os.Stat(req.Output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output %q left behind without a status record (stat err %v)", req.Output, err)
	}

	if lib.releases != 1 {
		t.Errorf("releases = %d, want 1", lib.releases)
	}
}

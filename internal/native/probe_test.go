package native

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCandidatesOrder(t *testing.T) {
	t.Parallel()

	env := environment{
		getenv: func(key string) string {
			return map[string]string{
				"WINDIR":            "/win",
				"ProgramFiles":      "/pf",
				"ProgramFiles(x86)": "/pf86",
			}[key]
		},
		exeDir: "/app",
		cwd:    "/work",
	}

	opts := Options{
		Name:        "DSCSLink.dll",
		SearchPaths: []string{"/custom", "/explicit/dscslink.DLL"},
		VendorDir:   "SoftCamp",
	}

	want := []string{
		filepath.Join("/custom", "DSCSLink.dll"),
		filepath.Clean("/explicit/dscslink.DLL"),
		filepath.Join("/win", "DSCSLink.dll"),
		filepath.Join("/win", "System32", "DSCSLink.dll"),
		filepath.Join("/win", "SysWOW64", "DSCSLink.dll"),
		filepath.Join("/app", "DSCSLink.dll"),
		filepath.Join("/work", "DSCSLink.dll"),
		filepath.Join("/pf", "SoftCamp", "DSCSLink.dll"),
		filepath.Join("/pf86", "SoftCamp", "DSCSLink.dll"),
	}

	got := candidates(opts, env)

	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidates[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCandidatesDeduplicateAndDefaultName(t *testing.T) {
	t.Parallel()

	env := environment{
		getenv: func(key string) string {
			if key == "SystemRoot" {
				return "/win"
			}

			return ""
		},
		exeDir: "/same",
		cwd:    "/same",
	}

	got := candidates(Options{}, env)

	want := []string{
		filepath.Join("/win", DefaultLibraryName),
		filepath.Join("/win", "System32", DefaultLibraryName),
		filepath.Join("/win", "SysWOW64", DefaultLibraryName),
		filepath.Join("/same", DefaultLibraryName),
	}

	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidates[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindSkipsDirectoriesAndMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	asDir := filepath.Join(dir, "a", DefaultLibraryName)
	if err := os.MkdirAll(asDir, 0o750); err != nil {
		t.Fatal(err)
	}

	libPath := filepath.Join(dir, DefaultLibraryName)
	if err := os.WriteFile(libPath, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	got, ok := Find([]string{filepath.Join(dir, "missing.dll"), asDir, libPath})
	if !ok || got != libPath {
		t.Errorf("Find = %q, %v; want %q", got, ok, libPath)
	}

	if _, ok := Find([]string{filepath.Join(dir, "missing.dll")}); ok {
		t.Error("Find reported a missing library")
	}
}

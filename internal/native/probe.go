package native

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultVendorDir is the vendor's installation directory below Program Files.
const DefaultVendorDir = "SoftCamp"

// Options locate the library on disk.
type Options struct {
	// Name is the library file name.
	Name string
	// SearchPaths are directories (or full library paths) searched before the defaults.
	SearchPaths []string
	// VendorDir is searched below %ProgramFiles% and %ProgramFiles(x86)%.
	VendorDir string
}

// environment abstracts the process environment for candidate resolution.
type environment struct {
	getenv func(string) string
	exeDir string
	cwd    string
}

func processEnvironment() environment {
	env := environment{getenv: os.Getenv}

	if exe, err := os.Executable(); err == nil {
		env.exeDir = filepath.Dir(exe)
	}

	if wd, err := os.Getwd(); err == nil {
		env.cwd = wd
	}

	return env
}

// Candidates lists every path where the library is looked for, in priority order.
func Candidates(opts Options) []string {
	return candidates(opts, processEnvironment())
}

func candidates(opts Options, env environment) []string {
	name := opts.Name
	if name == "" {
		name = DefaultLibraryName
	}

	var dirs []string

	seen := make(map[string]struct{})

	var paths []string

	add := func(path string) {
		if path == "" {
			return
		}

		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, p := range opts.SearchPaths {
		if strings.EqualFold(filepath.Base(p), name) {
			add(p)
		} else if p != "" {
			add(filepath.Join(p, name))
		}
	}

	windir := env.getenv("WINDIR")
	if windir == "" {
		windir = env.getenv("SystemRoot")
	}

	if windir != "" {
		dirs = append(dirs, windir, filepath.Join(windir, "System32"), filepath.Join(windir, "SysWOW64"))
	}

	dirs = append(dirs, env.exeDir, env.cwd)

	if opts.VendorDir != "" {
		for _, key := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
			if base := env.getenv(key); base != "" {
				dirs = append(dirs, filepath.Join(base, opts.VendorDir))
			}
		}
	}

	for _, dir := range dirs {
		if dir != "" {
			add(filepath.Join(dir, name))
		}
	}

	return paths
}

// Find returns the first candidate that is a regular file.
func Find(candidates []string) (string, bool) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}

	return "", false
}

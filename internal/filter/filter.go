// Package filter turns positional arguments into the list of files to process.
package filter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Filter selects walked files by matching their base name against glob patterns.
// Empty includes means "match all". Excludes always win.
type Filter struct {
	includes []string
	excludes []string
}

// New validates the patterns and returns a reusable filter.
func New(includes, excludes []string) (*Filter, error) {
	for _, p := range append(append([]string{}, includes...), excludes...) {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
	}

	return &Filter{includes: includes, excludes: excludes}, nil
}

// Match reports whether the file at path should be processed.
func (f *Filter) Match(path string) bool {
	name := filepath.Base(path)

	return (len(f.includes) == 0 || matchAny(f.includes, name)) && !matchAny(f.excludes, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}

	return false
}

// Resolve expands args into files. Arguments that are not directories, including
// ones that do not exist, are passed through untouched so the caller can report them.
// Directories are walked recursively and filtered.
// Returns the files and the number of candidates scanned.
func Resolve(args []string, flt *Filter) (files []string, scanned int, err error) {
	seen := make(map[string]struct{})

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			scanned++

			add(arg)

			continue
		}

		walked, total, err := walkDir(arg, flt)
		if err != nil {
			return nil, 0, err
		}

		scanned += total

		for _, path := range walked {
			add(path)
		}
	}

	if len(files) == 0 {
		return nil, scanned, fmt.Errorf("no files matched the provided patterns: %v", args)
	}

	return files, scanned, nil
}

func walkDir(root string, flt *Filter) (files []string, total int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		total++

		if flt.Match(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walking %q: %w", root, err)
	}

	return files, total, nil
}

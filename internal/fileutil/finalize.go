// Package fileutil writes result artifacts atomically beside their inputs.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const ownerReadWrite = 0o600

// TempContext holds state for an atomic file write operation.
type TempContext struct {
	TmpFile *os.File
	TmpName string
}

// NewTempContext creates a temp file in the directory of outPath.
// Caller must defer CleanupOnError.
func NewTempContext(outPath string) (*TempContext, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempContext{
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
	}, nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:gosec // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:gosec // best-effort cleanup
	}
}

// Commit sets perm on the temp file, closes it and renames it to outPath.
func (tc *TempContext) Commit(outPath string, perm os.FileMode) error {
	if err := os.Chmod(tc.TmpName, perm); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tc.TmpName, outPath); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte) (err error) {
	tc, err := NewTempContext(path)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	if _, err = tc.TmpFile.Write(data); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}

	return tc.Commit(path, ownerReadWrite)
}

// CopyFile atomically copies src to dst byte for byte, keeping the permission bits of src.
// It returns the number of bytes written.
func CopyFile(src, dst string) (size int64, err error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("getting file info for %q: %w", src, err)
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return 0, fmt.Errorf("opening input file: %w", err)
	}
	defer in.Close()

	tc, err := NewTempContext(dst)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	size, err = io.Copy(tc.TmpFile, in)
	if err != nil {
		return 0, fmt.Errorf("copying content: %w", err)
	}

	if err = tc.Commit(dst, info.Mode().Perm()|ownerReadWrite); err != nil {
		return 0, err
	}

	return size, nil
}

// FinalizeOutput optionally preserves timestamps and returns the output file size.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}

package decrypt

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultDecryptedExt replaces the input extension for the recovered content.
	DefaultDecryptedExt = ".decrypted"
	// DefaultStatusExt replaces the input extension for the status record.
	DefaultStatusExt = ".txt"
)

// Layout describes where the result artifacts of a request are written.
type Layout struct {
	DecryptedExt string
	StatusExt    string
}

// DefaultLayout returns the layout used by the vendor's own tooling.
func DefaultLayout() Layout {
	return Layout{DecryptedExt: DefaultDecryptedExt, StatusExt: DefaultStatusExt}
}

// Request is a single decryption job. Artifacts are written beside the input.
type Request struct {
	// Input is the protected document.
	Input string
	// Output receives the recovered content.
	Output string
	// StatusFile receives the status record.
	StatusFile string
}

// Request builds the request for input using the layout's extensions.
func (l Layout) Request(input string) Request {
	return Request{
		Input:      input,
		Output:     ChangeExt(input, l.DecryptedExt),
		StatusFile: ChangeExt(input, l.StatusExt),
	}
}

// ChangeExt replaces the extension of path with ext, or appends ext when path has none.
func ChangeExt(path, ext string) string {
	base := filepath.Base(path)

	if old := filepath.Ext(base); old != "" {
		path = strings.TrimSuffix(path, old)
	}

	return path + ext
}

// collides reports whether any artifact path would overwrite the input or each other.
func (r Request) collides() bool {
	in := filepath.Clean(r.Input)

	return filepath.Clean(r.Output) == in ||
		filepath.Clean(r.StatusFile) == in ||
		filepath.Clean(r.Output) == filepath.Clean(r.StatusFile)
}

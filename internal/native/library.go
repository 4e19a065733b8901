// Package native drives the vendor's document-security library installed on the host.
//
// The library holds process-global state: every use is bracketed by Install
// and Release inside WithSession, and sessions never interleave.
package native

// DefaultLibraryName is the file name of the vendor library.
const DefaultLibraryName = "DSCSLink.dll"

// Library is the vendor library's exported surface.
type Library interface {
	// Install initializes the library. It must report true before any other call.
	Install() (bool, error)
	// IsEncrypted reports whether path is protected.
	IsEncrypted(path string) (bool, error)
	// DecryptFile writes the plain content of in to out.
	DecryptFile(in, out string) (bool, error)
	// Release frees what Install acquired.
	Release() error
}

// Loader opens the library found at path.
type Loader func(path string) (Library, error)

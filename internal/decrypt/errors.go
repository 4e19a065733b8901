package decrypt

import "errors"

var (
	// ErrInputNotFound is returned when the input path does not reference an existing, readable file.
	ErrInputNotFound = errors.New("input not found")
	// ErrCapabilityUnavailable is returned when a strategy cannot be used on this host.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrCapabilityInitFailed is returned when the native library refuses to initialize.
	ErrCapabilityInitFailed = errors.New("capability initialization failed")
	// ErrNotEncrypted signals that the input is not protected. It is a no-op, not a failure.
	ErrNotEncrypted = errors.New("file is not encrypted")
	// ErrTransformFailed is returned when the vendor transform reports failure.
	ErrTransformFailed = errors.New("decryption failed")
	// ErrNetworkUnreachable is returned when the remote service cannot be reached.
	ErrNetworkUnreachable = errors.New("network unreachable")
	// ErrPayloadTooLarge is returned when the input exceeds the upload limit.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrServerError is returned when the remote service rejects the request.
	ErrServerError = errors.New("server error")
	// ErrOutputWriteFailed is returned when a result artifact cannot be written.
	ErrOutputWriteFailed = errors.New("writing output failed")
	// ErrNoStrategy is returned when every strategy was tried without success.
	ErrNoStrategy = errors.New("no strategy could decrypt the file")
)

package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/docdecrypt/internal/decrypt"
	"github.com/idelchi/docdecrypt/internal/fileutil"
)

// DefaultMaxSize is the largest input the service accepts.
const DefaultMaxSize = 100 << 20

// Strategy decrypts by uploading to the service.
type Strategy struct {
	client  *Client
	maxSize int64
}

// NewStrategy returns a strategy over client. A nil client makes the strategy unavailable.
// A maxSize of zero or less disables the size check.
func NewStrategy(client *Client, maxSize int64) *Strategy {
	return &Strategy{client: client, maxSize: maxSize}
}

// Name implements decrypt.Strategy.
func (s *Strategy) Name() string { return "remote" }

// Decrypt implements decrypt.Strategy.
//
// The size limit is enforced before any network traffic and the upload is only
// attempted after a successful reachability check. A status record answer is
// persisted verbatim; any other answer is taken as the decrypted content.
func (s *Strategy) Decrypt(ctx context.Context, req decrypt.Request) (decrypt.Result, error) {
	if s.client == nil {
		return decrypt.Result{}, fmt.Errorf("%w: no decryption service configured", decrypt.ErrCapabilityUnavailable)
	}

	info, err := os.Stat(req.Input)
	if err != nil {
		return decrypt.Result{}, fmt.Errorf("%w: %w", decrypt.ErrInputNotFound, err)
	}

	if s.maxSize > 0 && info.Size() > s.maxSize {
		//nolint:gosec // sizes are non-negative
		return decrypt.Result{}, fmt.Errorf("%w: %s exceeds the %s upload limit", decrypt.ErrPayloadTooLarge,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(s.maxSize)))
	}

	if err := s.client.Ping(ctx); err != nil {
		return decrypt.Result{}, err
	}

	file, err := os.Open(filepath.Clean(req.Input))
	if err != nil {
		return decrypt.Result{}, fmt.Errorf("%w: %w", decrypt.ErrInputNotFound, err)
	}
	defer file.Close()

	resp, err := s.client.Upload(ctx, filepath.Base(req.Input), file)
	if err != nil {
		return decrypt.Result{}, err
	}

	if status, ok := decrypt.ParseStatus(resp.Body); ok {
		return persistStatus(req, status, resp.Body)
	}

	if len(resp.Body) == 0 {
		return decrypt.Result{}, fmt.Errorf("%w: empty response (request %s)", decrypt.ErrServerError, resp.RequestID)
	}

	if err := fileutil.WriteFile(req.Output, resp.Body); err != nil {
		return decrypt.Result{}, fmt.Errorf("%w: %w", decrypt.ErrOutputWriteFailed, err)
	}

	if err := decrypt.WriteStatus(req.StatusFile, decrypt.SuccessStatus(req.Output)); err != nil {
		os.Remove(req.Output) //nolint:errcheck,gosec // output without a status record is incomplete

		return decrypt.Result{}, err
	}

	return decrypt.Result{
		Output:     req.Output,
		StatusFile: req.StatusFile,
		Message:    fmt.Sprintf("decrypted by %s (%s)", s.client.Endpoint(), humanize.IBytes(uint64(len(resp.Body)))),
	}, nil
}

func persistStatus(req decrypt.Request, status decrypt.Status, body []byte) (decrypt.Result, error) {
	if !status.OK() {
		return decrypt.Result{}, fmt.Errorf("%w: service reported code %d: %s",
			decrypt.ErrServerError, status.Code, status.Message)
	}

	if err := fileutil.WriteFile(req.StatusFile, body); err != nil {
		return decrypt.Result{}, fmt.Errorf("%w: %w", decrypt.ErrOutputWriteFailed, err)
	}

	return decrypt.Result{
		Output:     status.FileName,
		StatusFile: req.StatusFile,
		Message:    strings.TrimSpace(string(body)),
	}, nil
}

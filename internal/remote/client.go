// Package remote talks to the vendor's document decryption service.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"

	"github.com/idelchi/docdecrypt/internal/decrypt"
)

const (
	// DefaultProbeTimeout bounds the reachability check.
	DefaultProbeTimeout = 10 * time.Second
	// DefaultTimeout bounds an upload including the response.
	DefaultTimeout = 5 * time.Minute

	// HeaderRequestID correlates an upload with the service's logs.
	HeaderRequestID = "X-Request-ID"
	// HeaderDeviceID identifies the uploading machine.
	HeaderDeviceID = "X-Device-ID"

	appID        = "docdecrypt"
	formField    = "file"
	errorExcerpt = 200
)

// Options configure a Client.
type Options struct {
	// Endpoint receives uploads.
	Endpoint string
	// HealthURL is probed before uploading. Derived from Endpoint when empty.
	HealthURL    string
	ProbeTimeout time.Duration
	Timeout      time.Duration
	// SendDeviceID adds an application-specific machine id to uploads.
	SendDeviceID bool
	// HTTPClient defaults to a client without an overall timeout; calls are bounded by context.
	HTTPClient *http.Client
}

// Response is what the service returned for an upload.
type Response struct {
	RequestID   string
	ContentType string
	Body        []byte
}

// Client uploads files to the service.
type Client struct {
	endpoint     string
	healthURL    string
	probeTimeout time.Duration
	timeout      time.Duration
	deviceID     string
	http         *http.Client
}

// NewClient validates opts and returns a client.
func NewClient(opts Options) (*Client, error) {
	if _, err := url.ParseRequestURI(opts.Endpoint); err != nil {
		return nil, fmt.Errorf("parsing endpoint %q: %w", opts.Endpoint, err)
	}

	health := opts.HealthURL
	if health == "" {
		derived, err := HealthURL(opts.Endpoint)
		if err != nil {
			return nil, err
		}

		health = derived
	}

	client := &Client{
		endpoint:     opts.Endpoint,
		healthURL:    health,
		probeTimeout: opts.ProbeTimeout,
		timeout:      opts.Timeout,
		http:         opts.HTTPClient,
	}

	if client.probeTimeout <= 0 {
		client.probeTimeout = DefaultProbeTimeout
	}

	if client.timeout <= 0 {
		client.timeout = DefaultTimeout
	}

	if client.http == nil {
		client.http = &http.Client{}
	}

	if opts.SendDeviceID {
		id, err := machineid.ProtectedID(appID)
		if err != nil {
			log.WithError(err).Warn("machine id unavailable, uploading without device id")
		} else {
			client.deviceID = id
		}
	}

	return client, nil
}

// HealthURL derives the health endpoint by replacing the last path element of endpoint,
// e.g. https://host/api/decrypt becomes https://host/api/health.
func HealthURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}

	dir := path.Dir(strings.TrimSuffix(u.Path, "/"))
	if dir == "." {
		dir = "/"
	}

	u.Path = path.Join(dir, "health")
	u.RawQuery = ""

	return u.String(), nil
}

// Endpoint returns the upload URL.
func (c *Client) Endpoint() string { return c.endpoint }

// HealthEndpoint returns the probed URL.
func (c *Client) HealthEndpoint() string { return c.healthURL }

// Ping checks that the service answers its health endpoint within the probe timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("%w: building health request: %w", decrypt.ErrNetworkUnreachable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", decrypt.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: health check returned %s", decrypt.ErrNetworkUnreachable, resp.Status)
	}

	return nil
}

// Upload sends content as the multipart field "file" named name and returns the response.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	logger := log.WithFields(log.Fields{"request_id": requestID, "file": name})

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(form, name, content))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		pr.Close()

		return nil, fmt.Errorf("%w: building upload request: %w", decrypt.ErrNetworkUnreachable, err)
	}

	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(HeaderRequestID, requestID)

	if c.deviceID != "" {
		req.Header.Set(HeaderDeviceID, c.deviceID)
	}

	logger.Debug("uploading")

	resp, err := c.http.Do(req)
	if err != nil {
		pr.Close()

		return nil, fmt.Errorf("%w: %w", decrypt.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: reading response: %w", decrypt.ErrNetworkUnreachable, err)
		}

		return nil, fmt.Errorf("%w: reading response: %w", decrypt.ErrServerError, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", decrypt.ErrServerError, resp.Status, excerpt(body))
	}

	logger.WithField("bytes", len(body)).Debug("response received")

	return &Response{
		RequestID:   requestID,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func writeForm(form *multipart.Writer, name string, content io.Reader) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formField, name))
	header.Set("Content-Type", "application/octet-stream")

	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating form part: %w", err)
	}

	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("streaming file: %w", err)
	}

	return form.Close()
}

func excerpt(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > errorExcerpt {
		text = text[:errorExcerpt] + "..."
	}

	if text == "" {
		return "empty response"
	}

	return text
}

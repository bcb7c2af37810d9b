// Package backend talks to the agent's image-analysis HTTP service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Domain errors for backend operations.
var (
	// ErrNoImages indicates an upload was requested without any files.
	ErrNoImages = errors.New("backend: select one or more images first")

	// ErrUnreachable indicates the service could not be contacted at all.
	ErrUnreachable = errors.New("backend: cannot connect to server")

	// ErrUnhealthy indicates the service answered the ping with a failure.
	ErrUnhealthy = errors.New("backend: server is running but not responding correctly")
)

// AllowedExtensions are the image types the service accepts.
var AllowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: server responded with %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend: server responded with %d", e.StatusCode)
}

// UploadResult is the per-file answer of the upload endpoint. Rejected
// files carry only Error.
type UploadResult struct {
	Success          bool   `json:"success"`
	Filename         string `json:"filename,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
	FilePath         string `json:"file_path,omitempty"`
	Analysis         string `json:"analysis,omitempty"`
	Error            string `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "backend").Logger() }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AllowedFile reports whether a filename has an accepted image extension.
func AllowedFile(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return AllowedExtensions[ext]
}

// Ping checks the service is up.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/ping", nil, "")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrUnhealthy
	}
	return nil
}

// Status returns the service's status string.
func (c *Client) Status(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/status", nil, "")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("backend: decode status: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Message: body.Message}
	}
	return body.Status, nil
}

// SetAPIKey pings the service and then submits the key. The key is never
// logged or stored locally.
func (c *Client) SetAPIKey(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("backend: api key is empty")
	}
	if err := c.Ping(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"apiKey": key})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/set-api-key", bytes.NewReader(payload), "application/json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	var body struct {
		Message string `json:"message"`
	}
	// the body is optional on success
	_ = json.NewDecoder(resp.Body).Decode(&body)

	c.log.Info().Int("status", resp.StatusCode).Msg("api key submitted")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := body.Message
		if msg == "" {
			msg = "failed to set API key"
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}
	return nil
}

// Upload sends the images in one multipart request under the "image"
// field. Files with a disallowed extension are still sent; the service
// answers them with an error entry.
func (c *Client) Upload(ctx context.Context, paths []string) ([]UploadResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoImages
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range paths {
		if err := addFile(mw, p); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	c.log.Info().Int("files", len(paths)).Int("bytes", buf.Len()).Msg("uploading images")
	resp, err := c.do(ctx, http.MethodPost, "/upload", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	var results []UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("backend: decode upload response: %w", err)
	}
	return results, nil
}

func addFile(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("backend: open %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("backend: read %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, err
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")
	return resp, nil
}

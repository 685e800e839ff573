// Package blinko wraps the Blinko REST API behind an authenticated client
// with a shared retry and error classification policy.
package blinko

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 5
	defaultInterval    = 500 * time.Millisecond

	// maxRetryAfter caps how long a Retry-After header may stall one attempt.
	maxRetryAfter = 30 * time.Second
)

// Client is the authenticated Blinko API client.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
	interval    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxAttempts sets the total attempt budget for retryable failures.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoffInterval sets the initial delay of the exponential schedule.
func WithBackoffInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Blinko client for one base URL and bearer token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" || token == "" {
		return nil, ErrNotConfigured
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		httpClient:  &http.Client{},
		timeout:     defaultTimeout,
		maxAttempts: defaultMaxAttempts,
		interval:    defaultInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// UpsertNote submits a note and returns the remote note id.
func (c *Client) UpsertNote(ctx context.Context, note Note) (int, error) {
	if note.Attachments == nil {
		note.Attachments = []string{}
	}

	var resp upsertResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/note/upsert", note, &resp); err != nil {
		return 0, err
	}

	return resp.NoteID(), nil
}

// UploadByURL submits a single URL for server side fetch and store.
func (c *Client) UploadByURL(ctx context.Context, url string) (UploadResult, error) {
	var resp UploadResult

	body := map[string]string{"url": url}
	if err := c.call(ctx, http.MethodPost, "/api/file/upload-by-url", body, &resp); err != nil {
		return UploadResult{}, err
	}

	if resp.FilePath == "" {
		return UploadResult{}, ErrMissingFilePath
	}

	return resp, nil
}

// ListTags fetches the flat remote tag list.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := c.call(ctx, http.MethodGet, "/api/v1/tags/list", nil, &tags); err != nil {
		return nil, err
	}

	return tags, nil
}

// ListConfig fetches the remote configuration snapshot. Read only.
func (c *Client) ListConfig(ctx context.Context) (map[string]any, error) {
	var cfg map[string]any
	if err := c.call(ctx, http.MethodGet, "/api/v1/config/list", nil, &cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// call runs one endpoint with the shared retry policy.
// Retryable classes are tried up to maxAttempts with exponential delay,
// everything else surfaces on first occurrence.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	operation := func() error {
		err := c.do(ctx, method, path, body, out)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Retryable() {
			log.Warn().
				Str("path", path).
				Str("kind", string(apiErr.Kind)).
				Int("status", apiErr.StatusCode).
				Msg("retryable blinko call failure")

			return err
		}

		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.interval

	// maxAttempts total, so maxAttempts-1 retries after the first try
	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), //nolint:gosec
		ctx,
	)

	return backoff.Retry(operation, policy)
}

// do performs a single attempt and classifies the outcome.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(err, "failed to encode request body")
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build request")
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// connection failures and timeouts share the network class
		return &APIError{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		apiErr := classifyStatus(resp.StatusCode, strings.TrimSpace(string(data)))
		if apiErr.Kind == KindRateLimit {
			// honor Retry-After before handing the error back to the schedule
			waitRetryAfter(ctx, resp.Header.Get("Retry-After"))
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(err, "failed to decode response body")
	}

	return nil
}

// waitRetryAfter sleeps for a parseable Retry-After duration, bounded by
// maxRetryAfter and the caller's context.
func waitRetryAfter(ctx context.Context, header string) {
	if header == "" {
		return
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return
	}

	wait := time.Duration(seconds) * time.Second
	if wait > maxRetryAfter {
		wait = maxRetryAfter
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

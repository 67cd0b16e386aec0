package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 30 * time.Second

// Client talks to the registration service over HTTP.
type Client struct {
	endpoint     string
	httpClient   *http.Client
	timeout      time.Duration
	waitInterval time.Duration
	logger       *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithWaitInterval sets the initial polling interval for WaitUntilFound.
func WithWaitInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.waitInterval = d
		}
	}
}

// WithLogger attaches a logger; a no-op logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the given service endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("registry: endpoint cannot be empty")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("registry: invalid endpoint %q: %w", endpoint, err)
	}

	c := &Client{
		endpoint:     endpoint,
		httpClient:   http.DefaultClient,
		timeout:      defaultRequestTimeout,
		waitInterval: defaultWaitInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit performs the write round-trip. The caller is responsible for
// validating the submission locally; the client only speaks the wire
// contract.
func (c *Client) Submit(ctx context.Context, sub Submission) (*Record, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := c.tagRequest(req)

	c.logger.Debug("submitting registration",
		zap.String("file_hash", sub.FileHash),
		zap.String("user", sub.User),
		zap.String("request_id", requestID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var record Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("decode submit response: %w", err)}
	}

	c.logger.Info("registration accepted",
		zap.String("tx_hash", record.TxHash),
		zap.Int64("block_number", record.BlockNumber))
	return &record, nil
}

// Lookup performs the read round-trip. No signature or token is
// required; anyone holding a fingerprint may query it.
func (c *Client) Lookup(ctx context.Context, fingerprint string) (*LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create lookup request: %w", err)
	}
	q := req.URL.Query()
	q.Set("hash", fingerprint)
	req.URL.RawQuery = q.Encode()
	c.tagRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result LookupResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("decode lookup response: %w", err)}
	}

	c.logger.Debug("lookup completed",
		zap.String("fingerprint", fingerprint),
		zap.Bool("found", result.Found))
	return &result, nil
}

// tagRequest attaches a correlation ID so client and service logs can
// be joined. Returns the ID for local logging.
func (c *Client) tagRequest(req *http.Request) string {
	id := uuid.NewString()
	req.Header.Set("X-Request-Id", id)
	return id
}

// checkStatus converts a non-2xx response into a ServiceError carrying
// the service's own error message when one was provided.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Error string `json:"error"`
	}
	// Best effort: an unparseable error body still yields a ServiceError
	// with the status code.
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	return &ServiceError{Status: resp.StatusCode, Message: payload.Error}
}

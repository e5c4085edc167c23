package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/nhle/bugtriage/internal/credential"
	"github.com/nhle/bugtriage/internal/source"
)

// Client is a thin HTTP client for the Notion REST API. It handles Bearer
// token authentication, the Notion-Version header, JSON marshaling, and
// retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	token      credential.Secret
	version    string
	httpClient *http.Client
	maxRetries uint64
	retryBase  time.Duration
	maxWait    time.Duration
	timeout    time.Duration
	logger     hclog.Logger
}

// NewClient creates a new Notion HTTP client. A nil httpClient gets one with
// the given timeout.
func NewClient(
	baseURL string,
	token credential.Secret,
	version string,
	timeout time.Duration,
	httpClient *http.Client,
	logger hclog.Logger,
) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		version:    version,
		httpClient: httpClient,
		maxRetries: 3,
		retryBase:  time.Second,
		maxWait:    30 * time.Second,
		timeout:    timeout,
		logger:     logger,
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals the
// JSON response.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Patch performs an HTTP PATCH request with a JSON body and unmarshals the
// JSON response.
func (c *Client) Patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// rateLimitedError marks a 429 response so the retry loop waits and tries
// again.
type rateLimitedError struct {
	apiErr     *APIError
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string { return e.apiErr.Error() }
func (e *rateLimitedError) Unwrap() error { return e.apiErr }

// do builds the request, handles auth, retries rate-limited calls and
// decodes the JSON response. The whole call, retries included, is bounded by
// the client timeout; a rate-limit wait that would overrun it gives up with
// the 429 instead.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	policy := &retryAfterBackOff{
		BackOff:  backoff.WithMaxRetries(newExponential(c.retryBase, c.maxWait), c.maxRetries),
		maxWait:  c.maxWait,
		budget:   c.timeout,
		deadline: time.Now().Add(c.timeout),
	}

	attempt := func() error {
		err := c.roundTrip(ctx, method, path, data, result)
		if rl, ok := err.(*rateLimitedError); ok {
			policy.next = rl.retryAfter
			return rl
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("rate limited, retrying",
			"method", method, "path", path, "wait", wait)
	}

	err := backoff.RetryNotify(attempt, backoff.WithContext(policy, ctx), notify)
	if rl, ok := err.(*rateLimitedError); ok {
		return rl.apiErr
	}
	return err
}

func (c *Client) roundTrip(
	ctx context.Context,
	method string,
	path string,
	data []byte,
	result interface{},
) error {
	var bodyReader io.Reader
	if data != nil {
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token.Reveal())
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(respBody),
		}
		var notionErr ErrorResponse
		if json.Unmarshal(respBody, &notionErr) == nil {
			apiErr.Code = notionErr.Code
			apiErr.Message = notionErr.Message
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return &rateLimitedError{
				apiErr:     apiErr,
				retryAfter: retryAfterHeader(resp),
			}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &source.AuthError{
				SourceType: source.SourceTypeNotion,
				Message: fmt.Sprintf(
					"authentication failed (%d): check the integration token %s and its access to this page",
					resp.StatusCode, c.token.Preview(),
				),
				Err: apiErr,
			}
		}
		return apiErr
	}

	// No content to parse.
	if result == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w",
			method, path, err,
		)
	}

	return nil
}

func newExponential(initial, max time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = max
	b.MaxElapsedTime = 0
	return b
}

// retryAfterBackOff prefers a server-supplied Retry-After delay over the
// wrapped policy's next interval, while still consuming the wrapped policy
// so its retry cap applies. Waits are capped at maxWait, and a wait that
// would end past the deadline stops the retries.
type retryAfterBackOff struct {
	backoff.BackOff
	next     time.Duration
	maxWait  time.Duration
	budget   time.Duration
	deadline time.Time
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	d := b.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if b.next > 0 {
		d, b.next = b.next, 0
	}
	if b.maxWait > 0 && d > b.maxWait {
		d = b.maxWait
	}
	if b.budget > 0 && time.Now().Add(d).After(b.deadline) {
		return backoff.Stop
	}
	return d
}

// retryAfterHeader reads the Retry-After header in seconds. Zero means the
// header was absent or unparseable.
func retryAfterHeader(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

package putio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const downloadStem = "putcast"

// Client talks to the put.io v2 API. It holds no per-user state: every call
// takes the access token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	maxRetries int
}

type Option func(*Client)

func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithTimeout bounds each API call, including retries.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithMaxRetries sets how many times transient failures are retried.
// Negative values mean no retries.
func WithMaxRetries(maxRetries int) Option {
	return func(c *Client) { c.maxRetries = max(maxRetries, 0) }
}

func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  "Putcast/1.0",
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListFolder returns the children of a folder in put.io's listing order.
func (c *Client) ListFolder(ctx context.Context, folderID, token string) ([]File, error) {
	query := "/files/list?parent_id=" + url.QueryEscape(folderID)

	var resp listResponse
	if err := c.call(ctx, query, token, &resp); err != nil {
		return nil, fmt.Errorf("failed to list folder %s: %w", folderID, err)
	}

	return resp.Files, nil
}

// AccountInfo returns the account owning token.
func (c *Client) AccountInfo(ctx context.Context, token string) (*AccountInfo, error) {
	var resp accountResponse
	if err := c.call(ctx, "/account/info", token, &resp); err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}

	return &resp.Info, nil
}

// DownloadURL links to the file in its original container.
func (c *Client) DownloadURL(file File, token string) string {
	link := fmt.Sprintf("%s/files/%d/download/%s%s", c.baseURL, file.ID, downloadStem, extension(file.Name))
	return AddOAuthToken(link, token)
}

// MP4DownloadURL links to put.io's mp4 rendition of a video file.
func (c *Client) MP4DownloadURL(file File, token string) string {
	link := fmt.Sprintf("%s/files/%d/mp4/download/%s.mp4", c.baseURL, file.ID, downloadStem)
	return AddOAuthToken(link, token)
}

// AddOAuthToken appends the access token as the oauth_token query parameter.
func AddOAuthToken(rawURL, token string) string {
	separator := "?"
	if strings.Contains(rawURL, "?") {
		separator = "&"
	}
	return rawURL + separator + "oauth_token=" + url.QueryEscape(token)
}

func (c *Client) call(ctx context.Context, query, token string, out any) error {
	if token == "" {
		return ErrUnauthorized
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := AddOAuthToken(c.baseURL+query, token)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return c.do(ctx, endpoint, out)
	}, policy, func(err error, delay time.Duration) {
		slog.Warn("put.io request failed, retrying", "path", strings.SplitN(query, "?", 2)[0], "attempt", attempt, "delay", delay.String(), "error", err)
	})

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	if err != nil && !errors.Is(err, ErrUpstream) && !errors.Is(err, ErrUnauthorized) && !errors.Is(err, ErrNotFound) {
		// Retry gives up with the bare context error once the deadline passes.
		err = fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return err
}

// do performs one request. Errors that must not be retried are wrapped with
// backoff.Permanent.
func (c *Client) do(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("%w: failed to create request: %w", ErrUpstream, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(fmt.Errorf("%w: %w", ErrUpstream, ctx.Err()))
		}
		return fmt.Errorf("%w: request failed: %w", ErrUpstream, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return backoff.Permanent(fmt.Errorf("%w: failed to decode response: %w", ErrUpstream, err))
	}

	return nil
}

func statusError(status int, body []byte) error {
	var apiErr errorResponse
	_ = json.Unmarshal(body, &apiErr)

	detail := apiErr.ErrorMessage
	if detail == "" {
		detail = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		strings.Contains(strings.ToLower(apiErr.ErrorType), "auth"):
		return backoff.Permanent(fmt.Errorf("%w: %s", ErrUnauthorized, detail))
	case status == http.StatusNotFound, apiErr.ErrorType == "NotFound":
		return backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, detail))
	case status == http.StatusTooManyRequests, status >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", ErrUpstream, status, detail)
	default:
		return backoff.Permanent(fmt.Errorf("%w: HTTP %d: %s", ErrUpstream, status, detail))
	}
}

// redact drops the request URL from transport errors so access tokens do
// not end up in logs.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// extension mirrors a filename's extension, treating a single leading dot as
// part of the name rather than an extension.
func extension(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	if trimmed == "" {
		return ""
	}
	return path.Ext(trimmed)
}

// Package indexclient pushes chunk streams to the embedding/index service.
package indexclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dgallion1/bookgest/internal/book"
	"github.com/dgallion1/bookgest/internal/sink"
)

// Client communicates with the index service HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger

	maxRetries int
	backoff    func(attempt int) time.Duration
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries sets the retry count and backoff schedule.
func WithRetries(n int, backoff func(attempt int) time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max(n, 0)
		if backoff != nil {
			c.backoff = backoff
		}
	}
}

func NewClient(baseURL, apiKey string, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:        log,
		maxRetries: MaxRetries,
		backoff:    Backoff,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// PutChunks replaces the book's chunk set with chunks, sent as JSON Lines
// to PUT /books/{book_id}/chunks. 429 and 5xx responses are retried up to
// maxRetries times.
func (c *Client) PutChunks(ctx context.Context, bookID string, chunks []book.Chunk) error {
	var body bytes.Buffer
	if err := sink.Encode(ctx, &body, chunks); err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	payload := body.Bytes()

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(c.maxRetries), retry.BackoffFunc(func() (time.Duration, bool) {
		d := c.backoff(attempt)
		attempt++
		return d, false
	}))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.putChunks(ctx, bookID, payload)
		if IsRetryable(err) {
			c.log.Warn("chunk delivery failed, will retry", "book_id", bookID, "attempt", attempt+1, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("deliver %s: %w", bookID, err)
	}
	return nil
}

func (c *Client) putChunks(ctx context.Context, bookID string, payload []byte) error {
	u := c.baseURL + "/books/" + url.PathEscape(bookID) + "/chunks"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-ndjson")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("put chunks: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated, resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put chunks %s: status %d: %s", bookID, resp.StatusCode, string(respBody))
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

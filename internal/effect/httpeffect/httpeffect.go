// Package httpeffect performs http.request effects with a retrying client.
package httpeffect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/specialistvlad/stitchgrid/internal/ctxlog"
	"github.com/specialistvlad/stitchgrid/internal/eval"
	"github.com/specialistvlad/stitchgrid/internal/portvalue"
)

var (
	// ErrMissingRequest is returned for effects without request details.
	ErrMissingRequest = errors.New("effect has no http request")
	// ErrStatus is returned for responses with a 4xx or 5xx status.
	ErrStatus = errors.New("unexpected response status")
)

// Options configures a Handler.
type Options struct {
	RetryMax int
	Timeout  time.Duration
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Handler implements effect.Handler for eval.EffectHTTPRequest.
type Handler struct {
	client  *retryablehttp.Client
	maxBody int64
}

// New creates a Handler.
func New(opts Options) *Handler {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.CheckRetry = checkRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}
	client.Logger = nil
	if opts.Logger != nil {
		client.Logger = opts.Logger
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 4 << 20
	}
	return &Handler{client: client, maxBody: maxBody}
}

// Handle sends the request and returns the decoded response.
func (h *Handler) Handle(ctx context.Context, eff eval.Effect) (portvalue.Value, error) {
	if eff.HTTP == nil {
		return nil, ErrMissingRequest
	}
	req, err := h.newRequest(ctx, eff.HTTP)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	ctxlog.FromContext(ctx).Debug("HTTP response received.", "method", req.Method, "status", resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	headers := make(map[string]any, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return eval.HTTPResponse{
		Status:  resp.StatusCode,
		Headers: headers,
		Body:    decodeBody(raw),
	}.Value(), nil
}

// checkRetry retries transport errors and 5xx responses only. Any other
// status, 429 included, is returned to the caller as is.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode < http.StatusInternalServerError {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (h *Handler) newRequest(ctx context.Context, r *eval.HTTPRequest) (*retryablehttp.Request, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", r.URL, err)
	}
	if len(r.Query) > 0 {
		q := u.Query()
		for k, v := range r.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body []byte
	if r.Body != nil && r.Method != http.MethodGet {
		body, err = json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// decodeBody returns the JSON document in raw, or raw as a string when it
// is not JSON.
func decodeBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(raw)
	}
	return v
}

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crimson-sun/synccheck/internal/model"
	"github.com/crimson-sun/synccheck/internal/output"
)

const defaultTimeout = 10 * time.Second

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) {
		if d > 0 {
			o.client.Timeout = d
		}
	}
}

// WithRunID stamps the payload with the id of the run that produced it.
func WithRunID(id string) Option {
	return func(o *Output) { o.runID = id }
}

// Output POSTs each verdict to an HTTP endpoint as one JSON output.Record.
// A failed delivery is reported, never retried.
type Output struct {
	client  *http.Client
	url     string
	headers map[string]string
	runID   string
}

// New creates a webhook output targeting the given URL.
func New(url string, opts ...Option) *Output {
	o := &Output{
		client: &http.Client{Timeout: defaultTimeout},
		url:    url,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Output) Write(ctx context.Context, v model.Verdict) error {
	body, err := json.Marshal(output.NewRecord(v, o.runID))
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}

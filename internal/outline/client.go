package outline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ginger-beaver/OutlineBot/internal/metrics"
	"github.com/ginger-beaver/OutlineBot/internal/tlspin"
)

// ErrServer is returned when the management API answers with a non-success
// status on an operation that cannot report failure as a boolean.
var ErrServer = errors.New("outline server error")

// StatusError carries a non-2xx response. It matches ErrServer with errors.Is.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("outline api error: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return ErrServer }

type HttpClientInterface interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	hc      HttpClientInterface
	closer  func()
}

// New builds a client for the management API at apiURL, trusting only the
// certificate matching fingerprint.
func New(apiURL, fingerprint string, timeout time.Duration) (*Client, error) {
	fp, err := tlspin.ParseFingerprint(fingerprint)
	if err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(apiURL); err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}

	pinned := tlspin.NewClient(fp, timeout, metrics.InstrumentOutline)
	c := NewWithHTTPClient(apiURL, pinned)
	c.closer = pinned.Close
	return c, nil
}

func NewWithHTTPClient(apiURL string, hc HttpClientInterface) *Client {
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/"),
		hc:      hc,
	}
}

// Close releases the connection pool. The client must not be used afterwards.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	var contentType string
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) doForm(ctx context.Context, method, path string, form url.Values, out any) error {
	return c.do(ctx, method, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// accepted turns the outcome of a call whose only result is success into the
// boolean form: a non-2xx status is a plain false, transport errors stay errors.
func accepted(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false, nil
	}
	return false, err
}

// Package tableclient talks to the table API over HTTP.
package tableclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("table api unavailable")
	ErrRejected    = errors.New("request rejected")
)

// APIError carries the status and message of a failed call.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("table api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

type Health struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

type Row = map[string]any

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Token, when set, supplies a bearer token for writes.
	Token func() (string, bool)
}

func New(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	resp, err := c.do(ctx, http.MethodGet, "/api/health", nil, false)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Health{}, decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, errors.Wrap(err, "decode health")
	}
	return h, nil
}

func (c *Client) List(ctx context.Context, table string) ([]Row, error) {
	var rows []Row
	if err := c.call(ctx, http.MethodGet, "/api/tables/"+url.PathEscape(table), nil, false, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) Get(ctx context.Context, table string, id int64) (Row, error) {
	var row Row
	path := "/api/tables/" + url.PathEscape(table) + "/" + strconv.FormatInt(id, 10)
	if err := c.call(ctx, http.MethodGet, path, nil, false, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Create posts record to table and returns the new id.
func (c *Client) Create(ctx context.Context, table string, record map[string]any) (int64, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return 0, errors.Wrap(err, "encode record")
	}

	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/tables/"+url.PathEscape(table), body, true, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) call(ctx context.Context, method, path string, body []byte, auth bool, data any) error {
	resp, err := c.do(ctx, method, path, body, auth)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, data); err != nil {
		return errors.Wrap(err, "decode data")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, auth bool) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.Token != nil {
		if tok, ok := c.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	var env envelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	msg := http.StatusText(resp.StatusCode)
	if json.Unmarshal(raw, &env) == nil && env.Error != "" {
		msg = env.Error
	}

	kind := ErrRejected
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusServiceUnavailable:
		kind = ErrUnavailable
	}
	return &APIError{Status: resp.StatusCode, Message: msg, kind: kind}
}

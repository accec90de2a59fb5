// Package client talks to the students-api record store over its REST
// contract and normalises every failure into a TransportError or a
// ValidationError. It never retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/student-roster/internal/metrics"
	"github.com/aanand-mishra/student-roster/internal/types"
	"github.com/aanand-mishra/student-roster/internal/utils/response"
)

const collectionPath = "/api/students"

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client is a record store client. The zero value is not usable; use New.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	rec     metrics.Recorder
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRecorder observes every call.
func WithRecorder(rec metrics.Recorder) Option {
	return func(c *Client) { c.rec = rec }
}

// WithLogger sets the logger used for failed calls.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout bounds each request, whichever *http.Client is in use. Zero
// leaves the client's own timeout in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the store rooted at baseURL
// (e.g. "http://localhost:8082").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{},
		rec:  metrics.Nop{},
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// List fetches the whole collection in store order.
func (c *Client) List(ctx context.Context) (students []types.Student, err error) {
	defer c.observe(ctx, "list", time.Now(), &err)

	res, err := c.do(ctx, http.MethodGet, collectionPath, nil)
	if err != nil {
		return nil, &TransportError{Op: "load students", Err: err}
	}
	defer res.Body.Close()

	if !success(res.StatusCode) {
		drain(res.Body)
		return nil, &TransportError{Op: "load students", Status: res.StatusCode}
	}
	if err := json.NewDecoder(res.Body).Decode(&students); err != nil {
		return nil, &TransportError{Op: "load students", Status: res.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	if students == nil {
		students = []types.Student{}
	}
	return students, nil
}

// Create posts a new student. The store assigns the id.
func (c *Client) Create(ctx context.Context, draft types.Draft) (err error) {
	defer c.observe(ctx, "create", time.Now(), &err)
	return c.write(ctx, http.MethodPost, collectionPath, draft)
}

// Update replaces every attribute of student id.
func (c *Client) Update(ctx context.Context, id int64, draft types.Draft) (err error) {
	defer c.observe(ctx, "update", time.Now(), &err)
	return c.write(ctx, http.MethodPut, itemPath(id), draft)
}

// Delete removes student id.
func (c *Client) Delete(ctx context.Context, id int64) (err error) {
	defer c.observe(ctx, "delete", time.Now(), &err)

	res, err := c.do(ctx, http.MethodDelete, itemPath(id), nil)
	if err != nil {
		return &TransportError{Op: "delete student", Err: err}
	}
	defer res.Body.Close()
	drain(res.Body)

	if !success(res.StatusCode) {
		return &TransportError{Op: "delete student", Status: res.StatusCode}
	}
	return nil
}

// write is the shared create/update path. A rejected payload with a body
// becomes a ValidationError carrying the store's message.
func (c *Client) write(ctx context.Context, method, path string, draft types.Draft) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return &TransportError{Op: "save student", Err: fmt.Errorf("encode: %w", err)}
	}

	res, err := c.do(ctx, method, path, body)
	if err != nil {
		return &TransportError{Op: "save student", Err: err}
	}
	defer res.Body.Close()

	if success(res.StatusCode) {
		drain(res.Body)
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return &TransportError{Op: "save student", Status: res.StatusCode, Err: err}
	}
	if msg := errorMessage(raw); msg != "" {
		return &ValidationError{Status: res.StatusCode, Message: msg}
	}
	return &TransportError{Op: "save student", Status: res.StatusCode}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func (c *Client) observe(ctx context.Context, op string, start time.Time, err *error) {
	c.rec.Observe(ctx, op, *err == nil, time.Since(start))
	if *err != nil {
		c.log.Warn("record store call failed",
			slog.String("operation", op),
			slog.String("error", describe(*err)))
	}
}

// errorMessage extracts the store's explanation from a failed response:
// the "error" field of the JSON envelope if present, else the raw text.
func errorMessage(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return ""
	}
	var env response.Response
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return text
}

func describe(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		detail := metrics.StatusLabel(te.Status)
		if te.Err != nil {
			detail += ": " + te.Err.Error()
		}
		return te.Error() + " (" + detail + ")"
	}
	return err.Error()
}

func itemPath(id int64) string {
	return collectionPath + "/" + strconv.FormatInt(id, 10)
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
}

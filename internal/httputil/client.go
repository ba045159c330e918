// Package httputil provides the HTTP client abstraction used by the
// analysis and narrative clients, and JSON response helpers for the
// dashboard handlers.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// HTTPClient abstracts HTTP operations for testability.
// Use StandardClient for production; MockHTTPClient for testing.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// StandardClient wraps *http.Client to implement HTTPClient.
type StandardClient struct {
	*http.Client
}

// NewStandardClient creates a new StandardClient wrapping the given http.Client.
// No client timeout is set by default: callers bound requests through their
// context.
func NewStandardClient(c *http.Client) *StandardClient {
	if c == nil {
		c = &http.Client{}
	}
	return &StandardClient{Client: c}
}

// Do sends an HTTP request.
func (c *StandardClient) Do(req *http.Request) (*http.Response, error) {
	return c.Client.Do(req)
}

// PostJSON marshals payload and posts it to url with the given context.
func PostJSON(ctx context.Context, c HTTPClient, url string, payload interface{}) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.Do(req)
}

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 8 << 20

// ReadBody reads and closes a response body, capped at 8 MiB.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// IsSuccess reports whether the status code is 2xx.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// Call is one request seen by MockHTTPClient. Body holds the request body
// as sent, since the request's own Body has been drained.
type Call struct {
	Request *http.Request
	Body    []byte
}

// MockHTTPClient answers requests from a queue of canned replies, or from
// DoFunc when set. DoFunc runs without the mock's lock held so it may block
// on the request context while other requests proceed.
type MockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)

	mu      sync.Mutex
	calls   []Call
	replies []mockReply
}

type mockReply struct {
	status int
	body   string
	err    error
}

// NewMockHTTPClient creates a mock with an empty reply queue. Once the
// queue is drained every request gets an empty 200.
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{}
}

// AddResponse queues a JSON reply.
func (m *MockHTTPClient) AddResponse(statusCode int, body string) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, mockReply{status: statusCode, body: body})
	return m
}

// AddErrorResponse queues a transport error.
func (m *MockHTTPClient) AddErrorResponse(err error) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, mockReply{err: err})
	return m
}

// Do records the request and returns the next queued reply.
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Request: req, Body: body})
	doFunc := m.DoFunc
	next := mockReply{status: http.StatusOK}
	if doFunc == nil && len(m.replies) > 0 {
		next, m.replies = m.replies[0], m.replies[1:]
	}
	m.mu.Unlock()

	if doFunc != nil {
		return doFunc(req)
	}
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	if next.err != nil {
		return nil, next.err
	}
	return NewResponse(req, next.status, next.body), nil
}

// NewResponse builds a JSON response for req, for use inside DoFunc.
func NewResponse(req *http.Request, statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}
}

// Call returns the nth recorded request.
func (m *MockHTTPClient) Call(n int) (Call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= len(m.calls) {
		return Call{}, false
	}
	return m.calls[n], true
}

// RequestCount returns the number of recorded requests.
func (m *MockHTTPClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

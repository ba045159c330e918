// Package testutil provides shared test helpers for the dashboard packages:
// capturing the monitoring logger and exercising JSON handlers.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/banshee-data/hydro.report/internal/monitoring"
)

// LoopbackAddr is the RemoteAddr given to requests built by NewJSONRequest,
// so debug routes that require a local caller accept them.
const LoopbackAddr = "127.0.0.1:50000"

// LogCapture collects monitoring output for the duration of a test.
type LogCapture struct {
	mu    sync.Mutex
	lines []string
}

// CaptureLogs redirects monitoring.Logf into a LogCapture until the test
// ends.
func CaptureLogs(t testing.TB) *LogCapture {
	t.Helper()
	lc := &LogCapture{}
	prev := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lc.mu.Lock()
		defer lc.mu.Unlock()
		lc.lines = append(lc.lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(prev) })
	return lc
}

// MuteLogs discards monitoring output until the test ends.
func MuteLogs(t testing.TB) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}

// Contains reports whether any captured line contains s.
func (lc *LogCapture) Contains(s string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	for _, l := range lc.lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

// Lines returns a copy of the captured lines.
func (lc *LogCapture) Lines() []string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return append([]string(nil), lc.lines...)
}

// NewJSONRequest builds a request from a loopback address. A non-empty body
// is sent as application/json.
func NewJSONRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = LoopbackAddr
	return req
}

// DecodeJSON decodes the recorded body into v, failing the test on error.
func DecodeJSON(t testing.TB, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// ErrorMessage returns the "error" field of a JSON error response.
func ErrorMessage(t testing.TB, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	DecodeJSON(t, rec, &body)
	return body["error"]
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status code = %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}

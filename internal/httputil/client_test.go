package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStandardClient_Wraps(t *testing.T) {
	customClient := &http.Client{}
	client := NewStandardClient(customClient)

	if client.Client != customClient {
		t.Error("expected custom client to be wrapped")
	}
	if NewStandardClient(nil).Client == nil {
		t.Error("expected a default client")
	}
}

func TestPostJSON(t *testing.T) {
	var got map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	resp, err := PostJSON(context.Background(), NewStandardClient(srv.Client()), srv.URL, map[string]float64{"lat": 1, "lng": 2})
	if err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	body, err := ReadBody(resp)
	if err != nil {
		t.Fatalf("ReadBody() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %q", body)
	}
	if got["lat"] != 1 || got["lng"] != 2 {
		t.Errorf("server received %v", got)
	}
}

func TestPostJSON_ContextCancelled(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := PostJSON(ctx, NewStandardClient(srv.Client()), srv.URL, struct{}{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestIsSuccess(t *testing.T) {
	for code, want := range map[int]bool{199: false, 200: true, 204: true, 299: true, 300: false, 500: false} {
		if got := IsSuccess(code); got != want {
			t.Errorf("IsSuccess(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestMockHTTPClient_QueuedResponses(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"area": 1}`)
	mock.AddErrorResponse(errors.New("connection refused"))

	resp, err := PostJSON(context.Background(), mock, "http://example.com/api/analyze", struct{}{})
	if err != nil {
		t.Fatalf("first request error = %v", err)
	}
	body, _ := ReadBody(resp)
	if string(body) != `{"area": 1}` {
		t.Errorf("body = %q", body)
	}

	if _, err := PostJSON(context.Background(), mock, "http://example.com/api/analyze", struct{}{}); err == nil {
		t.Error("second request should fail")
	}

	if mock.RequestCount() != 2 {
		t.Errorf("RequestCount() = %d, want 2", mock.RequestCount())
	}
	call, ok := mock.Call(0)
	if !ok || call.Request.URL.Path != "/api/analyze" {
		t.Errorf("Call(0) = %v, %v", call.Request, ok)
	}
	if string(call.Body) != "{}" {
		t.Errorf("recorded body = %q, want {}", call.Body)
	}
	if _, ok := mock.Call(5); ok {
		t.Error("Call(5) should not exist")
	}

	resp, err = PostJSON(context.Background(), mock, "http://example.com/api/analyze", struct{}{})
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("drained queue should answer 200, got %v, %v", resp, err)
	}
}

func TestMockHTTPClient_DoFuncDoesNotHoldLock(t *testing.T) {
	mock := NewMockHTTPClient()
	release := make(chan struct{})
	mock.DoFunc = func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("X-Block") != "" {
			<-release
		}
		return NewResponse(req, http.StatusOK, "{}"), nil
	}

	blocked := make(chan struct{})
	go func() {
		defer close(blocked)
		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		req.Header.Set("X-Block", "1")
		_, _ = mock.Do(req)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
		_, _ = mock.Do(req)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second request blocked behind the first")
	}
	close(release)
	<-blocked
}

func TestMockHTTPClient_CancelledContext(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "{}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := PostJSON(ctx, mock, "http://example.com", struct{}{}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONError(rec, http.StatusBadRequest, "Missing coordinates")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %s, want application/json", ct)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["error"] != "Missing coordinates" {
		t.Errorf("error = %s, want 'Missing coordinates'", resp["error"])
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusAccepted, map[string]string{"session_id": "abc"})

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["session_id"] != "abc" {
		t.Errorf("session_id = %s, want 'abc'", resp["session_id"])
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
	}{
		{"ok", func(w http.ResponseWriter) { WriteJSONOK(w, map[string]int{"n": 1}) }, http.StatusOK},
		{"method not allowed", MethodNotAllowed, http.StatusMethodNotAllowed},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad") }, http.StatusBadRequest},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing") }, http.StatusNotFound},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "boom") }, http.StatusInternalServerError},
		{"bad gateway", func(w http.ResponseWriter) { BadGateway(w, "upstream") }, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	var v struct {
		Lat float64 `json:"lat"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lat": 12.5}`))
	if err := DecodeJSONBody(req, &v); err != nil {
		t.Fatalf("DecodeJSONBody() error = %v", err)
	}
	if v.Lat != 12.5 {
		t.Errorf("lat = %v, want 12.5", v.Lat)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSONBody(req, &v); !errors.Is(err, io.EOF) {
		t.Errorf("empty body error = %v, want io.EOF", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	if err := DecodeJSONBody(req, &v); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("malformed body error = %v, want decode error", err)
	}
}

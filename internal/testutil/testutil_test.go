package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/hydro.report/internal/httputil"
	"github.com/banshee-data/hydro.report/internal/monitoring"
)

func TestCaptureLogs(t *testing.T) {
	outer := CaptureLogs(t)
	t.Run("capture", func(t *testing.T) {
		lc := CaptureLogs(t)
		monitoring.Component("Sweep")("session %s done", "abc")

		if !lc.Contains("[Sweep] session abc done") {
			t.Errorf("lines = %q, want the component line", lc.Lines())
		}
		if lc.Contains("missing") {
			t.Error("Contains matched a line that was never logged")
		}
	})
	monitoring.Logf("after")

	if outer.Contains("session abc done") {
		t.Error("inner capture leaked into the outer logger")
	}
	if !outer.Contains("after") {
		t.Error("outer logger was not restored")
	}
}

func TestMuteLogs(t *testing.T) {
	lc := CaptureLogs(t)
	t.Run("muted", func(t *testing.T) {
		MuteLogs(t)
		monitoring.Logf("hidden")
	})
	monitoring.Logf("visible")

	if lc.Contains("hidden") {
		t.Error("muted line was captured")
	}
	if !lc.Contains("visible") {
		t.Error("capture was not restored after MuteLogs")
	}
}

func TestNewJSONRequest(t *testing.T) {
	req := NewJSONRequest(http.MethodPost, "/api/scan", `{"lat":1,"lng":2}`)
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if req.RemoteAddr != LoopbackAddr {
		t.Errorf("RemoteAddr = %q", req.RemoteAddr)
	}

	get := NewJSONRequest(http.MethodGet, "/api/state", "")
	if get.Header.Get("Content-Type") != "" {
		t.Error("GET without body should not set Content-Type")
	}
}

func TestDecodeHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	httputil.BadRequest(rec, "Missing coordinates")

	AssertStatusCode(t, rec, http.StatusBadRequest)
	if got := ErrorMessage(t, rec); got != "Missing coordinates" {
		t.Errorf("ErrorMessage = %q", got)
	}

	var raw map[string]interface{}
	DecodeJSON(t, rec, &raw)
	if len(raw) != 1 {
		t.Errorf("body = %v, want only the error field", raw)
	}
}

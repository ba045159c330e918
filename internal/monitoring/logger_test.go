package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestComponent(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	logf := Component("ScanController")
	logf("started session %s", "abc")

	if want := "[ScanController] started session abc"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestComponent_FollowsSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	logf := Component("x")

	var lines int
	SetLogger(func(string, ...interface{}) { lines++ })
	logf("one")
	SetLogger(nil)
	logf("two")

	if lines != 1 {
		t.Errorf("lines = %d, want 1", lines)
	}
}

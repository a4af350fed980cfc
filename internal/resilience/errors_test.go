package resilience

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"
)

func TestIsTransient_ExplicitTransientError(t *testing.T) {
	if !IsTransient(NewTransientError(errors.New("server overloaded"), 503)) {
		t.Error("expected TransientError to be transient")
	}
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	wrapped := fmt.Errorf("throxy: %w", NewTransientError(errors.New("rate limited"), 429))
	if !IsTransient(wrapped) {
		t.Error("expected wrapped TransientError to be transient")
	}
}

func TestIsTransient_NilError(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil error should not be transient")
	}
}

func TestIsTransient_RegularError(t *testing.T) {
	if IsTransient(errors.New("invalid Throxy API key")) {
		t.Error("regular error should not be transient")
	}
}

func TestIsTransient_Syscalls(t *testing.T) {
	for _, errno := range []syscall.Errno{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED} {
		if !IsTransient(fmt.Errorf("dial tcp: %w", errno)) {
			t.Errorf("%v should be transient", errno)
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient_NetTimeout(t *testing.T) {
	if !IsTransient(fmt.Errorf("get: %w", timeoutErr{})) {
		t.Error("net timeout should be transient")
	}
}

func TestIsTransient_StringPatterns(t *testing.T) {
	for _, msg := range []string{
		"read: connection reset by peer",
		"write: broken pipe",
		"net/http: TLS handshake timeout",
		"Post \"https://app.throxy.ai\": unexpected EOF",
	} {
		if !IsTransient(errors.New(msg)) {
			t.Errorf("%q should be transient", msg)
		}
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("%d should be transient", code)
		}
	}
	for _, code := range []int{200, 400, 401, 403, 404, 501} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("%d should not be transient", code)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{" 12 ", 12 * time.Second},
		{"-3", 0},
		{"soon", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, c := range cases {
		if got := ParseRetryAfter(c.in, now); got != c.want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFromResponse(t *testing.T) {
	base := errors.New("Rate limit exceeded")

	resp := &http.Response{StatusCode: 429, Header: http.Header{"Retry-After": []string{"7"}}}
	err := FromResponse(base, resp)
	if !IsTransient(err) {
		t.Fatal("429 should be transient")
	}
	if got := RetryAfterOf(err); got != 7*time.Second {
		t.Errorf("retry after = %v, want 7s", got)
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the original")
	}

	unauthorized := FromResponse(base, &http.Response{StatusCode: 401, Header: http.Header{}})
	if IsTransient(unauthorized) {
		t.Error("401 should not be transient")
	}
	if FromResponse(nil, resp) != nil {
		t.Error("nil error should stay nil")
	}
	if FromResponse(base, nil) != base {
		t.Error("nil response should return err unchanged")
	}
}

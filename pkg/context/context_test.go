package ctxutil

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestNewContextWithRequestSeedsMetadata(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/users/profile", nil)
	req.RemoteAddr = "203.0.113.7:52311"
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.Header.Set("X-Request-ID", "req-123")

	ctx := NewContextWithRequest(context.Background(), req, "account-service", "/api/users/profile")

	if got := GetClientIP(ctx); got != "203.0.113.7" {
		t.Errorf("client ip = %q, want %q", got, "203.0.113.7")
	}
	if got := GetUserAgent(ctx); got != "test-agent/1.0" {
		t.Errorf("user agent = %q, want %q", got, "test-agent/1.0")
	}
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("request id = %q, want %q", got, "req-123")
	}
	if got := GetModule(ctx); got != "account-service" {
		t.Errorf("module = %q, want %q", got, "account-service")
	}
	if GetStartTime(ctx).IsZero() {
		t.Error("start time not seeded")
	}
	if GetDuration(ctx) < 0 {
		t.Error("duration went backwards")
	}
}

func TestNewContextWithRequestKeepsSeededClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	// A proxy-aware address placed by the middleware wins over the peer
	// address fallback.
	ctx := WithClientIP(context.Background(), "198.51.100.9")
	ctx = NewContextWithRequest(ctx, req, "account-service", "/")

	if got := GetClientIP(ctx); got != "198.51.100.9" {
		t.Errorf("client ip = %q, want %q", got, "198.51.100.9")
	}
}

func TestWithOperation(t *testing.T) {
	ctx := WithOperation(context.Background(), "service", "Refresh")

	if got := GetModule(ctx); got != "service" {
		t.Errorf("module = %q, want %q", got, "service")
	}
	if got := GetFunction(ctx); got != "Refresh" {
		t.Errorf("function = %q, want %q", got, "Refresh")
	}
}

func TestGetDurationWithoutStartTime(t *testing.T) {
	if got := GetDuration(context.Background()); got != 0 {
		t.Errorf("duration on unseeded context = %v, want 0", got)
	}
}

func TestWithUserID(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-1")
	if got := GetUserID(ctx); got != "user-1" {
		t.Errorf("user id = %q, want %q", got, "user-1")
	}
}

func TestNewContextWithRequestNilInputs(t *testing.T) {
	ctx := NewContextWithRequest(nil, nil, "account-service", "startup")

	if got := GetModule(ctx); got != "account-service" {
		t.Errorf("module = %q, want %q", got, "account-service")
	}
	if GetStartTime(ctx).IsZero() {
		t.Error("start time not seeded")
	}
	if got := GetClientIP(ctx); got != "" {
		t.Errorf("client ip without a request = %q, want empty", got)
	}
}

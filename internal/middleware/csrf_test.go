package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDefaultCSRFConfig_Development(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012") // 32-byte key
	cfg := DefaultCSRFConfig(authKey, true, "localhost:8080")

	if len(cfg.AuthKey) != 32 {
		t.Errorf("expected 32-byte AuthKey, got %d bytes", len(cfg.AuthKey))
	}

	// Check TrustedOrigins are host-only (not full URLs)
	// This is critical for the csrf library to work correctly
	expectedOrigins := map[string]bool{
		"localhost:8080": true,
		"127.0.0.1:8080": true,
	}
	if len(cfg.TrustedOrigins) != len(expectedOrigins) {
		t.Errorf("expected %d TrustedOrigins in dev mode, got %d: %v", len(expectedOrigins), len(cfg.TrustedOrigins), cfg.TrustedOrigins)
	}

	for _, origin := range cfg.TrustedOrigins {
		if !expectedOrigins[origin] {
			t.Errorf("unexpected TrustedOrigin: %s (should be host:port, not full URL)", origin)
		}
	}
}

func TestDefaultCSRFConfig_DevelopmentCustomHost(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, true, "0.0.0.0:9000")

	want := []string{"0.0.0.0:9000", "localhost:9000", "127.0.0.1:9000"}
	if len(cfg.TrustedOrigins) != len(want) {
		t.Fatalf("TrustedOrigins = %v, want %v", cfg.TrustedOrigins, want)
	}
	for i, origin := range want {
		if cfg.TrustedOrigins[i] != origin {
			t.Errorf("TrustedOrigins[%d] = %q, want %q", i, cfg.TrustedOrigins[i], origin)
		}
	}
}

func TestDefaultCSRFConfig_Production(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, false, "localhost:8080")

	if len(cfg.AuthKey) != 32 {
		t.Errorf("expected 32-byte AuthKey, got %d bytes", len(cfg.AuthKey))
	}

	// Check no TrustedOrigins in production (stricter security)
	if len(cfg.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %d", len(cfg.TrustedOrigins))
	}
}

// TestTrustedOriginsFormat validates that TrustedOrigins use the correct format.
// The csrf library expects host:port format, NOT full URLs.
// Using full URLs (http://localhost:8080) causes "origin invalid" errors.
func TestTrustedOriginsFormat(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, true, "localhost:8080")

	for _, origin := range cfg.TrustedOrigins {
		if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			t.Errorf("TrustedOrigin '%s' should be host:port format, not full URL", origin)
		}
		if !strings.Contains(origin, ":") {
			t.Errorf("TrustedOrigin '%s' should include port (e.g., localhost:8080)", origin)
		}
	}
}

func TestCSRF_MiddlewareCreation(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, true, "localhost:8080")

	// Should not panic when creating middleware
	middleware := CSRF(cfg)

	if middleware == nil {
		t.Error("expected middleware to be non-nil")
	}

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware(testHandler)

	if handler == nil {
		t.Error("expected wrapped handler to be non-nil")
	}
}

func TestCSRF_GETPassesThrough(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, true, "localhost:8080")

	handler := CSRF(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200 (safe methods are not blocked)", rr.Code)
	}
}

func TestCSRF_WithCustomErrorHandler(t *testing.T) {
	authKey := []byte("12345678901234567890123456789012")
	cfg := DefaultCSRFConfig(authKey, true, "localhost:8080")

	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Custom CSRF Error", http.StatusForbidden)
	})

	middleware := CSRF(cfg)

	if middleware == nil {
		t.Error("expected middleware to be non-nil with custom error handler")
	}
}

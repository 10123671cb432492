// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticCache(t *testing.T) {
	tests := []struct {
		name      string
		maxAge    int
		immutable bool
		want      string
	}{
		{
			name:   "one hour",
			maxAge: 3600,
			want:   "public, max-age=3600",
		},
		{
			name:      "one year immutable",
			maxAge:    31536000,
			immutable: true,
			want:      "public, max-age=31536000, immutable",
		},
		{
			name:   "one week",
			maxAge: 604800,
			want:   "public, max-age=604800",
		},
		{
			name:   "zero",
			maxAge: 0,
			want:   "public, max-age=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			middleware := StaticCache(tt.maxAge, tt.immutable)
			wrapped := middleware(handler)

			req := httptest.NewRequest(http.MethodGet, "/static/style.css", nil)
			rr := httptest.NewRecorder()

			wrapped.ServeHTTP(rr, req)

			got := rr.Header().Get("Cache-Control")
			if got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaticCachePreservesResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("body { margin: 0 }"))
	})

	middleware := StaticCache(3600, false)
	wrapped := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/static/style.css", nil)
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "text/css" {
		t.Errorf("Content-Type = %q, want %q", ct, "text/css")
	}

	if body := rr.Body.String(); body != "body { margin: 0 }" {
		t.Errorf("Body = %q, want %q", body, "body { margin: 0 }")
	}

	if cc := rr.Header().Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q, want %q", cc, "public, max-age=3600")
	}
}

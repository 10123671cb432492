// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashAndRedirect(t *testing.T) {
	_, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	cases := []struct {
		name     string
		flashFn  string
		wantType string
	}{
		{"error", "error", "error"},
		{"success", "success", "success"},
		{"warning", "warning", "warning"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := requestWithSession(sm, httptest.NewRequest(http.MethodPost, "/somewhere", nil))
			w := httptest.NewRecorder()

			switch tc.flashFn {
			case "error":
				flashError(w, req, renderer, "/target", "boom")
			case "success":
				flashSuccess(w, req, renderer, "/target", "boom")
			case "warning":
				flashWarning(w, req, renderer, "/target", "boom")
			}

			assertStatus(t, w.Code, http.StatusSeeOther)
			if loc := w.Header().Get("Location"); loc != "/target" {
				t.Errorf("Location = %q; want /target", loc)
			}
			if flash := sm.GetString(req.Context(), "flash"); flash != "boom" {
				t.Errorf("flash = %q; want %q", flash, "boom")
			}
			if ft := sm.GetString(req.Context(), "flash_type"); ft != tc.wantType {
				t.Errorf("flash_type = %q; want %q", ft, tc.wantType)
			}
		})
	}
}

func TestLogAndHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		statusCode int
	}{
		{"bad request", "Bad Request", http.StatusBadRequest},
		{"not found", "Not Found", http.StatusNotFound},
		{"internal error", "Internal Server Error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			logAndHTTPError(w, tt.message, tt.statusCode, "something failed", "key", "value")

			if w.Code != tt.statusCode {
				t.Errorf("status code = %d, want %d", w.Code, tt.statusCode)
			}
			if w.Body.String() == "" {
				t.Error("body should not be empty")
			}
		})
	}
}

func TestLogAndInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	logAndInternalError(w, "db exploded", "error", "details")

	assertStatus(t, w.Code, http.StatusInternalServerError)
}

func TestParseFormOrRedirect_BadBody(t *testing.T) {
	_, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	// A body that fails url.ParseQuery: a bare '%' is an invalid escape.
	req := requestWithSession(sm, httptest.NewRequest(http.MethodPost, "/somewhere",
		errReader{}))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	if parseFormOrRedirect(w, req, renderer, "/back") {
		t.Error("parseFormOrRedirect = true; want false for unreadable body")
	}
	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/back" {
		t.Errorf("Location = %q; want /back", loc)
	}
}

// errReader always fails, making ParseForm error out.
type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, http.ErrBodyReadAfterClose
}

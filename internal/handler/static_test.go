// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStaticHandler_RendersEmbeddedMarkdown(t *testing.T) {
	_, sm := testHandlerSetup(t)
	h, err := NewStaticHandler(testRenderer(t, sm))
	if err != nil {
		t.Fatalf("NewStaticHandler: %v", err)
	}

	tests := []struct {
		name      string
		serve     http.HandlerFunc
		wantTitle string
	}{
		{"about", h.About, "About Me"},
		{"contact", h.Contact, "Contact Me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, "/"+tt.name, nil))
			w := httptest.NewRecorder()

			tt.serve(w, req)

			assertStatus(t, w.Code, http.StatusOK)
			body := w.Body.String()
			if !strings.Contains(body, tt.wantTitle) {
				t.Errorf("body = %q; want title %q", body, tt.wantTitle)
			}
			// Markdown headings become HTML.
			if !strings.Contains(body, "<h1>") {
				t.Errorf("body = %q; want converted markdown", body)
			}
		})
	}
}

func TestConvertMarkdown_MissingFile(t *testing.T) {
	if _, err := convertMarkdown("content/does-not-exist.md"); err == nil {
		t.Error("expected error for missing content file")
	}
}

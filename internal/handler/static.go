// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/web"
)

// StaticHandler serves the About and Contact pages. Their markdown
// sources are embedded in the binary and converted to HTML once at
// startup.
type StaticHandler struct {
	renderer *render.Renderer
	about    template.HTML
	contact  template.HTML
}

// NewStaticHandler converts the embedded markdown pages and returns the
// handler. It fails when a page is missing or does not convert.
func NewStaticHandler(renderer *render.Renderer) (*StaticHandler, error) {
	about, err := convertMarkdown("content/about.md")
	if err != nil {
		return nil, err
	}

	contact, err := convertMarkdown("content/contact.md")
	if err != nil {
		return nil, err
	}

	return &StaticHandler{
		renderer: renderer,
		about:    about,
		contact:  contact,
	}, nil
}

// StaticPageData holds data for the static page template.
type StaticPageData struct {
	Content template.HTML
}

// About handles GET /about.
func (h *StaticHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderStatic(w, r, "About Me", h.about)
}

// Contact handles GET /contact.
func (h *StaticHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderStatic(w, r, "Contact Me", h.contact)
}

func (h *StaticHandler) renderStatic(w http.ResponseWriter, r *http.Request, title string, content template.HTML) {
	if err := h.renderer.Render(w, r, "static_page", render.TemplateData{
		Title:     title,
		Principal: middleware.GetPrincipal(r),
		Data:      StaticPageData{Content: content},
	}); err != nil {
		logAndInternalError(w, "failed to render page", "template", "static_page", "error", err)
	}
}

// convertMarkdown converts one embedded markdown file to HTML.
func convertMarkdown(path string) (template.HTML, error) {
	source, err := web.Content.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := goldmark.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("convert %s: %w", path, err)
	}

	return template.HTML(buf.String()), nil //nolint:gosec // trusted embedded markdown
}

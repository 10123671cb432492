// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
)

// htmlSanitizer provides a reusable HTML sanitization policy for rich-text
// form fields (post bodies and comments). It uses bluemonday's UGCPolicy
// which allows safe HTML tags for user-generated content while stripping
// potentially dangerous elements like <script>, event handlers, etc.
var htmlSanitizer = bluemonday.UGCPolicy()

// ParseIDParam parses the {id} route parameter as an int64.
func ParseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

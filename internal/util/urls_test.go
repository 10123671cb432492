// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"
)

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string // substring of expected error message
	}{
		// Valid URLs
		{
			name:    "valid https",
			url:     "https://images.example.com/header.jpg",
			wantErr: false,
		},
		{
			name:    "valid http",
			url:     "http://example.com/header.png",
			wantErr: false,
		},
		{
			name:    "valid with port",
			url:     "https://example.com:8443/header.jpg",
			wantErr: false,
		},
		{
			name:    "valid with query",
			url:     "https://example.com/photo?w=1200&fit=crop",
			wantErr: false,
		},

		// Invalid schemes
		{
			name:    "javascript scheme",
			url:     "javascript:alert(1)",
			wantErr: true,
			errMsg:  "http or https",
		},
		{
			name:    "data scheme",
			url:     "data:image/png;base64,iVBORw0KGgo=",
			wantErr: true,
			errMsg:  "http or https",
		},
		{
			name:    "ftp scheme",
			url:     "ftp://example.com/header.jpg",
			wantErr: true,
			errMsg:  "http or https",
		},
		{
			name:    "scheme-relative",
			url:     "//example.com/header.jpg",
			wantErr: true,
			errMsg:  "http or https",
		},

		// Malformed
		{
			name:    "empty",
			url:     "",
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "no hostname",
			url:     "https:///header.jpg",
			wantErr: true,
			errMsg:  "hostname",
		},
		{
			name:    "relative path",
			url:     "/static/header.jpg",
			wantErr: true,
			errMsg:  "http or https",
		},
		{
			name:    "too long",
			url:     "https://example.com/" + strings.Repeat("a", MaxImageURLLength),
			wantErr: true,
			errMsg:  "maximum length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ValidateImageURL(%q) = nil, want error containing %q", tt.url, tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateImageURL(%q) error = %q, want error containing %q", tt.url, err.Error(), tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateImageURL(%q) = %v, want nil", tt.url, err)
				}
			}
		})
	}
}

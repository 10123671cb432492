// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"net/url"
)

// MaxImageURLLength is the maximum allowed length for a post header image URL.
// It matches the blog_posts.img_url column.
const MaxImageURLLength = 250

// ValidateImageURL validates a post header image URL. The image is loaded by
// the reader's browser, so the check rejects non-http schemes (javascript:,
// data:) and malformed values rather than resolving the host.
func ValidateImageURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("image URL is required")
	}
	if len(rawURL) > MaxImageURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxImageURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}

	if parsedURL.Hostname() == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	return nil
}

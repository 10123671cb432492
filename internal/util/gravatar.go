// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"crypto/md5" //nolint:gosec // gravatar addresses are md5 by protocol
	"encoding/hex"
	"fmt"
	"strings"
)

// GravatarSize is the pixel size requested for comment avatars.
const GravatarSize = 100

// GravatarURL returns the Gravatar image URL for an email address.
// The address is trimmed and lowercased before hashing, as the Gravatar
// API requires. Unknown addresses fall back to a generated "retro" image.
func GravatarURL(email string, size int) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized)) //nolint:gosec // not used for security
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=retro&r=g",
		hex.EncodeToString(hash[:]), size)
}

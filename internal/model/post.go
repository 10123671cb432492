// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// PostDateLayout renders post publication dates like "August 25, 2026".
const PostDateLayout = "January 02, 2006"

// BlogPost represents a published blog entry.
type BlogPost struct {
	ID       int64
	AuthorID int64
	Title    string
	Subtitle string
	// Date is the human-readable publication date, stamped once when the
	// post is created and preserved verbatim across edits.
	Date   string
	Body   string
	ImgURL string

	// AuthorName is populated by store queries that join users.
	AuthorName string
}

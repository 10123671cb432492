// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/olegiv/oblog-go/internal/model"
)

const createComment = `
INSERT INTO comments (author_id, post_id, text)
VALUES (?, ?, ?)
RETURNING id, author_id, post_id, text
`

// CreateCommentParams are the arguments for CreateComment.
type CreateCommentParams struct {
	AuthorID int64
	PostID   int64
	Text     string
}

// CreateComment attaches a comment to a post.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (model.Comment, error) {
	row := q.db.QueryRowContext(ctx, createComment,
		arg.AuthorID,
		arg.PostID,
		arg.Text,
	)
	var c model.Comment
	err := row.Scan(
		&c.ID,
		&c.AuthorID,
		&c.PostID,
		&c.Text,
	)
	if err != nil {
		return model.Comment{}, err
	}
	return c, nil
}

const listCommentsForPost = `
SELECT c.id, c.author_id, c.post_id, c.text, u.name, u.email
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.post_id = ?
ORDER BY c.id
`

// ListCommentsForPost returns a post's comments in submission order, with
// each author's name and email joined in for display and avatars.
func (q *Queries) ListCommentsForPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx, listCommentsForPost, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID,
			&c.AuthorID,
			&c.PostID,
			&c.Text,
			&c.AuthorName,
			&c.AuthorEmail,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

const countCommentsForPost = `
SELECT COUNT(*) FROM comments WHERE post_id = ?
`

// CountCommentsForPost returns the number of comments on a post.
func (q *Queries) CountCommentsForPost(ctx context.Context, postID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCommentsForPost, postID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

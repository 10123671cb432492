// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/olegiv/oblog-go/internal/model"
)

const createPost = `
INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, author_id, title, subtitle, date, body, img_url
`

// CreatePostParams are the arguments for CreatePost. Date is the
// display string stamped by the caller at creation time.
type CreatePostParams struct {
	AuthorID int64
	Title    string
	Subtitle string
	Date     string
	Body     string
	ImgURL   string
}

// CreatePost inserts a new blog post. Returns ErrDuplicateTitle when a
// post with the same title already exists.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.BlogPost, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.AuthorID,
		arg.Title,
		arg.Subtitle,
		arg.Date,
		arg.Body,
		arg.ImgURL,
	)
	var p model.BlogPost
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Title,
		&p.Subtitle,
		&p.Date,
		&p.Body,
		&p.ImgURL,
	)
	if err != nil {
		if isUniqueViolation(err, "blog_posts.title") {
			return model.BlogPost{}, ErrDuplicateTitle
		}
		return model.BlogPost{}, err
	}
	return p, nil
}

const getPostByID = `
SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url, u.name
FROM blog_posts p
JOIN users u ON u.id = p.author_id
WHERE p.id = ?
`

// GetPostByID returns the post with the given id, with the author's
// display name joined in, or ErrNotFound.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.BlogPost, error) {
	row := q.db.QueryRowContext(ctx, getPostByID, id)
	var p model.BlogPost
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Title,
		&p.Subtitle,
		&p.Date,
		&p.Body,
		&p.ImgURL,
		&p.AuthorName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BlogPost{}, ErrNotFound
		}
		return model.BlogPost{}, err
	}
	return p, nil
}

const listPosts = `
SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url, u.name
FROM blog_posts p
JOIN users u ON u.id = p.author_id
ORDER BY p.id DESC
`

// ListPosts returns all posts, newest first, with author names joined in.
func (q *Queries) ListPosts(ctx context.Context) ([]model.BlogPost, error) {
	rows, err := q.db.QueryContext(ctx, listPosts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.BlogPost
	for rows.Next() {
		var p model.BlogPost
		if err := rows.Scan(
			&p.ID,
			&p.AuthorID,
			&p.Title,
			&p.Subtitle,
			&p.Date,
			&p.Body,
			&p.ImgURL,
			&p.AuthorName,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const updatePost = `
UPDATE blog_posts
SET author_id = ?, title = ?, subtitle = ?, body = ?, img_url = ?
WHERE id = ?
RETURNING id, author_id, title, subtitle, date, body, img_url
`

// UpdatePostParams are the arguments for UpdatePost. The date column is
// deliberately absent: the publication date never changes on edit.
type UpdatePostParams struct {
	ID       int64
	AuthorID int64
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

// UpdatePost overwrites a post's editable fields, reassigning the author.
// Returns ErrNotFound for an unknown id and ErrDuplicateTitle when the
// new title collides with another post.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (model.BlogPost, error) {
	row := q.db.QueryRowContext(ctx, updatePost,
		arg.AuthorID,
		arg.Title,
		arg.Subtitle,
		arg.Body,
		arg.ImgURL,
		arg.ID,
	)
	var p model.BlogPost
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Title,
		&p.Subtitle,
		&p.Date,
		&p.Body,
		&p.ImgURL,
	)
	if err != nil {
		if isUniqueViolation(err, "blog_posts.title") {
			return model.BlogPost{}, ErrDuplicateTitle
		}
		if errors.Is(err, sql.ErrNoRows) {
			return model.BlogPost{}, ErrNotFound
		}
		return model.BlogPost{}, err
	}
	return p, nil
}

const deletePost = `
DELETE FROM blog_posts WHERE id = ?
`

// DeletePost removes a post; its comments go with it via the cascading
// foreign key. Returns ErrNotFound for an unknown id.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deletePost, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

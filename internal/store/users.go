// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/olegiv/oblog-go/internal/model"
)

const createUser = `
INSERT INTO users (email, password_hash, role, name, created_at, updated_at)
VALUES (?, ?, CASE WHEN EXISTS (SELECT 1 FROM users) THEN ? ELSE ? END, ?, ?, ?)
RETURNING id, email, password_hash, role, name, created_at, updated_at, last_login_at
`

// CreateUserParams does not carry a role on purpose: the role is decided
// inside the insert so the first account ever created becomes the admin
// even under concurrent registrations.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user. The first user in an empty table is
// created with the admin role; everyone else gets the author role.
// Returns ErrDuplicateEmail when the email is already registered.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Email,
		arg.PasswordHash,
		model.RoleAuthor,
		model.RoleAdmin,
		arg.Name,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Name,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, err
	}
	return u, nil
}

const getUserByID = `
SELECT id, email, password_hash, role, name, created_at, updated_at, last_login_at
FROM users
WHERE id = ?
`

// GetUserByID returns the user with the given id, or ErrNotFound.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Name,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

const getUserByEmail = `
SELECT id, email, password_hash, role, name, created_at, updated_at, last_login_at
FROM users
WHERE email = ?
`

// GetUserByEmail returns the user with the given email, or ErrNotFound.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Name,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

const listUsers = `
SELECT id, email, password_hash, role, name, created_at, updated_at, last_login_at
FROM users
ORDER BY id
`

// ListUsers returns all users ordered by id, oldest account first.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.Name,
			&u.CreatedAt,
			&u.UpdatedAt,
			&u.LastLoginAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const countUsers = `
SELECT COUNT(*) FROM users
`

// CountUsers returns the total number of registered users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsers)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateUserLastLogin = `
UPDATE users SET last_login_at = ? WHERE id = ?
`

// UpdateUserLastLoginParams are the arguments for UpdateUserLastLogin.
type UpdateUserLastLoginParams struct {
	ID          int64
	LastLoginAt time.Time
}

// UpdateUserLastLogin stamps the user's last successful login time.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, arg.LastLoginAt, arg.ID)
	return err
}

const updateUserPassword = `
UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
`

// UpdateUserPasswordParams are the arguments for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	ID           int64
	PasswordHash string
	UpdatedAt    time.Time
}

// UpdateUserPassword replaces the stored password digest. Used to upgrade
// digests hashed with outdated parameters after a successful login.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

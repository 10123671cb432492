// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store implements data access for users, blog posts, comments,
// and the event log over SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Sentinel errors. Driver errors are translated at the query layer so
// callers match these with errors.Is instead of scanning driver strings.
var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: no matching record found")
	// ErrDuplicateEmail is returned when a user insert violates the
	// unique email constraint.
	ErrDuplicateEmail = errors.New("store: email already registered")
	// ErrDuplicateTitle is returned when a post insert or update violates
	// the unique title constraint.
	ErrDuplicateTitle = errors.New("store: post title already exists")
)

// DBTX is the subset of database/sql used by Queries. Both *sql.DB and
// *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds all SQL operations against the blog schema.
type Queries struct {
	db DBTX
}

// WithTx returns Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given table.column. Both SQLite drivers in use (modernc in
// production, mattn in tests) embed the same constraint text in their
// error strings.
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

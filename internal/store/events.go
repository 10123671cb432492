// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/oblog-go/internal/model"
)

const createEvent = `
INSERT INTO events (level, category, message, user_id, metadata, ip_address, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, level, category, message, user_id, metadata, created_at
`

// CreateEventParams are the arguments for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	IpAddress string
	CreatedAt time.Time
}

// CreateEvent appends an entry to the audit log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.UserID,
		arg.Metadata,
		arg.IpAddress,
		arg.CreatedAt,
	)
	var e model.Event
	err := row.Scan(
		&e.ID,
		&e.Level,
		&e.Category,
		&e.Message,
		&e.UserID,
		&e.Metadata,
		&e.CreatedAt,
	)
	if err != nil {
		return model.Event{}, err
	}
	return e, nil
}

const listEvents = `
SELECT id, level, category, message, user_id, metadata, created_at
FROM events
ORDER BY id DESC
LIMIT ? OFFSET ?
`

// ListEventsParams are the arguments for ListEvents.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns audit log entries, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(
			&e.ID,
			&e.Level,
			&e.Category,
			&e.Message,
			&e.UserID,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteOldEvents = `
DELETE FROM events WHERE created_at < ?
`

// DeleteOldEvents removes audit log entries created before the cutoff.
func (q *Queries) DeleteOldEvents(ctx context.Context, createdAt time.Time) error {
	_, err := q.db.ExecContext(ctx, deleteOldEvents, createdAt)
	return err
}

const countEvents = `
SELECT COUNT(*) FROM events
`

// CountEvents returns the total number of audit log entries.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEvents)
	var count int64
	err := row.Scan(&count)
	return count, err
}

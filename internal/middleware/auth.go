// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyPrincipal is the context key the resolved principal is stored under.
const ContextKeyPrincipal ContextKey = "principal"

// SessionKeyUserID is the session key holding the signed-in user's id.
const SessionKeyUserID = "user_id"

// WithPrincipal creates middleware that resolves the session's user id to a
// Principal and stores it in the request context. An absent session yields
// Anonymous. A session naming a user that no longer exists is destroyed and
// the request proceeds as Anonymous.
func WithPrincipal(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// Stale session pointing at a deleted user
					_ = sm.Destroy(r.Context())
				} else {
					slog.Error("failed to resolve session user", "error", err, "user_id", userID)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, model.NewPrincipal(&user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the current principal from the request context.
// Returns Anonymous if none was resolved.
func GetPrincipal(r *http.Request) model.Principal {
	p, ok := r.Context().Value(ContextKeyPrincipal).(model.Principal)
	if !ok {
		return model.Anonymous
	}
	return p
}

// GetUserIDPtr returns a pointer to the current principal's user id, or nil
// for Anonymous. Useful for optional user id parameters in event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	p := GetPrincipal(r)
	if p.IsAnonymous() {
		return nil
	}
	id := p.ID()
	return &id
}

// RequireUser redirects anonymous requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipal(r).IsAnonymous() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin creates middleware that restricts a route to admin users.
// Shorthand for RequireAdminWithEventLog(nil).
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireAdminWithEventLog(nil)
}

// RequireAdminWithEventLog creates middleware that restricts a route to admin
// users and records denials in the event log. Every non-admin principal,
// Anonymous included, gets a plain 403 with no redirect and no hint about
// what would have been required.
func RequireAdminWithEventLog(eventService *service.EventService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r)
			if !p.IsAdmin() {
				// Log 403 for security monitoring (application logs)
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", p.ID(),
					"anonymous", p.IsAnonymous(),
					"remote_addr", r.RemoteAddr,
				)

				// Log 403 to the event log
				if eventService != nil {
					metadata := map[string]any{
						"method": r.Method,
						"path":   r.URL.Path,
						"status": http.StatusForbidden,
					}
					_ = eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Access denied: admin required", GetUserIDPtr(r), ClientIP(r), metadata)
				}

				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

// SessionKeyUserID is the session key for storing the authenticated user ID.
const SessionKeyUserID = "user_id"

// Name and password limits for the registration form.
const (
	MinNameLength     = 2
	MaxNameLength     = 100
	MaxEmailLength    = 100
	MinPasswordLength = 8
)

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// AuthFormData holds data for the register and login form templates.
type AuthFormData struct {
	Errors     map[string]string
	FormValues map[string]string
}

// RegisterForm renders the registration page.
// Already-signed-in visitors are sent back to the homepage.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if !middleware.GetPrincipal(r).IsAnonymous() {
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
		return
	}

	h.renderAuthForm(w, r, "register", "Register", AuthFormData{
		Errors:     make(map[string]string),
		FormValues: make(map[string]string),
	})
}

// Register handles the registration form submission. The new account is
// signed in right away. An already-registered email sends the visitor to
// the login page instead.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRegister) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")

	// Store form values for re-rendering on error
	formValues := map[string]string{
		"email": email,
		"name":  name,
	}

	// Validate
	validationErrors := make(map[string]string)

	if email == "" {
		validationErrors["email"] = "Email is required"
	} else if len(email) > MaxEmailLength {
		validationErrors["email"] = fmt.Sprintf("Email must be at most %d characters", MaxEmailLength)
	} else if _, err := mail.ParseAddress(email); err != nil {
		validationErrors["email"] = "Invalid email format"
	}

	if name == "" {
		validationErrors["name"] = "Name is required"
	} else if len(name) < MinNameLength {
		validationErrors["name"] = fmt.Sprintf("Name must be at least %d characters", MinNameLength)
	} else if len(name) > MaxNameLength {
		validationErrors["name"] = fmt.Sprintf("Name must be at most %d characters", MaxNameLength)
	}

	if password == "" {
		validationErrors["password"] = "Password is required"
	} else if len(password) < MinPasswordLength {
		validationErrors["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
	}

	// If there are validation errors, re-render the form
	if len(validationErrors) > 0 {
		h.renderAuthForm(w, r, "register", "Register", AuthFormData{
			Errors:     validationErrors,
			FormValues: formValues,
		})
		return
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		flashError(w, r, h.renderer, RouteRegister, "Error creating account")
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			// Returning visitors are sent to the login page instead.
			flashWarning(w, r, h.renderer, redirectLogin, "The email is already registered.")
			return
		}
		slog.Error("failed to create user", "error", err)
		flashError(w, r, h.renderer, RouteRegister, "Error creating account")
		return
	}

	clientIP := middleware.ClientIP(r)
	slog.Info("user registered", "user_id", user.ID, "email", user.Email, "role", user.Role)
	_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelInfo, "User registered", &user.ID, clientIP, map[string]any{"email": user.Email})

	// Sign the new account in: regenerate the session token first.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	http.Redirect(w, r, redirectHome, http.StatusSeeOther)
}

// LoginForm renders the login page.
// Already-signed-in visitors are sent back to the homepage.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if !middleware.GetPrincipal(r).IsAnonymous() {
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
		return
	}

	h.renderAuthForm(w, r, "login", "Log In", AuthFormData{
		Errors:     make(map[string]string),
		FormValues: make(map[string]string),
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	clientIP := middleware.ClientIP(r)

	// Check if account is locked
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login attempt on locked account", nil, clientIP, map[string]any{"email": email})
			flashError(w, r, h.renderer, redirectLogin, "Too many failed attempts. Try again in "+formatDuration(remaining)+".")
			return
		}
	}

	// Find user by email
	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.Debug("login attempt for non-existent user", "email", email)
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login failed: user not found", nil, clientIP, map[string]any{"email": email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record the failed attempt even for non-existent users
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				flashError(w, r, h.renderer, redirectLogin, "Too many failed attempts. Try again in "+formatDuration(lockDuration)+".")
				return
			}
		}
		flashWarning(w, r, h.renderer, redirectLogin, "Email does not exist. Try again.")
		return
	}

	// Check password
	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
		flashWarning(w, r, h.renderer, redirectLogin, "Password invalid. Try again.")
		return
	}

	if !valid {
		slog.Debug("invalid password attempt", "email", email)
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Login failed: invalid password", &user.ID, clientIP, map[string]any{"email": email})
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning, "Account locked due to failed attempts", &user.ID, clientIP, map[string]any{"email": email, "duration": lockDuration.String()})
				flashError(w, r, h.renderer, redirectLogin, "Too many failed attempts. Try again in "+formatDuration(lockDuration)+".")
				return
			}
		}
		flashWarning(w, r, h.renderer, redirectLogin, "Password invalid. Try again.")
		return
	}

	// Clear failed attempts on successful login
	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Re-hash the password if it was stored with outdated parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				ID:           user.ID,
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			} else {
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	// Update last login timestamp
	if err := h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{
		ID:          user.ID,
		LastLoginAt: time.Now(),
	}); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
		// Don't block login on this error
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	// Store user ID in session
	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged in", &user.ID, clientIP, map[string]any{"email": user.Email})

	flashSuccess(w, r, h.renderer, redirectHome, "Welcome back, "+user.Name+"!")
}

// Logout handles user logout. The route is wrapped in RequireUser, so an
// anonymous visitor never reaches this handler.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Get user ID for logging before destroying session
	userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID)

	if userID > 0 {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out", &userID, middleware.ClientIP(r), nil)
	}

	// Destroy the session
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)

	flashAndRedirect(w, r, h.renderer, redirectHome, "You have been logged out.", "info")
}

// renderAuthForm renders the register or login page template.
func (h *AuthHandler) renderAuthForm(w http.ResponseWriter, r *http.Request, page, title string, data AuthFormData) {
	if err := h.renderer.Render(w, r, page, render.TemplateData{
		Title:     title,
		Principal: middleware.GetPrincipal(r),
		Data:      data,
	}); err != nil {
		logAndInternalError(w, "failed to render page", "template", page, "error", err)
	}
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

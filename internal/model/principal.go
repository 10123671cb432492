// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Principal is the identity a request acts as. It wraps the signed-in
// user, if any; the zero value is the anonymous principal. Handlers and
// templates always receive a Principal, never a nil user.
type Principal struct {
	user *User
}

// Anonymous is the principal of every request without a signed-in user.
var Anonymous = Principal{}

// NewPrincipal returns the principal for a signed-in user.
func NewPrincipal(u *User) Principal {
	return Principal{user: u}
}

// IsAnonymous reports whether no user is signed in.
func (p Principal) IsAnonymous() bool {
	return p.user == nil
}

// IsAdmin reports whether the signed-in user holds the admin role.
// Anonymous principals are never admins.
func (p Principal) IsAdmin() bool {
	return p.user != nil && p.user.IsAdmin()
}

// ID returns the signed-in user's id, or 0 for Anonymous.
func (p Principal) ID() int64 {
	if p.user == nil {
		return 0
	}
	return p.user.ID
}

// Name returns the signed-in user's display name, or "" for Anonymous.
func (p Principal) Name() string {
	if p.user == nil {
		return ""
	}
	return p.user.Name
}

// Email returns the signed-in user's email, or "" for Anonymous.
func (p Principal) Email() string {
	if p.user == nil {
		return ""
	}
	return p.user.Email
}

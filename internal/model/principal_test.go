// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestAnonymousPrincipal(t *testing.T) {
	if !Anonymous.IsAnonymous() {
		t.Error("Anonymous.IsAnonymous() = false, want true")
	}
	if Anonymous.IsAdmin() {
		t.Error("Anonymous.IsAdmin() = true, want false")
	}
	if got := Anonymous.ID(); got != 0 {
		t.Errorf("Anonymous.ID() = %d, want 0", got)
	}
	if got := Anonymous.Name(); got != "" {
		t.Errorf("Anonymous.Name() = %q, want empty", got)
	}
	if got := Anonymous.Email(); got != "" {
		t.Errorf("Anonymous.Email() = %q, want empty", got)
	}
}

func TestZeroPrincipalIsAnonymous(t *testing.T) {
	// The zero value must behave exactly like the Anonymous sentinel so a
	// missing context value never turns into a signed-in identity.
	var p Principal
	if !p.IsAnonymous() {
		t.Error("zero Principal should be anonymous")
	}
	if p.IsAdmin() {
		t.Error("zero Principal should not be admin")
	}
}

func TestPrincipalForUser(t *testing.T) {
	tests := []struct {
		name      string
		user      *User
		wantAnon  bool
		wantAdmin bool
		wantID    int64
	}{
		{
			name:      "admin user",
			user:      &User{ID: 1, Email: "admin@example.com", Name: "Admin", Role: RoleAdmin},
			wantAnon:  false,
			wantAdmin: true,
			wantID:    1,
		},
		{
			name:      "author user",
			user:      &User{ID: 7, Email: "author@example.com", Name: "Author", Role: RoleAuthor},
			wantAnon:  false,
			wantAdmin: false,
			wantID:    7,
		},
		{
			name:      "nil user",
			user:      nil,
			wantAnon:  true,
			wantAdmin: false,
			wantID:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrincipal(tt.user)
			if got := p.IsAnonymous(); got != tt.wantAnon {
				t.Errorf("IsAnonymous() = %v, want %v", got, tt.wantAnon)
			}
			if got := p.IsAdmin(); got != tt.wantAdmin {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.wantAdmin)
			}
			if got := p.ID(); got != tt.wantID {
				t.Errorf("ID() = %d, want %d", got, tt.wantID)
			}
		})
	}
}

func TestPrincipalAccessors(t *testing.T) {
	u := &User{ID: 3, Email: "reader@example.com", Name: "Reader", Role: RoleAuthor}
	p := NewPrincipal(u)

	if got := p.Name(); got != "Reader" {
		t.Errorf("Name() = %q, want %q", got, "Reader")
	}
	if got := p.Email(); got != "reader@example.com" {
		t.Errorf("Email() = %q, want %q", got, "reader@example.com")
	}
}

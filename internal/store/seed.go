package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates initial data in an empty database: the admin account and a
// welcome post. It skips when any user already exists, so it is safe to
// leave enabled across restarts.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	count, err := queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		slog.Info("database already has users, skipping seed")
		return nil
	}

	// Hash the default password
	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	// The first user in an empty table becomes the admin
	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	post, err := queries.CreatePost(ctx, CreatePostParams{
		AuthorID: user.ID,
		Title:    "Welcome to your new blog",
		Subtitle: "A few words before you start writing",
		Date:     now.Format(model.PostDateLayout),
		Body: "<p>This is the first post on your new blog. Sign in with the " +
			"seeded admin account, change its password, and start writing.</p>",
		ImgURL: "https://images.unsplash.com/photo-1542435503-956c469947f6",
	})
	if err != nil {
		return fmt.Errorf("creating welcome post: %w", err)
	}

	slog.Info("seeded empty database",
		"admin_id", user.ID,
		"admin_email", user.Email,
		"admin_password", DefaultAdminPassword,
		"post_id", post.ID,
	)

	return nil
}

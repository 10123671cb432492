package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
)

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Every connection to :memory: is a distinct database.
	db.SetMaxOpenConns(1)

	// Create required tables
	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'author',
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			last_login_at TIMESTAMP
		);

		CREATE TABLE blog_posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id INTEGER NOT NULL REFERENCES users(id),
			title TEXT NOT NULL UNIQUE,
			subtitle TEXT NOT NULL,
			date TEXT NOT NULL,
			body TEXT NOT NULL,
			img_url TEXT NOT NULL
		);
		CREATE INDEX idx_blog_posts_author_id ON blog_posts(author_id);

		CREATE TABLE comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id INTEGER NOT NULL REFERENCES users(id),
			post_id INTEGER NOT NULL REFERENCES blog_posts(id) ON DELETE CASCADE,
			text TEXT NOT NULL
		);
		CREATE INDEX idx_comments_post_id ON comments(post_id);

		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			ip_address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX idx_events_created_at ON events(created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testSessionManager creates a session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testHandlerSetup creates the test database and session manager most
// handler tests need.
func testHandlerSetup(t *testing.T) (*sql.DB, *scs.SessionManager) {
	t.Helper()
	return testDB(t), testSessionManager(t)
}

// testTemplates builds a minimal in-memory template tree covering every
// page the handlers render. The flash line makes redirect-free render
// paths observable in test output.
func testTemplates() fstest.MapFS {
	page := func(body string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(`{{define "content"}}` + body + `{{end}}`)}
	}
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`{{define "base"}}{{if .Flash}}[{{.FlashType}}] {{.Flash}} {{end}}{{template "content" .}}{{end}}`),
		},
		"pages/home.html":        page(`home posts={{len .Data.Posts}}`),
		"pages/post.html":        page(`{{.Data.Post.Title}} comments={{len .Data.Comments}}{{range $k, $v := .Data.Errors}} {{$k}}:{{$v}}{{end}}`),
		"pages/post_form.html":   page(`{{.Title}}{{range $k, $v := .Data.Errors}} {{$k}}:{{$v}}{{end}}`),
		"pages/login.html":       page(`login{{range $k, $v := .Data.Errors}} {{$k}}:{{$v}}{{end}}`),
		"pages/register.html":    page(`register{{range $k, $v := .Data.Errors}} {{$k}}:{{$v}}{{end}}`),
		"pages/static_page.html": page(`{{.Title}} {{.Data.Content}}`),
		"pages/404.html":         page(`not found`),
	}
}

// testRenderer builds a renderer over the in-memory templates.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	r, err := render.New(render.Config{
		TemplatesFS:    testTemplates(),
		SessionManager: sm,
	})
	if err != nil {
		t.Fatalf("failed to build test renderer: %v", err)
	}
	return r
}

// testUser is a test user for testing.
type testUser struct {
	ID           int64
	Email        string
	Name         string
	Role         string
	PasswordHash string
}

// createTestUser creates a test user in the database.
func createTestUser(t *testing.T, db *sql.DB, user testUser) model.User {
	t.Helper()

	if user.PasswordHash == "" {
		user.PasswordHash = "pbkdf2:sha256:600000$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA"
	}
	if user.Role == "" {
		user.Role = model.RoleAuthor
	}

	now := time.Now()
	result, err := db.Exec(
		`INSERT INTO users (email, password_hash, role, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.Email, user.PasswordHash, user.Role, user.Name, now, now,
	)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	id, _ := result.LastInsertId()
	return model.User{
		ID:           id,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Name:         user.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// requestWithPrincipal attaches a signed-in principal to the request context.
func requestWithPrincipal(r *http.Request, user model.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyPrincipal, model.NewPrincipal(&user))
	return r.WithContext(ctx)
}

// newFormRequest builds a POST request carrying form-encoded values.
func newFormRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

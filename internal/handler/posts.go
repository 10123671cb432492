// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
	"github.com/olegiv/oblog-go/internal/util"
)

// Field limits matching the blog_posts and comments columns.
const (
	MaxPostTitleLength    = 250
	MaxPostSubtitleLength = 250
	MaxCommentLength      = 1028
)

// PostsHandler handles the public blog surface: the post list, single
// posts with their comments, and the admin-only post management forms.
type PostsHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	eventService   *service.EventService
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *PostsHandler {
	return &PostsHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		eventService:   service.NewEventService(db),
	}
}

// HomeData holds data for the post list template.
type HomeData struct {
	Posts []model.BlogPost
}

// List handles GET / - displays all posts, newest first.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListPosts(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list posts", "error", err)
		return
	}

	h.render(w, r, "home", "Home", HomeData{Posts: posts})
}

// PostPageData holds data for the single post template.
type PostPageData struct {
	Post       model.BlogPost
	Comments   []model.Comment
	Errors     map[string]string
	FormValues map[string]string
}

// Show handles GET /post/{id} - displays a single post with its comments.
func (h *PostsHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	post, ok := h.postByID(w, r, id)
	if !ok {
		return
	}

	h.renderPost(w, r, post, make(map[string]string), make(map[string]string))
}

// Comment handles POST /post/{id} - comment submission.
// Anonymous visitors are sent to the login page and no row is written.
func (h *PostsHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	post, ok := h.postByID(w, r, id)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(r)
	if principal.IsAnonymous() {
		flashWarning(w, r, h.renderer, redirectLogin, "You must be logged in to comment.")
		return
	}

	postURL := fmt.Sprintf(redirectPostID, post.ID)
	if !parseFormOrRedirect(w, r, h.renderer, postURL) {
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))

	// Validate
	validationErrors := make(map[string]string)
	if text == "" {
		validationErrors["text"] = "Comment is required"
	} else if len(text) > MaxCommentLength {
		validationErrors["text"] = fmt.Sprintf("Comment must be at most %d characters", MaxCommentLength)
	}

	if len(validationErrors) > 0 {
		h.renderPost(w, r, post, validationErrors, map[string]string{"text": text})
		return
	}

	comment, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		AuthorID: principal.ID(),
		PostID:   post.ID,
		Text:     htmlSanitizer.Sanitize(text),
	})
	if err != nil {
		slog.Error("failed to create comment", "error", err, "post_id", post.ID)
		flashError(w, r, h.renderer, postURL, "Error saving comment")
		return
	}

	slog.Info("comment created", "comment_id", comment.ID, "post_id", post.ID, "author_id", principal.ID())
	_ = h.eventService.LogCommentEvent(r.Context(), model.EventLevelInfo, "Comment created", middleware.GetUserIDPtr(r), middleware.ClientIP(r), map[string]any{"post_id": post.ID, "comment_id": comment.ID})

	http.Redirect(w, r, postURL, http.StatusSeeOther)
}

// PostFormData holds data for the post form template.
type PostFormData struct {
	Post       *model.BlogPost
	Errors     map[string]string
	FormValues map[string]string
	IsEdit     bool
}

// NewForm handles GET /new-post - displays the empty post form.
// The route is admin-gated by the router.
func (h *PostsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderPostForm(w, r, "New Post", PostFormData{
		Errors:     make(map[string]string),
		FormValues: make(map[string]string),
	})
}

// Create handles POST /new-post - creates a new post with a
// server-stamped publication date.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectNewPost) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	subtitle := strings.TrimSpace(r.FormValue("subtitle"))
	imgURL := strings.TrimSpace(r.FormValue("img_url"))
	body := r.FormValue("body")

	formValues := map[string]string{
		"title":    title,
		"subtitle": subtitle,
		"img_url":  imgURL,
		"body":     body,
	}

	validationErrors := validatePostForm(title, subtitle, imgURL, body)
	if len(validationErrors) > 0 {
		h.renderPostForm(w, r, "New Post", PostFormData{
			Errors:     validationErrors,
			FormValues: formValues,
		})
		return
	}

	principal := middleware.GetPrincipal(r)
	post, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		AuthorID: principal.ID(),
		Title:    title,
		Subtitle: subtitle,
		Date:     time.Now().Format(model.PostDateLayout),
		Body:     htmlSanitizer.Sanitize(body),
		ImgURL:   imgURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			flashError(w, r, h.renderer, redirectNewPost, "A post with this title already exists.")
			return
		}
		slog.Error("failed to create post", "error", err)
		flashError(w, r, h.renderer, redirectNewPost, "Error creating post")
		return
	}

	slog.Info("post created", "post_id", post.ID, "title", post.Title, "author_id", principal.ID())
	_ = h.eventService.LogPostEvent(r.Context(), model.EventLevelInfo, "Post created", middleware.GetUserIDPtr(r), middleware.ClientIP(r), map[string]any{"post_id": post.ID, "title": post.Title})

	flashSuccess(w, r, h.renderer, redirectHome, "Post created successfully")
}

// EditForm handles GET /edit-post/{id} - displays the post form
// pre-filled from the stored post.
func (h *PostsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	post, ok := h.postByID(w, r, id)
	if !ok {
		return
	}

	h.renderPostForm(w, r, "Edit Post", PostFormData{
		Post:   &post,
		Errors: make(map[string]string),
		FormValues: map[string]string{
			"title":    post.Title,
			"subtitle": post.Subtitle,
			"img_url":  post.ImgURL,
			"body":     post.Body,
		},
		IsEdit: true,
	})
}

// Update handles POST /edit-post/{id} - overwrites title, subtitle,
// image URL, and body. The post is reassigned to the editing principal;
// the publication date is left untouched.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	post, ok := h.postByID(w, r, id)
	if !ok {
		return
	}

	editURL := fmt.Sprintf(redirectEditPostID, post.ID)
	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	subtitle := strings.TrimSpace(r.FormValue("subtitle"))
	imgURL := strings.TrimSpace(r.FormValue("img_url"))
	body := r.FormValue("body")

	formValues := map[string]string{
		"title":    title,
		"subtitle": subtitle,
		"img_url":  imgURL,
		"body":     body,
	}

	validationErrors := validatePostForm(title, subtitle, imgURL, body)
	if len(validationErrors) > 0 {
		h.renderPostForm(w, r, "Edit Post", PostFormData{
			Post:       &post,
			Errors:     validationErrors,
			FormValues: formValues,
			IsEdit:     true,
		})
		return
	}

	principal := middleware.GetPrincipal(r)
	updated, err := h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		ID:       post.ID,
		AuthorID: principal.ID(),
		Title:    title,
		Subtitle: subtitle,
		Body:     htmlSanitizer.Sanitize(body),
		ImgURL:   imgURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			flashError(w, r, h.renderer, editURL, "A post with this title already exists.")
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			h.renderNotFound(w, r)
			return
		}
		slog.Error("failed to update post", "error", err, "post_id", post.ID)
		flashError(w, r, h.renderer, editURL, "Error updating post")
		return
	}

	slog.Info("post updated", "post_id", updated.ID, "title", updated.Title, "author_id", principal.ID())
	_ = h.eventService.LogPostEvent(r.Context(), model.EventLevelInfo, "Post updated", middleware.GetUserIDPtr(r), middleware.ClientIP(r), map[string]any{"post_id": updated.ID, "title": updated.Title})

	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectPostID, updated.ID), "Post updated successfully")
}

// Delete handles GET /delete/{id} - deletes a post and its comments.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	if err := h.queries.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.renderNotFound(w, r)
			return
		}
		slog.Error("failed to delete post", "error", err, "post_id", id)
		flashError(w, r, h.renderer, redirectHome, "Error deleting post")
		return
	}

	slog.Info("post deleted", "post_id", id, "deleted_by", middleware.GetPrincipal(r).ID())
	_ = h.eventService.LogPostEvent(r.Context(), model.EventLevelInfo, "Post deleted", middleware.GetUserIDPtr(r), middleware.ClientIP(r), map[string]any{"post_id": id})

	flashSuccess(w, r, h.renderer, redirectHome, "Post deleted successfully")
}

// validatePostForm applies the required-field and format checks shared by
// the create and edit forms.
func validatePostForm(title, subtitle, imgURL, body string) map[string]string {
	validationErrors := make(map[string]string)

	if title == "" {
		validationErrors["title"] = "Title is required"
	} else if len(title) > MaxPostTitleLength {
		validationErrors["title"] = fmt.Sprintf("Title must be at most %d characters", MaxPostTitleLength)
	}

	if subtitle == "" {
		validationErrors["subtitle"] = "Subtitle is required"
	} else if len(subtitle) > MaxPostSubtitleLength {
		validationErrors["subtitle"] = fmt.Sprintf("Subtitle must be at most %d characters", MaxPostSubtitleLength)
	}

	if imgURL == "" {
		validationErrors["img_url"] = "Image URL is required"
	} else if len(imgURL) > util.MaxImageURLLength {
		validationErrors["img_url"] = fmt.Sprintf("Image URL must be at most %d characters", util.MaxImageURLLength)
	} else if err := util.ValidateImageURL(imgURL); err != nil {
		validationErrors["img_url"] = "Image URL must be a valid http(s) URL"
	}

	if strings.TrimSpace(body) == "" {
		validationErrors["body"] = "Body is required"
	}

	return validationErrors
}

// postByID fetches a post or responds for the caller: unknown ids get the
// 404 page, anything else a 500.
func (h *PostsHandler) postByID(w http.ResponseWriter, r *http.Request, id int64) (model.BlogPost, bool) {
	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.renderNotFound(w, r)
		} else {
			logAndInternalError(w, "failed to get post", "error", err, "post_id", id)
		}
		return model.BlogPost{}, false
	}
	return post, true
}

// renderPost loads the post's comments and renders the post page.
func (h *PostsHandler) renderPost(w http.ResponseWriter, r *http.Request, post model.BlogPost, errs, formValues map[string]string) {
	comments, err := h.queries.ListCommentsForPost(r.Context(), post.ID)
	if err != nil {
		logAndInternalError(w, "failed to list comments", "error", err, "post_id", post.ID)
		return
	}

	h.render(w, r, "post", post.Title, PostPageData{
		Post:       post,
		Comments:   comments,
		Errors:     errs,
		FormValues: formValues,
	})
}

// renderPostForm renders the shared create/edit post form.
func (h *PostsHandler) renderPostForm(w http.ResponseWriter, r *http.Request, title string, data PostFormData) {
	h.render(w, r, "post_form", title, data)
}

// render executes a page template; render errors become a 500.
func (h *PostsHandler) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	if err := h.renderer.Render(w, r, page, render.TemplateData{
		Title:     title,
		Principal: middleware.GetPrincipal(r),
		Data:      data,
	}); err != nil {
		logAndInternalError(w, "failed to render page", "template", page, "error", err)
	}
}

// NotFound is the router-level fallback for unmatched paths.
func (h *PostsHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderNotFound(w, r)
}

// renderNotFound renders the 404 page.
func (h *PostsHandler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	if err := h.renderer.Render(w, r, "404", render.TemplateData{
		Title:     "Page Not Found",
		Principal: middleware.GetPrincipal(r),
	}); err != nil {
		slog.Error("failed to render 404 page", "error", err)
	}
}

package model

// Comment is a reader comment attached to a blog post.
type Comment struct {
	ID       int64
	AuthorID int64
	PostID   int64
	Text     string

	// Author fields joined in by the store for display: the name shown
	// next to the comment and the email the avatar is derived from.
	AuthorName  string
	AuthorEmail string
}

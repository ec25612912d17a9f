package dto

import "github.com/noah-isme/campus-hub-api/internal/models"

// CreatePostRequest captures POST /posts payload.
type CreatePostRequest struct {
	Type  string `json:"type" validate:"required,oneof=announcement discussion lostfound"`
	Title string `json:"title" validate:"max=200"`
	Desc  string `json:"desc" validate:"required,max=5000"`
	Anon  bool   `json:"anon"`
}

// CommentRequest captures POST /posts/:type/:id/comments payload. Blank text is accepted and ignored.
type CommentRequest struct {
	Text string `json:"text" validate:"max=2000"`
}

// CreatePostResponse returns the new post with its owning collection.
type CreatePostResponse struct {
	Post       models.Post   `json:"post"`
	Collection []models.Post `json:"collection"`
}

// FeedRequest binds GET /feed query parameters.
type FeedRequest struct {
	View     string `form:"view"`
	Filter   string `form:"filter"`
	Search   string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

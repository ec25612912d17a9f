package models

import (
	"fmt"
	"strings"
	"time"
)

// PostType identifies the collection that owns a post.
type PostType string

const (
	PostTypeAnnouncement PostType = "announcement"
	PostTypeDiscussion   PostType = "discussion"
	PostTypeLostFound    PostType = "lostfound"
)

// DefaultDiscussionCategory receives every discussion created through the board.
const DefaultDiscussionCategory = "general"

// ParsePostType converts raw input into a known PostType.
func ParsePostType(raw string) (PostType, error) {
	switch t := PostType(strings.ToLower(strings.TrimSpace(raw))); t {
	case PostTypeAnnouncement, PostTypeDiscussion, PostTypeLostFound:
		return t, nil
	default:
		return "", fmt.Errorf("unknown post type %q", raw)
	}
}

// Post is a board entry: announcement, discussion thread or lost-and-found item.
type Post struct {
	ID        string    `json:"id"`
	Type      PostType  `json:"type"`
	Title     string    `json:"title,omitempty"`
	Desc      string    `json:"desc"`
	Author    string    `json:"author"`
	Time      time.Time `json:"time"`
	Anon      bool      `json:"anon"`
	Likes     int       `json:"likes"`
	Comments  []Comment `json:"comments"`
	HighAlert bool      `json:"highAlert"`
	Reported  bool      `json:"reported"`
	Category  string    `json:"category,omitempty"`
}

// Comment is appended to a post and never removed.
type Comment struct {
	ID     string    `json:"id"`
	Author string    `json:"author"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

// Alert is raised when a lost-and-found post is marked high alert.
type Alert struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
	PostID string    `json:"postId,omitempty"`
}

// Discussions groups discussion posts by category.
type Discussions map[string][]Post

// PostRef addresses a post inside its owning collection.
type PostRef struct {
	Type PostType
	ID   string
}

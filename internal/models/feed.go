package models

import (
	"fmt"
	"strings"
)

// ActiveView is the dashboard tab the feed is rendered for.
type ActiveView string

const (
	ViewHome          ActiveView = "home"
	ViewAnnouncements ActiveView = "announcements"
	ViewDiscussion    ActiveView = "discussion"
	ViewLostFound     ActiveView = "lostfound"
	ViewTutor         ActiveView = "tutor"
	ViewSchedule      ActiveView = "schedule"
	ViewChat          ActiveView = "chat"
	ViewLectures      ActiveView = "lectures"
)

// ParseActiveView converts raw input into a known view; empty input means home.
func ParseActiveView(raw string) (ActiveView, error) {
	v := ActiveView(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return ViewHome, nil
	}
	switch v {
	case ViewHome, ViewAnnouncements, ViewDiscussion, ViewLostFound, ViewTutor, ViewSchedule, ViewChat, ViewLectures:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view %q", raw)
	}
}

// DefaultView returns the landing tab for a role.
func DefaultView(role Role) ActiveView {
	if role == RoleTeacher {
		return ViewAnnouncements
	}
	return ViewHome
}

// FeedFilter narrows the mixed feed.
type FeedFilter string

const (
	FilterAll        FeedFilter = "all"
	FilterDiscussion FeedFilter = "discussion"
	FilterLostFound  FeedFilter = "lostfound"
)

// ParseFeedFilter converts raw input into a known filter; empty input means all.
func ParseFeedFilter(raw string) (FeedFilter, error) {
	f := FeedFilter(strings.ToLower(strings.TrimSpace(raw)))
	if f == "" {
		return FilterAll, nil
	}
	switch f {
	case FilterAll, FilterDiscussion, FilterLostFound:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q", raw)
	}
}

// FeedQuery carries the presentation state that shapes the feed.
type FeedQuery struct {
	View   ActiveView
	Filter FeedFilter
	Search string
}

// Board is an in-memory snapshot of the post collections.
type Board struct {
	Announcements []Post
	Discussions   Discussions
	LostFound     []Post
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

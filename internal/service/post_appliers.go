package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/pkg/config"
)

// The functions below are pure: they copy the collections they change and leave inputs untouched.

const highAlertPrefix = "High Alert: "

// uniqueID returns "{prefix}_{millis}", bumping the millisecond while the id is taken.
func uniqueID(prefix string, now time.Time, taken func(string) bool) string {
	millis := now.UnixMilli()
	for {
		id := prefix + "_" + strconv.FormatInt(millis, 10)
		if taken == nil || !taken(id) {
			return id
		}
		millis++
	}
}

func clonePosts(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	for i, post := range posts {
		post.Comments = append([]models.Comment{}, post.Comments...)
		out[i] = post
	}
	return out
}

func cloneDiscussions(discussions models.Discussions) models.Discussions {
	out := make(models.Discussions, len(discussions))
	for category, posts := range discussions {
		out[category] = clonePosts(posts)
	}
	return out
}

func indexOfPost(posts []models.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

func postIDTaken(posts []models.Post) func(string) bool {
	return func(id string) bool { return indexOfPost(posts, id) >= 0 }
}

func discussionIDTaken(discussions models.Discussions) func(string) bool {
	return func(id string) bool {
		_, idx := discussionCategoryOf(discussions, id)
		return idx >= 0
	}
}

// discussionCategoryOf finds the category holding id. It falls back to the default category.
func discussionCategoryOf(discussions models.Discussions, id string) (string, int) {
	for category, posts := range discussions {
		if idx := indexOfPost(posts, id); idx >= 0 {
			return category, idx
		}
	}
	return models.DefaultDiscussionCategory, -1
}

func newPost(postType models.PostType, id, title, desc, author string, anon bool, now time.Time) models.Post {
	post := models.Post{
		ID:       id,
		Type:     postType,
		Title:    title,
		Desc:     desc,
		Author:   author,
		Time:     now,
		Anon:     anon,
		Comments: []models.Comment{},
	}
	if postType == models.PostTypeDiscussion {
		post.Category = models.DefaultDiscussionCategory
	}
	return post
}

func appendPost(posts []models.Post, post models.Post) []models.Post {
	return append(clonePosts(posts), post)
}

func removePost(posts []models.Post, id string) ([]models.Post, bool) {
	idx := indexOfPost(posts, id)
	if idx < 0 {
		return posts, false
	}
	out := make([]models.Post, 0, len(posts)-1)
	out = append(out, clonePosts(posts[:idx])...)
	out = append(out, clonePosts(posts[idx+1:])...)
	return out, true
}

func likePost(posts []models.Post, id string) ([]models.Post, *models.Post) {
	idx := indexOfPost(posts, id)
	if idx < 0 {
		return posts, nil
	}
	out := clonePosts(posts)
	out[idx].Likes++
	return out, &out[idx]
}

func commentOnPost(posts []models.Post, id string, comment models.Comment) ([]models.Post, *models.Post) {
	idx := indexOfPost(posts, id)
	if idx < 0 {
		return posts, nil
	}
	out := clonePosts(posts)
	out[idx].Comments = append(out[idx].Comments, comment)
	return out, &out[idx]
}

func reportPost(posts []models.Post, id string) ([]models.Post, *models.Post) {
	idx := indexOfPost(posts, id)
	if idx < 0 {
		return posts, nil
	}
	out := clonePosts(posts)
	out[idx].Reported = true
	return out, &out[idx]
}

func toggleHighAlert(posts []models.Post, id string) ([]models.Post, *models.Post) {
	idx := indexOfPost(posts, id)
	if idx < 0 {
		return posts, nil
	}
	out := clonePosts(posts)
	out[idx].HighAlert = !out[idx].HighAlert
	return out, &out[idx]
}

func nextCommentID(comments []models.Comment, now time.Time) string {
	return uniqueID("c", now, func(id string) bool {
		for _, c := range comments {
			if c.ID == id {
				return true
			}
		}
		return false
	})
}

func raiseAlert(alerts []models.Alert, post models.Post, now time.Time) []models.Alert {
	alert := models.Alert{
		ID: uniqueID("alert", now, func(id string) bool {
			for _, a := range alerts {
				if a.ID == id {
					return true
				}
			}
			return false
		}),
		Text:   highAlertPrefix + post.Title,
		Time:   now,
		PostID: post.ID,
	}
	out := make([]models.Alert, 0, len(alerts)+1)
	out = append(out, alerts...)
	return append(out, alert)
}

// clearAlerts drops the alerts correlated with post. In title mode every alert whose text contains
// the title is removed, so an empty title clears all alerts.
func clearAlerts(alerts []models.Alert, post models.Post, matchMode string) []models.Alert {
	out := make([]models.Alert, 0, len(alerts))
	for _, alert := range alerts {
		var matches bool
		if matchMode == config.AlertMatchPost {
			matches = alert.PostID == post.ID
		} else {
			matches = strings.Contains(alert.Text, post.Title)
		}
		if !matches {
			out = append(out, alert)
		}
	}
	return out
}

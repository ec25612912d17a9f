package service

import (
	"math"
	"sort"
	"strings"

	"github.com/noah-isme/campus-hub-api/internal/models"
)

// BuildFeed assembles the time-ordered feed for a view, filter and search term.
// The board is not modified.
func BuildFeed(query models.FeedQuery, board models.Board) []models.Post {
	feed := make([]models.Post, 0)
	if query.View == models.ViewAnnouncements {
		feed = append(feed, board.Announcements...)
	} else {
		switch query.Filter {
		case models.FilterDiscussion:
			feed = append(feed, flattenDiscussions(board.Discussions)...)
		case models.FilterLostFound:
			feed = append(feed, board.LostFound...)
		default:
			feed = append(feed, board.Announcements...)
			feed = append(feed, flattenDiscussions(board.Discussions)...)
			feed = append(feed, board.LostFound...)
		}
	}

	if query.Search != "" {
		feed = filterPosts(feed, query.Search)
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Time.After(feed[j].Time)
	})
	return feed
}

// flattenDiscussions concatenates categories in name order.
func flattenDiscussions(discussions models.Discussions) []models.Post {
	categories := make([]string, 0, len(discussions))
	for category := range discussions {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	out := make([]models.Post, 0)
	for _, category := range categories {
		out = append(out, discussions[category]...)
	}
	return out
}

func filterPosts(posts []models.Post, term string) []models.Post {
	needle := strings.ToLower(term)
	kept := posts[:0]
	for _, post := range posts {
		if strings.Contains(strings.ToLower(post.Title), needle) ||
			strings.Contains(strings.ToLower(post.Desc), needle) ||
			strings.Contains(strings.ToLower(post.Author), needle) {
			kept = append(kept, post)
		}
	}
	return kept
}

// AttendancePercent computes a student's attendance over every topic.
// Topics without a mark for the student contribute the share of attending students instead.
func AttendancePercent(data models.AttendanceData, studentEmail string) int {
	topicIDs := make([]string, 0, len(data))
	for id := range data {
		topicIDs = append(topicIDs, id)
	}
	sort.Strings(topicIDs)

	var present, total float64
	for _, id := range topicIDs {
		students := data[id].Students
		if status, ok := students[studentEmail]; ok {
			total++
			if status != models.AttendanceAbsent {
				present++
			}
			continue
		}
		if len(students) == 0 {
			continue
		}
		attending := 0
		for _, status := range students {
			if status != models.AttendanceAbsent {
				attending++
			}
		}
		total++
		present += float64(attending) / float64(len(students))
	}

	if total == 0 {
		return 0
	}
	return int(math.Floor(100*present/total + 0.5))
}

// paginatePosts slices a feed page. Page and size are normalised to at least 1.
func paginatePosts(posts []models.Post, page, pageSize int) ([]models.Post, models.Pagination) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	total := len(posts)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return posts[start:end], models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}

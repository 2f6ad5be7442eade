// Package listing orders and pages news and comments independently of the
// order a store happens to return them in.
package listing

import (
	"sort"

	"github.com/news-notes-api/internal/models"
)

// OrderNews sorts news newest first by publication date. Ties keep their input order.
func OrderNews(items []models.News) []models.News {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items
}

// OrderComments sorts comments oldest first by creation time. Ties keep their input order.
func OrderComments(items []models.Comment) []models.Comment {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

// FirstPage returns at most size items from the front of items
func FirstPage[T any](items []T, size int) []T {
	return Paginate(items, 1, size)
}

// Paginate returns the page-th slice of at most size items. Pages start at 1;
// anything lower is treated as the first page. A page past the end is empty.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

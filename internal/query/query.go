package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Luiz-altf4/Rose-Forum/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortMode string

const (
	SortRecent   SortMode = "recentes"
	SortOldest   SortMode = "antigos"
	SortTitle    SortMode = "titulo"
	SortCategory SortMode = "categoria"
)

// PageSize is the number of posts shown per page.
const PageSize = 10

// Search keeps posts whose title, content or one of the tags contains q, ignoring case.
func Search(q string, posts []models.Post) []models.Post {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return posts
	}

	out := make([]models.Post, 0)
	for _, p := range posts {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p models.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func FilterByCategory(category string, posts []models.Post) []models.Post {
	if category == "" {
		return posts
	}

	out := make([]models.Post, 0)
	for _, p := range posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SortRecent, SortOldest, SortTitle, SortCategory:
		return m, nil
	case "":
		return SortRecent, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Sort returns a sorted copy of posts. Unknown modes sort by most recent.
func Sort(mode SortMode, posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)

	var less func(a, b models.Post) bool
	switch mode {
	case SortOldest:
		less = func(a, b models.Post) bool { return a.Date.Before(b.Date) }
	case SortTitle:
		c := collate.New(language.BrazilianPortuguese)
		less = func(a, b models.Post) bool { return c.CompareString(a.Title, b.Title) < 0 }
	case SortCategory:
		c := collate.New(language.BrazilianPortuguese)
		less = func(a, b models.Post) bool { return c.CompareString(a.Category, b.Category) < 0 }
	default:
		less = func(a, b models.Post) bool { return a.Date.After(b.Date) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

type Stats struct {
	Total              int
	PostedToday        int
	DistinctCategories int
}

// ComputeStats counts posts; "today" is the calendar date of now in its location.
func ComputeStats(posts []models.Post, now time.Time) Stats {
	y, m, d := now.Date()
	categories := make(map[string]struct{})

	s := Stats{Total: len(posts)}
	for _, p := range posts {
		py, pm, pd := p.Date.In(now.Location()).Date()
		if py == y && pm == m && pd == d {
			s.PostedToday++
		}
		categories[p.Category] = struct{}{}
	}
	s.DistinctCategories = len(categories)
	return s
}

type Page struct {
	Items      []models.Post
	Page       int
	TotalPages int
	HasMore    bool
}

// Paginate returns the 1-based page of posts. Pages out of range are clamped.
func Paginate(posts []models.Post, page, perPage int) Page {
	if perPage <= 0 {
		perPage = PageSize
	}
	totalPages := (len(posts) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(posts) {
		end = len(posts)
	}

	items := make([]models.Post, end-start)
	copy(items, posts[start:end])
	return Page{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

package profile

import (
	"context"
	"strings"
)

const (
	// DefaultPage is the page served when none (or a non-positive one) is given.
	DefaultPage = 1
	// DefaultLimit is the page size used when none (or a non-positive one) is given.
	DefaultLimit = 4
)

// SearchProjects filters the profile's projects and returns one page of the
// result. Filtering happens in process over the whole project list and
// preserves insertion order.
func (s *Service) SearchProjects(ctx context.Context, params SearchParams) (SearchResult, error) {
	p, err := s.repo.Find(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	filtered := FilterProjects(p.Projects, params.Query, params.Skills)
	page, pagination := Paginate(filtered, params.Page, params.Limit)
	return SearchResult{Projects: page, Pagination: pagination}, nil
}

// FilterProjects keeps projects having at least one of skills (compared
// case-insensitively) and whose title or description contains query
// (case-insensitive). An empty query or an empty skill set disables that
// filter; both filters combine with AND.
func FilterProjects(projects []ProjectEntry, query string, skills []string) []ProjectEntry {
	wanted := make(map[string]struct{}, len(skills))
	for _, sk := range skills {
		if n := NormalizeSkill(sk); n != "" {
			wanted[n] = struct{}{}
		}
	}
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]ProjectEntry, 0, len(projects))
	for _, pr := range projects {
		if len(wanted) > 0 && !hasAnySkill(pr.Skills, wanted) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(pr.Title), q) &&
			!strings.Contains(strings.ToLower(pr.Description), q) {
			continue
		}
		out = append(out, pr)
	}
	return out
}

func hasAnySkill(skills []string, wanted map[string]struct{}) bool {
	for _, sk := range skills {
		if _, ok := wanted[strings.ToLower(sk)]; ok {
			return true
		}
	}
	return false
}

// Paginate returns the 1-based page of items and its metadata. A page past
// the end yields an empty slice, not an error.
func Paginate(items []ProjectEntry, page, limit int) ([]ProjectEntry, Pagination) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	total := len(items)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	pg := Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProjects: total,
		PageSize:      limit,
		HasNextPage:   page < totalPages,
		HasPrevPage:   page > 1,
	}

	if page > totalPages {
		return []ProjectEntry{}, pg
	}
	start := (page - 1) * limit
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], pg
}

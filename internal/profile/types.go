package profile

import "time"

// Profile is the single user's portfolio document. It is stored as one JSON
// document keyed by the owner's email.
type Profile struct {
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Education string         `json:"education,omitempty"`
	Skills    []string       `json:"skills"`
	Work      []WorkEntry    `json:"work"`
	Links     Links          `json:"links"`
	Projects  []ProjectEntry `json:"projects"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Links maps a profile site name (e.g. "github") to its URL. Empty values
// mean "not set".
type Links map[string]string

// WorkEntry is an append-only item of work history.
type WorkEntry struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProjectEntry is a portfolio project embedded in the profile.
type ProjectEntry struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Skills      []string      `json:"skills"`
	Links       []ProjectLink `json:"links"`
}

// ProjectLink is a labelled URL attached to a project (e.g. "repo", "live").
type ProjectLink struct {
	ID    string `json:"_id,omitempty"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ProfileUpdate carries a partial update of the top-level profile fields.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Education *string   `json:"education,omitempty"`
	Skills    *[]string `json:"skills,omitempty"`
}

// WorkInput is the payload for appending a work entry.
type WorkInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProjectInput is the payload for adding or replacing a project. Links are
// raw: entries that fail validation are dropped on write.
type ProjectInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Skills      []string      `json:"skills"`
	Links       []ProjectLink `json:"links"`
}

// SearchParams selects and pages projects. Zero Page and Limit fall back to
// DefaultPage and DefaultLimit.
type SearchParams struct {
	Query  string
	Skills []string
	Page   int
	Limit  int
}

// Pagination describes where a page of search results sits in the full result.
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProjects int  `json:"totalProjects"`
	PageSize      int  `json:"pageSize"`
	HasNextPage   bool `json:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage"`
}

// SearchResult is one page of matching projects.
type SearchResult struct {
	Projects   []ProjectEntry `json:"projects"`
	Pagination Pagination     `json:"pagination"`
}

package profile

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Service implements the profile operations for the one profile its
// Repository is bound to. Every mutation is a single Repository.Update call.
type Service struct {
	repo  *Repository
	newID func() string
}

// NewService creates a Service backed by repo.
func NewService(repo *Repository) *Service {
	return &Service{
		repo:  repo,
		newID: func() string { return uuid.New().String() },
	}
}

// GetProfile returns the full profile.
func (s *Service) GetProfile(ctx context.Context) (Profile, error) {
	return s.repo.Find(ctx)
}

// UpdateProfile applies a partial update of education and skills. Skills are
// lowercased and trimmed; empty entries are dropped. Education is stored as
// given.
func (s *Service) UpdateProfile(ctx context.Context, u ProfileUpdate) (Profile, error) {
	var ops []Op
	if u.Education != nil {
		ops = append(ops, SetEducation(*u.Education))
	}
	if u.Skills != nil {
		ops = append(ops, SetSkills(normalizeProfileSkills(*u.Skills)))
	}
	return s.repo.Update(ctx, ops...)
}

// AddWork appends a work entry with a fresh id and returns the work list.
func (s *Service) AddWork(ctx context.Context, in WorkInput) ([]WorkEntry, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, invalid("title and description are required")
	}

	p, err := s.repo.Update(ctx, PushWork(WorkEntry{
		ID:          s.newID(),
		Title:       title,
		Description: description,
	}))
	if err != nil {
		return nil, err
	}
	return p.Work, nil
}

// ReplaceLinks validates every non-empty URL and, if all pass, replaces the
// whole links map. A single invalid URL rejects the call and nothing is
// written.
func (s *Service) ReplaceLinks(ctx context.Context, links Links) (Links, error) {
	clean := make(Links, len(links))
	for name, v := range links {
		v = strings.TrimSpace(v)
		if v != "" && !IsValidURL(v) {
			return nil, invalid("invalid URL")
		}
		clean[name] = v
	}

	p, err := s.repo.Update(ctx, SetLinks(clean))
	if err != nil {
		return nil, err
	}
	return p.Links, nil
}

// AddProject appends a new project and returns the project list. Skills are
// trimmed with empties dropped, keeping their case; invalid links are
// dropped.
func (s *Service) AddProject(ctx context.Context, in ProjectInput) ([]ProjectEntry, error) {
	pr, err := s.buildProject(s.newID(), in)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, PushProject(pr))
	if err != nil {
		return nil, err
	}
	return p.Projects, nil
}

// UpdateProject overwrites every field of the project with the given id.
// Returns ErrNotFound if the profile or the project is missing.
func (s *Service) UpdateProject(ctx context.Context, id string, in ProjectInput) ([]ProjectEntry, error) {
	pr, err := s.buildProject(id, in)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, SetProject(pr))
	if err != nil {
		return nil, err
	}
	return p.Projects, nil
}

// DeleteProject removes the project with the given id and returns the
// remaining projects. An unknown id leaves the list unchanged and is not an
// error.
func (s *Service) DeleteProject(ctx context.Context, id string) ([]ProjectEntry, error) {
	p, err := s.repo.Update(ctx, PullProject(id))
	if err != nil {
		return nil, err
	}
	return p.Projects, nil
}

func (s *Service) buildProject(id string, in ProjectInput) (ProjectEntry, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return ProjectEntry{}, invalid("title and description are required")
	}
	return ProjectEntry{
		ID:          id,
		Title:       title,
		Description: description,
		Skills:      cleanProjectSkills(in.Skills),
		Links:       filterProjectLinks(in.Links, s.newID),
	}, nil
}

// Summary returns a compact plain-text rendering of the profile, suitable
// for a prompt or a terminal. Capped at maxSummaryChars.
func (s *Service) Summary(ctx context.Context) (string, error) {
	p, err := s.repo.Find(ctx)
	if err != nil {
		return "", fmt.Errorf("getting profile for summary: %w", err)
	}
	return Summarize(p), nil
}

// maxSummaryChars caps the summary to stay under ~500 tokens (4 chars/token).
const maxSummaryChars = 2000

// summaryWorkItems is how many of the latest work entries the summary names.
const summaryWorkItems = 3

// Summarize renders p as a short paragraph of plain text.
func Summarize(p Profile) string {
	var parts []string

	if p.Name != "" {
		parts = append(parts, fmt.Sprintf("%s.", p.Name))
	}
	if p.Education != "" {
		parts = append(parts, fmt.Sprintf("Education: %s.", p.Education))
	}
	if len(p.Skills) > 0 {
		parts = append(parts, fmt.Sprintf("Skills: %s.", strings.Join(p.Skills, ", ")))
	}

	// Most recent work first.
	if n := len(p.Work); n > 0 {
		var titles []string
		for i := n - 1; i >= 0 && len(titles) < summaryWorkItems; i-- {
			titles = append(titles, p.Work[i].Title)
		}
		parts = append(parts, fmt.Sprintf("Work: %s.", strings.Join(titles, "; ")))
	}

	for _, pr := range p.Projects {
		if len(pr.Skills) > 0 {
			parts = append(parts, fmt.Sprintf("Project %s (%s).", pr.Title, strings.Join(pr.Skills, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("Project %s.", pr.Title))
		}
	}

	if len(parts) == 0 {
		return "Profile: not yet filled in."
	}

	summary := strings.Join(parts, " ")
	if len(summary) > maxSummaryChars {
		// Ensure we don't split a multi-byte UTF-8 character.
		end := maxSummaryChars
		for end > 0 && !utf8.RuneStart(summary[end]) {
			end--
		}
		if idx := strings.LastIndex(summary[:end], " "); idx > 0 {
			summary = summary[:idx]
		} else {
			summary = summary[:end]
		}
	}
	return summary
}

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/folio/internal/storage"
)

// CollectionName is the storage collection holding profile documents.
const CollectionName = "profiles"

// DocumentStore is the document-level storage the Repository needs.
// Implemented by *storage.Collection.
type DocumentStore interface {
	FindOne(ctx context.Context, key string) ([]byte, error)
	FindOneAndUpdate(ctx context.Context, key string, fn storage.UpdateFunc) ([]byte, error)
}

// DocumentWriter creates or overwrites whole documents. Only seeding uses it.
type DocumentWriter interface {
	ReplaceOne(ctx context.Context, key string, body []byte) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Key normalizes an email into the profile lookup key.
func Key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository reads and atomically updates the one profile document stored
// under its key.
type Repository struct {
	store DocumentStore
	key   string
	clock Clock
}

// NewRepository returns a Repository for the profile identified by key
// (normally the configured owner email).
func NewRepository(store DocumentStore, key string) *Repository {
	return NewRepositoryWithClock(store, key, realClock{})
}

// NewRepositoryWithClock creates a Repository with a custom clock (for testing).
func NewRepositoryWithClock(store DocumentStore, key string, clock Clock) *Repository {
	return &Repository{
		store: store,
		key:   Key(key),
		clock: clock,
	}
}

// Key returns the profile key this repository is bound to.
func (r *Repository) Key() string { return r.key }

// Find loads the profile. Returns ErrNotFound if the document is absent.
func (r *Repository) Find(ctx context.Context) (Profile, error) {
	body, err := r.store.FindOne(ctx, r.key)
	if errors.Is(err, storage.ErrNotFound) {
		return Profile{}, errProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	return decodeProfile(body)
}

// Update applies ops to the stored profile in one atomic store call and
// returns the profile as written. If any op fails, nothing is written.
func (r *Repository) Update(ctx context.Context, ops ...Op) (Profile, error) {
	var updated Profile
	_, err := r.store.FindOneAndUpdate(ctx, r.key, func(body []byte) ([]byte, error) {
		p, err := decodeProfile(body)
		if err != nil {
			return nil, err
		}
		for _, op := range ops {
			if err := op(&p); err != nil {
				return nil, err
			}
		}
		p.UpdatedAt = r.clock.Now()
		out, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encoding profile: %w", err)
		}
		updated = p
		return out, nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		return Profile{}, errProfileNotFound
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalid) {
			return Profile{}, err
		}
		return Profile{}, fmt.Errorf("updating profile: %w", err)
	}
	return updated, nil
}

func decodeProfile(body []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return Profile{}, fmt.Errorf("decoding profile document: %w", err)
	}
	fillEmpty(&p)
	return p, nil
}

// fillEmpty replaces nil collections so they encode as [] and {}.
func fillEmpty(p *Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Work == nil {
		p.Work = []WorkEntry{}
	}
	if p.Links == nil {
		p.Links = Links{}
	}
	if p.Projects == nil {
		p.Projects = []ProjectEntry{}
	}
	for i := range p.Projects {
		if p.Projects[i].Skills == nil {
			p.Projects[i].Skills = []string{}
		}
		if p.Projects[i].Links == nil {
			p.Projects[i].Links = []ProjectLink{}
		}
	}
}

// MaxNameLen is the longest accepted profile name.
const MaxNameLen = 80

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Seed writes p as the profile document, replacing any existing one. It is
// the out-of-band way a profile comes into existence. The email is
// normalized and used as the key; skills, work, projects and links go
// through the same normalization as the regular operations, and missing
// sub-document ids are generated.
func Seed(ctx context.Context, w DocumentWriter, p Profile) (Profile, error) {
	p.Email = Key(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	p.Education = strings.TrimSpace(p.Education)

	if p.Name == "" {
		return Profile{}, invalid("name is required")
	}
	if len([]rune(p.Name)) > MaxNameLen {
		return Profile{}, invalid("name must be at most %d characters", MaxNameLen)
	}
	if !emailPattern.MatchString(p.Email) {
		return Profile{}, invalid("invalid email format")
	}
	links := make(Links, len(p.Links))
	for name, v := range p.Links {
		v = strings.TrimSpace(v)
		if !IsValidURL(v) {
			return Profile{}, invalid("%s must be a valid http/https url", name)
		}
		links[name] = v
	}
	p.Links = links

	newID := func() string { return uuid.New().String() }
	p.Skills = normalizeProfileSkills(p.Skills)
	p.Work = append([]WorkEntry(nil), p.Work...)
	p.Projects = append([]ProjectEntry(nil), p.Projects...)
	for i := range p.Work {
		if p.Work[i].ID == "" {
			p.Work[i].ID = newID()
		}
	}
	for i := range p.Projects {
		pr := &p.Projects[i]
		if pr.ID == "" {
			pr.ID = newID()
		}
		pr.Title = strings.TrimSpace(pr.Title)
		pr.Description = strings.TrimSpace(pr.Description)
		pr.Skills = cleanProjectSkills(pr.Skills)
		pr.Links = filterProjectLinks(pr.Links, newID)
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	fillEmpty(&p)

	body, err := json.Marshal(p)
	if err != nil {
		return Profile{}, fmt.Errorf("encoding profile: %w", err)
	}
	if err := w.ReplaceOne(ctx, p.Email, body); err != nil {
		return Profile{}, fmt.Errorf("writing profile: %w", err)
	}
	return p, nil
}

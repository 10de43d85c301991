package credentials

import (
	"context"
	"sort"
	"strings"

	"opsflow/internal/platform/ids"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Get returns the credential with its password revealed.
func (s *Service) Get(ctx context.Context, id string) (*Credential, error) {
	if !ids.Valid(id) {
		return nil, ErrCredentialNotFound
	}
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	decorate(c)
	return c, nil
}

// List masks every password; strength is computed before masking.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Credential, error) {
	items, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		decorate(&items[i])
		items[i].Password = ""
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Credential, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.URL = strings.TrimSpace(in.URL)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	c, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	decorate(c)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Credential, error) {
	if !ids.Valid(id) {
		return nil, ErrCredentialNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		in.Name = &name
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, ErrCategoryInvalid
		}
		in.Category = &category
	}
	if err := s.store.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !ids.Valid(id) {
		return ErrCredentialNotFound
	}
	return s.store.Delete(ctx, id)
}

// Categories merges the default categories with those in use. Defaults come
// first in their fixed order, followed by custom categories by name.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	counts, err := s.store.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}
	byKey := map[string]int{}
	for name, n := range counts {
		byKey[strings.ToLower(name)] += n
	}

	out := make([]Category, 0, len(DefaultCategories)+len(counts))
	seen := map[string]bool{}
	for _, name := range DefaultCategories {
		key := strings.ToLower(name)
		seen[key] = true
		out = append(out, Category{Name: name, Count: byKey[key], Default: true})
	}
	var custom []Category
	for name := range counts {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		custom = append(custom, Category{Name: name, Count: byKey[key]})
	}
	sort.Slice(custom, func(i, j int) bool {
		return strings.ToLower(custom[i].Name) < strings.ToLower(custom[j].Name)
	})
	return append(out, custom...), nil
}

func decorate(c *Credential) {
	c.Strength = Strength(c.Password)
	c.HasPassword = c.Password != ""
}

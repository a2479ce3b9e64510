package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

type categoryRepo struct{ base }

func (r *categoryRepo) Create(_ context.Context, category *domain.Category) error {
	defer r.lock()()
	if r.nameTaken(category.Name, "") {
		return repository.ErrDuplicate
	}
	now := r.s.now()
	category.ID = uuid.NewString()
	category.CreatedAt = now
	category.UpdatedAt = now
	r.data().categories[category.ID] = *category
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	defer r.lock()()
	category, ok := r.data().categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &category, nil
}

func (r *categoryRepo) List(_ context.Context, filter repository.CategoryFilter) ([]domain.Category, int, error) {
	defer r.lock()()
	matched := make([]domain.Category, 0, len(r.data().categories))
	for _, category := range r.data().categories {
		if filter.Active != nil && category.IsActive != *filter.Active {
			continue
		}
		matched = append(matched, category)
	}
	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *categoryRepo) Update(_ context.Context, category *domain.Category) error {
	defer r.lock()()
	existing, ok := r.data().categories[category.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(category.Name, category.ID) {
		return repository.ErrDuplicate
	}
	existing.Name = category.Name
	existing.Description = category.Description
	existing.UpdatedAt = r.s.now()
	r.data().categories[category.ID] = existing
	category.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *categoryRepo) SetActive(_ context.Context, id string, active bool) (*domain.Category, error) {
	defer r.lock()()
	category, ok := r.data().categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	category.IsActive = active
	category.UpdatedAt = r.s.now()
	r.data().categories[id] = category
	return &category, nil
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.data().categories[id]; !ok {
		return repository.ErrNotFound
	}
	for _, event := range r.data().events {
		if event.CategoryID != nil && *event.CategoryID == id {
			return repository.ErrInUse
		}
	}
	delete(r.data().categories, id)
	return nil
}

func (r *categoryRepo) nameTaken(name, exceptID string) bool {
	for id, category := range r.data().categories {
		if id != exceptID && strings.EqualFold(category.Name, name) {
			return true
		}
	}
	return false
}

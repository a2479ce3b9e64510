package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

const maxCategoryNameLength = 100

// CategoryInput carries the editable fields of a category. Nil fields are
// left unchanged on update.
type CategoryInput struct {
	Name        *string
	Description *string
}

// ListCategoriesInput filters the category listing.
type ListCategoriesInput struct {
	Active *bool
	Page   Page
}

// CategoryDetail is a category with its active events.
type CategoryDetail struct {
	Category *domain.Category
	Events   []domain.Event
}

// CategoryService manages the categories events are filed under.
type CategoryService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewCategoryService constructs the service.
func NewCategoryService(deps Dependencies) *CategoryService {
	deps = deps.withDefaults()
	return &CategoryService{store: deps.Store, logger: deps.Logger}
}

// Create adds an active category. Names are unique ignoring case.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	var name string
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &domain.Category{Name: name, IsActive: true}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.store.Repos().Categories.Create(ctx, category); err != nil {
		return nil, categoryWriteError(err, category.ID, name)
	}
	s.logger.Info("category created", zap.String("category_id", category.ID))
	return category, nil
}

// List returns one page of categories ordered by name, plus the match count.
func (s *CategoryService) List(ctx context.Context, input ListCategoriesInput) ([]domain.Category, int, error) {
	categories, total, err := s.store.Repos().Categories.List(ctx, repository.CategoryFilter{
		Active: input.Active,
		Limit:  input.Page.Limit,
		Offset: input.Page.Offset,
	})
	if err != nil {
		return nil, 0, internal(err)
	}
	return categories, total, nil
}

// Active returns every active category, unpaged.
func (s *CategoryService) Active(ctx context.Context) ([]domain.Category, error) {
	active := true
	categories, _, err := s.store.Repos().Categories.List(ctx, repository.CategoryFilter{Active: &active})
	if err != nil {
		return nil, internal(err)
	}
	return categories, nil
}

// Get returns a category with its active events, soonest first.
func (s *CategoryService) Get(ctx context.Context, id string) (*CategoryDetail, error) {
	repos := s.store.Repos()
	category, err := repos.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	events, _, err := repos.Events.List(ctx, repository.EventFilter{ActiveOnly: true, CategoryID: &category.ID})
	if err != nil {
		return nil, internal(err)
	}
	return &CategoryDetail{Category: category, Events: events}, nil
}

// Update applies the non-nil fields of input.
func (s *CategoryService) Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	repos := s.store.Repos()
	category, err := repos.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateCategoryName(name); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if err := repos.Categories.Update(ctx, category); err != nil {
		return nil, categoryWriteError(err, id, category.Name)
	}
	return category, nil
}

// Delete removes a category no event is filed under.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Categories.GetByID(ctx, id); err != nil {
			return notFound(err, "category", id)
		}
		count, err := repos.Events.CountByCategory(ctx, id)
		if err != nil {
			return internal(err)
		}
		if count > 0 {
			return apperrors.NewConflict("cannot delete a category that has events",
				map[string]any{"event_count": count})
		}
		if err := repos.Categories.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrInUse) {
				return apperrors.NewConflict("cannot delete a category that has events", nil)
			}
			return notFound(err, "category", id)
		}
		s.logger.Info("category deleted", zap.String("category_id", id))
		return nil
	})
}

// ToggleStatus flips is_active. Events filed under the category are untouched.
func (s *CategoryService) ToggleStatus(ctx context.Context, id string) (*domain.Category, error) {
	repos := s.store.Repos()
	category, err := repos.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	updated, err := repos.Categories.SetActive(ctx, id, !category.IsActive)
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	return updated, nil
}

func validateCategoryName(name string) error {
	switch {
	case name == "":
		return apperrors.NewValidationError("invalid category", map[string]any{"name": "required"})
	case len(name) > maxCategoryNameLength:
		return apperrors.NewValidationError("invalid category", map[string]any{"name": "must be at most 100 characters"})
	}
	return nil
}

func categoryWriteError(err error, id, name string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("category name already exists", map[string]any{"name": name})
	}
	return notFound(err, "category", id)
}

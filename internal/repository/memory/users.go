package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

type userRepo struct{ base }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	defer r.lock()()
	for _, existing := range r.data().users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.data().users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	defer r.lock()()
	user, ok := r.data().users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	defer r.lock()()
	for _, user := range r.data().users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	defer r.lock()()
	var search string
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	matched := make([]domain.User, 0, len(r.data().users))
	for _, user := range r.data().users {
		switch {
		case filter.Role != nil && user.Role != *filter.Role:
			continue
		case filter.Status != nil && user.Status != *filter.Status:
			continue
		case search != "" && !strings.Contains(strings.ToLower(user.Name), search) &&
			!strings.Contains(strings.ToLower(user.Email), search):
			continue
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *userRepo) UpdateRole(_ context.Context, id string, role domain.UserRole) (*domain.User, error) {
	defer r.lock()()
	return r.mutate(id, func(u *domain.User) {
		u.Role = role
	})
}

func (r *userRepo) SetStatus(_ context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	defer r.lock()()
	return r.mutate(id, func(u *domain.User) {
		u.Status = status
	})
}

// Delete refuses while any row still references the user, like the foreign keys do.
func (r *userRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	st := r.data()
	if _, ok := st.users[id]; !ok {
		return repository.ErrNotFound
	}
	for _, ticket := range st.tickets {
		if ticket.UserID == id {
			return repository.ErrInUse
		}
	}
	for _, reg := range st.registrations {
		if reg.UserID == id {
			return repository.ErrInUse
		}
	}
	for _, event := range st.events {
		if event.OrganizerID != nil && *event.OrganizerID == id {
			return repository.ErrInUse
		}
	}
	for _, promo := range st.promoCodes {
		if promo.CreatedBy != nil && *promo.CreatedBy == id {
			return repository.ErrInUse
		}
	}
	for _, adj := range st.adjustments {
		if adj.ActorID == id {
			return repository.ErrInUse
		}
	}
	delete(st.users, id)
	return nil
}

func (r *userRepo) Count(_ context.Context) (int, error) {
	defer r.lock()()
	return len(r.data().users), nil
}

func (r *userRepo) mutate(id string, fn func(*domain.User)) (*domain.User, error) {
	user, ok := r.data().users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(&user)
	user.UpdatedAt = r.s.now()
	r.data().users[id] = user
	return &user, nil
}

type adjustmentRepo struct{ base }

func (r *adjustmentRepo) Create(_ context.Context, adj *domain.SalesAdjustment) error {
	defer r.lock()()
	adj.ID = uuid.NewString()
	adj.CreatedAt = r.s.now()
	r.data().adjustments = append(r.data().adjustments, *adj)
	return nil
}

func (r *adjustmentRepo) ListByEvent(_ context.Context, eventID string) ([]domain.SalesAdjustment, error) {
	defer r.lock()()
	var result []domain.SalesAdjustment
	for _, adj := range r.data().adjustments {
		if adj.EventID == eventID {
			result = append(result, adj)
		}
	}
	return result, nil
}

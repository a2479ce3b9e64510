package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

type registrationRepo struct{ base }

func (r *registrationRepo) Create(_ context.Context, reg *domain.Registration) error {
	defer r.lock()()
	for _, existing := range r.data().registrations {
		if existing.UserID == reg.UserID && existing.EventID == reg.EventID {
			return repository.ErrDuplicate
		}
	}
	reg.ID = uuid.NewString()
	reg.RegisteredAt = r.s.now()
	r.data().registrations[reg.ID] = *reg
	return nil
}

func (r *registrationRepo) GetByID(_ context.Context, id string) (*domain.Registration, error) {
	defer r.lock()()
	reg, ok := r.data().registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &reg, nil
}

func (r *registrationRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.data().registrations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.data().registrations, id)
	return nil
}

func (r *registrationRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Registration, error) {
	defer r.lock()()
	var result []domain.Registration
	for _, reg := range r.data().registrations {
		if reg.UserID == userID {
			result = append(result, reg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RegisteredAt.After(result[j].RegisteredAt)
	})
	if limit <= 0 {
		limit = 20
	}
	return paginate(result, limit, offset), nil
}

func (r *registrationRepo) ListByEvent(_ context.Context, eventID string) ([]domain.Registration, error) {
	defer r.lock()()
	var result []domain.Registration
	for _, reg := range r.data().registrations {
		if reg.EventID == eventID {
			result = append(result, reg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RegisteredAt.Before(result[j].RegisteredAt)
	})
	return result, nil
}

func (r *registrationRepo) Exists(_ context.Context, userID, eventID string) (bool, error) {
	defer r.lock()()
	for _, reg := range r.data().registrations {
		if reg.UserID == userID && reg.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (r *registrationRepo) CountByEvent(_ context.Context, eventID string) (int, error) {
	defer r.lock()()
	count := 0
	for _, reg := range r.data().registrations {
		if reg.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *registrationRepo) CountByUser(_ context.Context, userID string) (int, error) {
	defer r.lock()()
	count := 0
	for _, reg := range r.data().registrations {
		if reg.UserID == userID {
			count++
		}
	}
	return count, nil
}

package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

type ticketTypeRepo struct{ base }

func (r *ticketTypeRepo) Create(_ context.Context, tt *domain.TicketType) error {
	defer r.lock()()
	if _, ok := r.data().events[tt.EventID]; !ok {
		return repository.ErrNotFound
	}
	now := r.s.now()
	tt.ID = uuid.NewString()
	tt.QuantitySold = 0
	tt.CreatedAt = now
	tt.UpdatedAt = now
	r.data().ticketTypes[tt.ID] = *tt
	return nil
}

func (r *ticketTypeRepo) GetByID(_ context.Context, id string) (*domain.TicketType, error) {
	defer r.lock()()
	tt, ok := r.data().ticketTypes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tt, nil
}

func (r *ticketTypeRepo) ListByEvent(_ context.Context, eventID string) ([]domain.TicketType, error) {
	defer r.lock()()
	var result []domain.TicketType
	for _, tt := range r.data().ticketTypes {
		if tt.EventID == eventID {
			result = append(result, tt)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder == result[j].SortOrder {
			return result[i].Name < result[j].Name
		}
		return result[i].SortOrder < result[j].SortOrder
	})
	return result, nil
}

func (r *ticketTypeRepo) Reserve(_ context.Context, id string, quantity int) error {
	defer r.lock()()
	tt, ok := r.data().ticketTypes[id]
	if !ok {
		return repository.ErrNotFound
	}
	if tt.QuantitySold+quantity > tt.QuantityAvailable {
		return repository.ErrSoldOut
	}
	tt.QuantitySold += quantity
	tt.UpdatedAt = r.s.now()
	r.data().ticketTypes[id] = tt
	return nil
}

func (r *ticketTypeRepo) Release(_ context.Context, id string, quantity int) error {
	defer r.lock()()
	tt, ok := r.data().ticketTypes[id]
	if !ok {
		return repository.ErrNotFound
	}
	tt.QuantitySold -= quantity
	if tt.QuantitySold < 0 {
		tt.QuantitySold = 0
	}
	tt.UpdatedAt = r.s.now()
	r.data().ticketTypes[id] = tt
	return nil
}

package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

type ticketRepo struct{ base }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	defer r.lock()()
	for _, existing := range r.data().tickets {
		if existing.UniqueCode == ticket.UniqueCode {
			return repository.ErrDuplicate
		}
		if ticket.Status == domain.TicketStatusActive && existing.Status == domain.TicketStatusActive &&
			existing.UserID == ticket.UserID && existing.EventID == ticket.EventID {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	ticket.ID = uuid.NewString()
	ticket.PurchaseDate = now
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.data().tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	defer r.lock()()
	ticket, ok := r.data().tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ticket, nil
}

func (r *ticketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	defer r.lock()()
	for _, ticket := range r.data().tickets {
		if ticket.UniqueCode == code {
			return &ticket, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ticketRepo) UpdateStatus(_ context.Context, id string, from, to domain.TicketStatus) (*domain.Ticket, error) {
	defer r.lock()()
	ticket, ok := r.data().tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ticket.Status != from {
		return nil, repository.ErrStateChanged
	}
	ticket.Status = to
	ticket.UpdatedAt = r.s.now()
	r.data().tickets[id] = ticket
	return &ticket, nil
}

func (r *ticketRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	defer r.lock()()
	var result []domain.Ticket
	for _, ticket := range r.data().tickets {
		if ticket.UserID == userID {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PurchaseDate.After(result[j].PurchaseDate)
	})
	if limit <= 0 {
		limit = 20
	}
	return paginate(result, limit, offset), nil
}

func (r *ticketRepo) HasActive(_ context.Context, userID, eventID string) (bool, error) {
	defer r.lock()()
	for _, ticket := range r.data().tickets {
		if ticket.UserID == userID && ticket.EventID == eventID && ticket.Status == domain.TicketStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *ticketRepo) CountByStatus(_ context.Context, eventID string) (map[domain.TicketStatus]int, error) {
	defer r.lock()()
	counts := map[domain.TicketStatus]int{}
	for _, ticket := range r.data().tickets {
		if ticket.EventID == eventID {
			counts[ticket.Status]++
		}
	}
	return counts, nil
}

func (r *ticketRepo) ListHistory(_ context.Context, userID string, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, int, error) {
	defer r.lock()()
	var result []domain.Ticket
	for _, ticket := range r.data().tickets {
		if ticket.UserID != userID || (status != nil && ticket.Status != *status) {
			continue
		}
		result = append(result, ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PurchaseDate.Equal(result[j].PurchaseDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].PurchaseDate.After(result[j].PurchaseDate)
	})
	if limit <= 0 {
		limit = 20
	}
	return paginate(result, limit, offset), len(result), nil
}

func (r *ticketRepo) CountByUser(_ context.Context, userID string) (int, error) {
	defer r.lock()()
	count := 0
	for _, ticket := range r.data().tickets {
		if ticket.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *ticketRepo) Summary(_ context.Context) (repository.TicketSummary, error) {
	defer r.lock()()
	var summary repository.TicketSummary
	for _, ticket := range r.data().tickets {
		summary.Total++
		if ticket.Status == domain.TicketStatusActive {
			summary.Active++
		}
	}
	return summary, nil
}

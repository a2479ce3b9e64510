package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

type eventRepo struct{ base }

func (r *eventRepo) Create(_ context.Context, event *domain.Event) error {
	defer r.lock()()
	now := r.s.now()
	event.ID = uuid.NewString()
	event.TicketsSold = 0
	event.TotalRevenue = decimal.Zero
	event.CreatedAt = now
	event.UpdatedAt = now
	r.data().events[event.ID] = *event
	return nil
}

func (r *eventRepo) Update(_ context.Context, event *domain.Event) error {
	defer r.lock()()
	updated, err := r.mutate(event.ID, func(e *domain.Event) {
		e.Title = event.Title
		e.Description = event.Description
		e.Location = event.Location
		e.EventDate = event.EventDate
		e.Price = event.Price
		e.IsFeatured = event.IsFeatured
		e.CategoryID = event.CategoryID
	})
	if err != nil {
		return err
	}
	event.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *eventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	defer r.lock()()
	return r.get(id)
}

func (r *eventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *eventRepo) get(id string) (*domain.Event, error) {
	event, ok := r.data().events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &event, nil
}

func (r *eventRepo) List(_ context.Context, filter repository.EventFilter) ([]domain.Event, int, error) {
	defer r.lock()()

	var search, location string
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}
	if filter.Location != nil {
		location = strings.ToLower(strings.TrimSpace(*filter.Location))
	}

	matched := make([]domain.Event, 0, len(r.data().events))
	for _, event := range r.data().events {
		switch {
		case filter.ActiveOnly && !event.IsActive:
			continue
		case filter.FeaturedOnly && !event.IsFeatured:
			continue
		case filter.StartsAfter != nil && !event.EventDate.After(*filter.StartsAfter):
			continue
		case filter.DateFrom != nil && event.EventDate.Before(*filter.DateFrom):
			continue
		case filter.DateTo != nil && event.EventDate.After(*filter.DateTo):
			continue
		case filter.OrganizerID != nil && (event.OrganizerID == nil || *event.OrganizerID != *filter.OrganizerID):
			continue
		case filter.CategoryID != nil && (event.CategoryID == nil || *event.CategoryID != *filter.CategoryID):
			continue
		case location != "" && !strings.Contains(strings.ToLower(event.Location), location):
			continue
		case filter.MinPrice != nil && event.Price.LessThan(*filter.MinPrice):
			continue
		case filter.MaxPrice != nil && event.Price.GreaterThan(*filter.MaxPrice):
			continue
		case search != "" && !matchesSearch(event, search):
			continue
		}
		matched = append(matched, event)
	}
	sort.Slice(matched, func(i, j int) bool {
		if filter.NewestFirst {
			if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].ID < matched[j].ID
			}
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		if matched[i].EventDate.Equal(matched[j].EventDate) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].EventDate.Before(matched[j].EventDate)
	})

	total := len(matched)
	return paginate(matched, filter.Limit, filter.Offset), total, nil
}

func matchesSearch(event domain.Event, term string) bool {
	return strings.Contains(strings.ToLower(event.Title), term) ||
		strings.Contains(strings.ToLower(event.Description), term) ||
		strings.Contains(strings.ToLower(event.Location), term)
}

func (r *eventRepo) SetActive(_ context.Context, id string, active bool) (*domain.Event, error) {
	defer r.lock()()
	return r.mutate(id, func(e *domain.Event) {
		e.IsActive = active
	})
}

func (r *eventRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if _, ok := r.data().events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.data().events, id)
	for key, tt := range r.data().ticketTypes {
		if tt.EventID == id {
			delete(r.data().ticketTypes, key)
		}
	}
	for key, ticket := range r.data().tickets {
		if ticket.EventID == id {
			delete(r.data().tickets, key)
		}
	}
	for key, promo := range r.data().promoCodes {
		if promo.EventID != nil && *promo.EventID == id {
			delete(r.data().promoCodes, key)
		}
	}
	return nil
}

func (r *eventRepo) ReserveSeats(_ context.Context, id string, quantity int, amount decimal.Decimal) (*domain.Event, error) {
	defer r.lock()()
	event, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if event.TicketsSold+quantity > event.Capacity {
		return nil, repository.ErrSoldOut
	}
	return r.mutate(id, func(e *domain.Event) {
		e.TicketsSold += quantity
		e.TotalRevenue = e.TotalRevenue.Add(amount)
	})
}

func (r *eventRepo) ReleaseSeats(_ context.Context, id string, quantity int, amount decimal.Decimal) (*domain.Event, error) {
	defer r.lock()()
	return r.mutate(id, func(e *domain.Event) {
		e.TicketsSold -= quantity
		if e.TicketsSold < 0 {
			e.TicketsSold = 0
		}
		e.TotalRevenue = e.TotalRevenue.Sub(amount)
		if e.TotalRevenue.IsNegative() {
			e.TotalRevenue = decimal.Zero
		}
	})
}

func (r *eventRepo) SetSales(_ context.Context, id string, sold int, revenue decimal.Decimal) (*domain.Event, error) {
	defer r.lock()()
	return r.mutate(id, func(e *domain.Event) {
		e.TicketsSold = sold
		e.TotalRevenue = revenue
	})
}

func (r *eventRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	defer r.lock()()
	count := 0
	for _, event := range r.data().events {
		if event.CategoryID != nil && *event.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *eventRepo) Summary(_ context.Context, now time.Time) (repository.EventSummary, error) {
	defer r.lock()()
	summary := repository.EventSummary{Revenue: decimal.Zero, ByCategory: map[string]int{}}
	for _, event := range r.data().events {
		summary.Total++
		if event.EventDate.After(now) {
			summary.Upcoming++
		}
		summary.Revenue = summary.Revenue.Add(event.TotalRevenue)
		if event.CategoryID != nil {
			summary.ByCategory[*event.CategoryID]++
		}
	}
	return summary, nil
}

func (r *eventRepo) mutate(id string, fn func(*domain.Event)) (*domain.Event, error) {
	event, ok := r.data().events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(&event)
	event.UpdatedAt = r.s.now()
	r.data().events[id] = event
	return &event, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

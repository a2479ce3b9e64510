// Package memory is an in-process Store used when no database is configured
// and by the service tests. Transactions are serialized behind one mutex and
// roll back by restoring a snapshot taken when they started.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
)

type state struct {
	events        map[string]domain.Event
	categories    map[string]domain.Category
	tickets       map[string]domain.Ticket
	registrations map[string]domain.Registration
	promoCodes    map[string]domain.PromoCode
	ticketTypes   map[string]domain.TicketType
	users         map[string]domain.User
	adjustments   []domain.SalesAdjustment
}

func newState() *state {
	return &state{
		events:        map[string]domain.Event{},
		categories:    map[string]domain.Category{},
		tickets:       map[string]domain.Ticket{},
		registrations: map[string]domain.Registration{},
		promoCodes:    map[string]domain.PromoCode{},
		ticketTypes:   map[string]domain.TicketType{},
		users:         map[string]domain.User{},
	}
}

func (s *state) clone() *state {
	c := &state{
		events:        make(map[string]domain.Event, len(s.events)),
		categories:    make(map[string]domain.Category, len(s.categories)),
		tickets:       make(map[string]domain.Ticket, len(s.tickets)),
		registrations: make(map[string]domain.Registration, len(s.registrations)),
		promoCodes:    make(map[string]domain.PromoCode, len(s.promoCodes)),
		ticketTypes:   make(map[string]domain.TicketType, len(s.ticketTypes)),
		users:         make(map[string]domain.User, len(s.users)),
		adjustments:   append([]domain.SalesAdjustment(nil), s.adjustments...),
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.registrations {
		c.registrations[k] = v
	}
	for k, v := range s.promoCodes {
		c.promoCodes[k] = v
	}
	for k, v := range s.ticketTypes {
		c.ticketTypes[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store implements repository.Store in memory.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repos returns repositories that lock the store per call.
func (s *Store) Repos() repository.Repositories {
	return s.repositories(false)
}

// WithinTx holds the store lock for the duration of fn and restores the
// pre-transaction state when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.st.clone()
	if err := fn(ctx, s.repositories(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) repositories(inTx bool) repository.Repositories {
	b := base{s: s, inTx: inTx}
	return repository.Repositories{
		Events:        &eventRepo{b},
		Categories:    &categoryRepo{b},
		Tickets:       &ticketRepo{b},
		Registrations: &registrationRepo{b},
		PromoCodes:    &promoRepo{b},
		TicketTypes:   &ticketTypeRepo{b},
		Users:         &userRepo{b},
		Adjustments:   &adjustmentRepo{b},
	}
}

type base struct {
	s    *Store
	inTx bool
}

// lock acquires the store mutex unless the caller already holds it through WithinTx.
func (b base) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

func (b base) data() *state {
	return b.s.st
}

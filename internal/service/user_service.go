package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/config"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

// ListUsersInput filters the admin account listing.
type ListUsersInput struct {
	Role   *domain.UserRole
	Status *domain.UserStatus
	Search *string
	Page   Page
}

// CreateUserInput provisions an account. An empty Role means user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
}

// UserService is the admin side of account management.
type UserService struct {
	store      repository.Store
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps Dependencies, cfg config.AuthConfig) *UserService {
	deps = deps.withDefaults()
	return &UserService{store: deps.Store, bcryptCost: cfg.BcryptCost, logger: deps.Logger}
}

// List returns one page of accounts, newest first, plus the match count.
func (s *UserService) List(ctx context.Context, input ListUsersInput) ([]domain.User, int, error) {
	if input.Role != nil && !input.Role.Valid() {
		return nil, 0, apperrors.NewValidationError("invalid filter", map[string]any{"role": "unknown role"})
	}
	users, total, err := s.store.Repos().Users.List(ctx, repository.UserFilter{
		Role:   input.Role,
		Status: input.Status,
		Search: input.Search,
		Limit:  input.Page.Limit,
		Offset: input.Page.Offset,
	})
	if err != nil {
		return nil, 0, internal(err)
	}
	return users, total, nil
}

// Create provisions an active account with any role.
func (s *UserService) Create(ctx context.Context, actor Actor, input CreateUserInput) (*domain.User, error) {
	name, email, details := normalizeAccount(input.Name, input.Email, input.Password)
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		details["role"] = "must be one of user, organizer, admin"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user", details)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, internal(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := s.store.Repos().Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, internal(err)
	}
	s.logger.Info("user provisioned",
		zap.String("user_id", user.ID),
		zap.String("role", string(role)),
		zap.String("actor_id", actor.UserID))
	return user, nil
}

// UpdateRole changes another account's role.
func (s *UserService) UpdateRole(ctx context.Context, actor Actor, id string, role domain.UserRole) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role",
			map[string]any{"role": "must be one of user, organizer, admin"})
	}
	if id == actor.UserID {
		return nil, apperrors.NewValidationError("cannot change your own role", nil)
	}
	user, err := s.store.Repos().Users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	s.logger.Info("user role changed", zap.String("user_id", id), zap.String("role", string(role)))
	return user, nil
}

// ToggleStatus suspends an active account or reactivates a suspended one.
func (s *UserService) ToggleStatus(ctx context.Context, actor Actor, id string) (*domain.User, error) {
	if id == actor.UserID {
		return nil, apperrors.NewValidationError("cannot change your own status", nil)
	}
	repos := s.store.Repos()
	user, err := repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	next := domain.UserStatusSuspended
	if user.Status != domain.UserStatusActive {
		next = domain.UserStatusActive
	}
	updated, err := repos.Users.SetStatus(ctx, id, next)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	s.logger.Info("user status changed", zap.String("user_id", id), zap.String("status", string(next)))
	return updated, nil
}

// Delete removes an account that holds no tickets or registrations and
// organizes no events.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if id == actor.UserID {
		return apperrors.NewValidationError("cannot delete your own account", nil)
	}
	return s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, id); err != nil {
			return notFound(err, "user", id)
		}
		tickets, err := repos.Tickets.CountByUser(ctx, id)
		if err != nil {
			return internal(err)
		}
		registrations, err := repos.Registrations.CountByUser(ctx, id)
		if err != nil {
			return internal(err)
		}
		_, organized, err := repos.Events.List(ctx, repository.EventFilter{OrganizerID: &id, Limit: 1})
		if err != nil {
			return internal(err)
		}
		if tickets > 0 || registrations > 0 || organized > 0 {
			return apperrors.NewConflict("cannot delete a user with tickets or events", map[string]any{
				"tickets":       tickets,
				"registrations": registrations,
				"events":        organized,
			})
		}
		if err := repos.Users.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrInUse) {
				return apperrors.NewConflict("user is still referenced", nil)
			}
			return notFound(err, "user", id)
		}
		s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
		return nil
	})
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/observability"
	"github.com/spec-kit/event-ticketing/internal/repository"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var tracer = otel.Tracer("github.com/spec-kit/event-ticketing/internal/service")

// Dependencies bundles what every workflow service needs.
type Dependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Page is a normalized limit/offset pair.
type Page struct {
	Limit  int
	Offset int
}

// NormalizePage clamps limit into [1, maxPageSize] and offset to >= 0.
func NormalizePage(limit, offset int) Page {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// notFound maps repository.ErrNotFound to a NOT_FOUND domain error and
// wraps anything else as internal.
func notFound(err error, resource string, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return internal(err)
}

func internal(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewInternalError(err)
}

// startSpan opens a span and returns a finisher that records err on it.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span, func(*error)) {
	ctx, span := tracer.Start(ctx, name)
	return ctx, span, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		span.End()
	}
}

type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handlers failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/config"
	"github.com/spec-kit/event-ticketing/internal/events"
)

// NotificationService emits buyer and organizer notifications for sales events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketPurchased, n.handleSeatsTaken)
	n.dispatcher.Subscribe(events.EventRegistrationCreated, n.handleSeatsTaken)
	n.dispatcher.Subscribe(events.EventTicketCancelled, n.handleSeatsReleased)
	n.dispatcher.Subscribe(events.EventRegistrationCancelled, n.handleSeatsReleased)
	n.dispatcher.Subscribe(events.EventSalesAdjusted, n.handleSalesAdjusted)
}

func (n *NotificationService) handleSeatsTaken(ctx context.Context, event events.Event) error {
	n.logger.Info("SeatsTaken", zap.String("type", string(event.Type)), zap.String("event_id", event.EventID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	if payload, ok := event.Payload.(events.SeatsPayload); ok && payload.Remaining == 0 {
		n.sendWebhookNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleSeatsReleased(ctx context.Context, event events.Event) error {
	n.logger.Info("SeatsReleased", zap.String("type", string(event.Type)), zap.String("event_id", event.EventID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSalesAdjusted(ctx context.Context, event events.Event) error {
	n.logger.Info("SalesAdjusted", zap.String("event_id", event.EventID), zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to_user", event.Actor.UserID),
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.Type)))
}

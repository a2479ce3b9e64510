package worker

import (
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a Redis
// publisher is configured, fans every sales event out to it.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, publisher *events.RedisPublisher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher != nil && publisher != nil {
		events.SubscribeAll(dispatcher, publisher.Handle)
	}
}

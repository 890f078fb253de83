package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/mes-portal/internal/events"
	"github.com/spec-kit/mes-portal/internal/persistence"
	"github.com/spec-kit/mes-portal/internal/service"
)

// StartNotificationWorker subscribes event logging and, when rdb is set,
// Redis fan-out on channel.
func StartNotificationWorker(dispatcher events.Dispatcher, rdb *persistence.Redis, channel string, logger *zap.Logger) *service.NotificationService {
	var publisher service.Publisher
	if rdb != nil {
		publisher = rdb
	}
	notifications := service.NewNotificationService(dispatcher, publisher, channel, logger)
	notifications.RegisterHandlers()
	return notifications
}

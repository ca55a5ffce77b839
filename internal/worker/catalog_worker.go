package worker

import (
	"github.com/spec-kit/movie-catalog/internal/service"
)

// StartCatalogWorkers registers the event subscribers that react to catalog changes.
func StartCatalogWorkers(notifications *service.NotificationService, statuses *service.SyncStatusRecorder) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if statuses != nil {
		statuses.RegisterHandlers()
	}
}

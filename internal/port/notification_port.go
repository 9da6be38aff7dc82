package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
)

type NotificationRepository interface {
	InsertNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)

	ListNotifications(ctx context.Context, userID uuid.UUID, role domain.Role, onlyUnread bool) ([]domain.Notification, error)

	MarkViewed(ctx context.Context, ids []uuid.UUID) error

	// MarkViewedByOrderRequest marks every unread notification attached to
	// the request as viewed, across all recipients.
	MarkViewedByOrderRequest(ctx context.Context, orderRequestID uuid.UUID) error
}

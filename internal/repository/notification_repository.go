package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"github.com/samber/lo"
)

type notificationRepository struct {
	db DB
}

func NewNotification(db DB) port.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) InsertNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if n.UserID == uuid.Nil {
		return n, errors.New("userID is empty")
	}

	data, err := json.Marshal(emptyMapIfNil(n.Data))
	if err != nil {
		return n, fmt.Errorf("json.Marshal: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, role, type, order_request_id, offer_id, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		n.UserID, string(n.Role), string(n.Type), n.OrderRequestID, n.OfferID, data,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return n, fmt.Errorf("db.QueryRow: %w", err)
	}

	return n, nil
}

func (r *notificationRepository) ListNotifications(ctx context.Context, userID uuid.UUID, role domain.Role, onlyUnread bool) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, role, type, order_request_id, offer_id, data, viewed_at, created_at
		FROM notifications
		WHERE user_id = $1 AND role = $2 AND ($3 = false OR viewed_at IS NULL)
		ORDER BY created_at DESC`, userID, string(role), onlyUnread)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var (
			n   domain.Notification
			raw []byte
		)

		err := rows.Scan(&n.ID, &n.UserID, (*string)(&n.Role), (*string)(&n.Type),
			&n.OrderRequestID, &n.OfferID, &raw, &n.ViewedAt, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		if err := json.Unmarshal(raw, &n.Data); err != nil {
			return nil, fmt.Errorf("json.Unmarshal: %w", err)
		}

		result = append(result, n)
	}

	return result, rows.Err()
}

func (r *notificationRepository) MarkViewed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	raw := lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() })

	if _, err := r.db.Exec(ctx, `
		UPDATE notifications SET viewed_at = now()
		WHERE id = ANY($1::uuid[]) AND viewed_at IS NULL`, raw); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}

func (r *notificationRepository) MarkViewedByOrderRequest(ctx context.Context, orderRequestID uuid.UUID) error {
	if orderRequestID == uuid.Nil {
		return errors.New("orderRequestID is empty")
	}

	if _, err := r.db.Exec(ctx, `
		UPDATE notifications SET viewed_at = now()
		WHERE order_request_id = $1 AND viewed_at IS NULL`, orderRequestID); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}

func emptyMapIfNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"go.uber.org/zap"
)

func (s *Lifecycle) ListNotifications(ctx context.Context, userID uuid.UUID, role domain.Role, onlyUnread bool) ([]domain.Notification, error) {
	var result []domain.Notification

	err := s.store.WithinTx(ctx, func(r port.Repositories) error {
		var err error
		result, err = r.Notifications.ListNotifications(ctx, userID, role, onlyUnread)
		if err != nil {
			return fmt.Errorf("Notifications.ListNotifications: %w", err)
		}
		return nil
	})

	return result, err
}

func (s *Lifecycle) MarkNotificationsViewed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	return s.store.WithinTx(ctx, func(r port.Repositories) error {
		if err := r.Notifications.MarkViewed(ctx, ids); err != nil {
			return fmt.Errorf("Notifications.MarkViewed: %w", err)
		}
		return nil
	})
}

// ExpireOffers scans for offers whose validity window passed and notifies
// their sellers. The offer row itself is untouched: expiry is a projection
// concern, visible through the status rules as long as ExpiresAt is in the
// past. Returns the number of offers notified.
func (s *Lifecycle) ExpireOffers(ctx context.Context, limit int32) (expired int, err error) {
	defer func() { s.observe("expire_offers", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		offers, err := r.Offers.ListExpiredOffers(ctx, s.now(), limit)
		if err != nil {
			return fmt.Errorf("Offers.ListExpiredOffers: %w", err)
		}

		for i := range offers {
			offer := offers[i]

			req, err := s.load(ctx, r, offer.OrderRequestID)
			if err != nil {
				return err
			}

			if err := s.reproject(ctx, r, &req); err != nil {
				return err
			}

			if err := s.dispatch(ctx, r, offer.SellerID, domain.RoleSeller, domain.NotificationOfferExpired, req, &offer); err != nil {
				return err
			}
		}

		expired = len(offers)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.log.Info("expired offers processed", zap.Int("count", expired))
	}

	return expired, nil
}

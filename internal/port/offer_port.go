package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
)

type OfferRepository interface {
	// UpdateOffer persists the mutable lifecycle columns of an offer:
	// status, cached seller projection, order number, totals, payment and
	// shipping fields.
	UpdateOffer(ctx context.Context, offer domain.Offer) error

	// DeleteOffer removes an offer together with its line items.
	DeleteOffer(ctx context.Context, offerID uuid.UUID) error

	UpsertReward(ctx context.Context, reward domain.Reward) (domain.Reward, error)

	// ListExpiredOffers returns offers still in OFFER state whose expiry
	// timestamp passed, for the expiry scan job.
	ListExpiredOffers(ctx context.Context, now time.Time, limit int32) ([]domain.Offer, error)
}

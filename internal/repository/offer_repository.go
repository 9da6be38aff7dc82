package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"github.com/shopspring/decimal"
)

type offerRepository struct {
	db DB
}

func NewOffer(db DB) port.OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) UpdateOffer(ctx context.Context, offer domain.Offer) error {
	if offer.ID == uuid.Nil {
		return errors.New("offerID is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE offers SET
			status = $2, seller_status = $3, order_number = $4,
			total_price = $5::numeric, paid_sum = $6::numeric, paid_at = $7,
			expires_at = $8, update_requested_at = $9,
			transport_company_id = $10, pickup = $11, track_number = $12,
			departure_date = $13, receiving_date = $14,
			payment_postponed_at = $15, payment_postpone_accepted_at = $16,
			updated_at = now()
		WHERE id = $1`,
		offer.ID, string(offer.Status), string(offer.SellerStatus), offer.OrderNumber,
		offer.TotalPrice.String(), offer.PaidSum.String(), offer.PaidAt,
		offer.ExpiresAt, offer.UpdateRequestedAt,
		offer.TransportCompanyID, offer.Pickup, offer.TrackNumber,
		offer.DepartureDate, offer.ReceivingDate,
		offer.PaymentPostponedAt, offer.PaymentPostponeAcceptedAt)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("offer[%s]: %w", offer.ID, ErrNotFound)
	}

	return nil
}

func (r *offerRepository) DeleteOffer(ctx context.Context, offerID uuid.UUID) error {
	if offerID == uuid.Nil {
		return errors.New("offerID is empty")
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM request_products WHERE offer_id = $1`, offerID); err != nil {
		return fmt.Errorf("delete request_products: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM offers WHERE id = $1`, offerID)
	if err != nil {
		return fmt.Errorf("delete offers: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("offer[%s]: %w", offerID, ErrNotFound)
	}

	return nil
}

func (r *offerRepository) UpsertReward(ctx context.Context, reward domain.Reward) (domain.Reward, error) {
	var rw domain.Reward

	if reward.OfferID == uuid.Nil {
		return rw, errors.New("offerID is empty")
	}

	var amount string

	err := r.db.QueryRow(ctx, `
		INSERT INTO rewards (offer_id, amount, supplier_paid, seller_fee_paid_at)
		VALUES ($1, $2::numeric, $3, $4)
		ON CONFLICT (offer_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			supplier_paid = EXCLUDED.supplier_paid,
			seller_fee_paid_at = EXCLUDED.seller_fee_paid_at
		RETURNING id, offer_id, amount::text, supplier_paid, seller_fee_paid_at`,
		reward.OfferID, reward.Amount.String(), reward.SupplierPaid, reward.SellerFeePaidAt,
	).Scan(&rw.ID, &rw.OfferID, &amount, &rw.SupplierPaid, &rw.SellerFeePaidAt)
	if err != nil {
		return rw, fmt.Errorf("db.QueryRow: %w", err)
	}

	if rw.Amount, err = decimal.NewFromString(amount); err != nil {
		return rw, fmt.Errorf("amount[%s]: %w", amount, err)
	}

	return rw, nil
}

func (r *offerRepository) ListExpiredOffers(ctx context.Context, now time.Time, limit int32) ([]domain.Offer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.order_request_id, o.seller_id, o.status, o.seller_status,
		       o.order_number, o.total_price::text, o.paid_sum::text, o.paid_at,
		       o.expires_at, o.update_requested_at, o.transport_company_id,
		       o.pickup, o.track_number, o.departure_date, o.receiving_date,
		       o.payment_postponed_at, o.payment_postpone_accepted_at,
		       o.created_at, o.updated_at,
		       org.id, org.name, org.inn, org.individual, org.vat_payer,
		       org.commission_percent::text, org.split_commission,
		       rw.id, rw.amount::text, rw.supplier_paid, rw.seller_fee_paid_at
		FROM offers o
		JOIN organizations org ON org.id = o.organization_id
		LEFT JOIN rewards rw ON rw.offer_id = o.id
		WHERE o.status = $1 AND o.expires_at IS NOT NULL AND o.expires_at < $2
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.offer_id = o.id AND n.type = $3
		  )
		ORDER BY o.expires_at
		LIMIT $4`, string(domain.OfferStatusOffer), now, string(domain.NotificationOfferExpired), limit)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOffer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return offers, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
)

// ConfirmSupplierPayment records that the supplier's share of the payout
// has been transferred.
func (s *Lifecycle) ConfirmSupplierPayment(ctx context.Context, orderRequestID, offerID uuid.UUID) (domain.OrderRequest, error) {
	return s.confirmReward(ctx, orderRequestID, offerID, func(reward *domain.Reward) {
		reward.SupplierPaid = true
	})
}

// ConfirmSellerFeePaid records the seller-fee settlement timestamp.
func (s *Lifecycle) ConfirmSellerFeePaid(ctx context.Context, orderRequestID, offerID uuid.UUID) (domain.OrderRequest, error) {
	now := s.now()
	return s.confirmReward(ctx, orderRequestID, offerID, func(reward *domain.Reward) {
		reward.SellerFeePaidAt = &now
	})
}

// confirmReward applies one payout confirmation. Once both are in place the
// offer is marked complete and the seller's sales counter advances.
func (s *Lifecycle) confirmReward(ctx context.Context, orderRequestID, offerID uuid.UUID, apply func(*domain.Reward)) (req domain.OrderRequest, err error) {
	defer func() { s.observe("confirm_reward", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		req, err = s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		var offer *domain.Offer
		for i := range req.Offers {
			if req.Offers[i].ID == offerID {
				offer = &req.Offers[i]
			}
		}
		if offer == nil {
			return notFound(fmt.Sprintf("offer %s not found", offerID))
		}

		if offer.Status != domain.OfferStatusPaid && offer.Status != domain.OfferStatusCompleted {
			return forbidden("offer is not paid")
		}
		if offer.Reward == nil {
			return notFound("offer has no reward")
		}

		alreadyGiven := offer.Reward.Given()

		apply(offer.Reward)

		if _, err := r.Offers.UpsertReward(ctx, *offer.Reward); err != nil {
			return fmt.Errorf("Offers.UpsertReward: %w", err)
		}

		if offer.Reward.Given() && !alreadyGiven {
			offer.Status = domain.OfferStatusCompleted

			if err := r.Users.IncrementSalesNumber(ctx, offer.SellerID); err != nil {
				return fmt.Errorf("Users.IncrementSalesNumber: %w", err)
			}

			if err := s.dispatch(ctx, r, offer.SellerID, domain.RoleSeller, domain.NotificationRewardPaid, req, offer); err != nil {
				return err
			}
		}

		return s.reproject(ctx, r, &req)
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	return req, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CancelPayment reverts an invoice payment on the whole request. Card
// payments go through the gateway's refund flow and cannot be reversed here.
func (s *Lifecycle) CancelPayment(ctx context.Context, orderRequestID uuid.UUID) (req domain.OrderRequest, err error) {
	defer func() { s.observe("cancel_payment", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		loaded, err := s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		offerIDs := lo.Map(loaded.Offers, func(o domain.Offer, _ int) uuid.UUID { return o.ID })

		req, err = s.cancelOfferPayments(ctx, r, loaded, offerIDs)
		return err
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	s.log.Info("order payment cancelled", zap.String("order_request_id", orderRequestID.String()))

	return req, nil
}

// CancelOfferPayment reverts the invoice payment of a single offer; the
// request steps back from PAID/COMPLETED accordingly.
func (s *Lifecycle) CancelOfferPayment(ctx context.Context, orderRequestID, offerID uuid.UUID) (req domain.OrderRequest, err error) {
	defer func() { s.observe("cancel_offer_payment", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		loaded, err := s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		if _, ok := loaded.Offer(offerID); !ok {
			return notFound(fmt.Sprintf("offer %s not found", offerID))
		}

		req, err = s.cancelOfferPayments(ctx, r, loaded, []uuid.UUID{offerID})
		return err
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	return req, nil
}

func (s *Lifecycle) cancelOfferPayments(ctx context.Context, r port.Repositories, req domain.OrderRequest, offerIDs []uuid.UUID) (domain.OrderRequest, error) {
	if req.PaymentType != domain.PaymentTypeInvoice {
		return req, forbidden("card payments cannot be cancelled via the invoice path")
	}

	switch req.Status {
	case domain.OrderRequestStatusPaid, domain.OrderRequestStatusCompleted:
	default:
		return req, forbidden("order request is not paid")
	}

	wasCompleted := req.Status == domain.OrderRequestStatusCompleted

	cancelled := map[uuid.UUID]struct{}{}
	for _, id := range offerIDs {
		cancelled[id] = struct{}{}
	}

	var unpaidSellers []uuid.UUID

	for i := range req.Offers {
		offer := &req.Offers[i]
		if _, ok := cancelled[offer.ID]; !ok {
			continue
		}
		if offer.Status != domain.OfferStatusPaid && offer.Status != domain.OfferStatusCompleted {
			continue
		}

		// Offers that agreed a postponement fall back to it, the rest
		// return to plain OFFER state.
		if offer.PaymentPostponeAcceptedAt != nil {
			offer.Status = domain.OfferStatusPaymentPostponed
		} else {
			offer.Status = domain.OfferStatusOffer
		}

		offer.PaidSum = decimal.Zero
		offer.PaidAt = nil

		unpaidSellers = append(unpaidSellers, offer.SellerID)
	}

	if len(unpaidSellers) == 0 {
		return req, forbidden("no paid offers to cancel")
	}

	req.UnpaidSellerIDs = unpaidSellers
	req.PaidSum = lo.Reduce(req.Offers, func(sum decimal.Decimal, o domain.Offer, _ int) decimal.Decimal {
		return sum.Add(o.PaidSum)
	}, decimal.Zero)

	if req.PaymentPostponeAcceptedAt != nil {
		req.Status = domain.OrderRequestStatusPaymentPostponed
	} else {
		req.Status = domain.OrderRequestStatusApproved
	}
	req.PaymentDate = nil

	if wasCompleted {
		// Completion preconditions no longer hold once payments are
		// reverted; drop the completion mark.
		req.CompletionDate = nil
	}

	if err := s.reproject(ctx, r, &req); err != nil {
		return req, err
	}

	if err := s.dispatch(ctx, r, req.CustomerID, domain.RoleCustomer, domain.NotificationPaymentCancelled, req, nil); err != nil {
		return req, err
	}
	for i := range req.Offers {
		offer := &req.Offers[i]
		if _, ok := cancelled[offer.ID]; !ok {
			continue
		}
		if err := s.dispatch(ctx, r, offer.SellerID, domain.RoleSeller, domain.NotificationPaymentCancelled, req, offer); err != nil {
			return req, err
		}
	}

	return req, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"go.uber.org/zap"
)

// Complete marks the request COMPLETED once every offer is paid and
// received. Completing an already-completed request is a no-op.
func (s *Lifecycle) Complete(ctx context.Context, orderRequestID uuid.UUID) (req domain.OrderRequest, err error) {
	defer func() { s.observe("complete", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		req, err = s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		if req.Status == domain.OrderRequestStatusCompleted {
			return nil
		}

		if !req.ReadyToComplete() {
			return badRequest("not every offer is paid and received")
		}

		now := s.now()
		req.Status = domain.OrderRequestStatusCompleted
		req.CompletionDate = &now

		if err := s.reproject(ctx, r, &req); err != nil {
			return err
		}

		if err := s.dispatch(ctx, r, req.CustomerID, domain.RoleCustomer, domain.NotificationOrderCompleted, req, nil); err != nil {
			return err
		}
		return s.notifyManagers(ctx, r, domain.NotificationOrderCompleted, req, nil)
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	return req, nil
}

// RevertComplete steps a completed request back when the completion
// preconditions no longer hold. No-op when the request is not completed or
// when the preconditions still hold.
func (s *Lifecycle) RevertComplete(ctx context.Context, orderRequestID uuid.UUID) (req domain.OrderRequest, err error) {
	defer func() { s.observe("revert_complete", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		req, err = s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		if req.Status != domain.OrderRequestStatusCompleted || req.ReadyToComplete() {
			return nil
		}

		allPaid := true
		for _, offer := range req.Offers {
			if offer.Status != domain.OfferStatusPaid && offer.Status != domain.OfferStatusCompleted {
				allPaid = false
			}
		}

		switch {
		case allPaid:
			req.Status = domain.OrderRequestStatusPaid
		case req.PaymentPostponeAcceptedAt != nil:
			req.Status = domain.OrderRequestStatusPaymentPostponed
		default:
			req.Status = domain.OrderRequestStatusApproved
		}
		req.CompletionDate = nil

		if err := s.reproject(ctx, r, &req); err != nil {
			return err
		}

		return s.notifyManagers(ctx, r, domain.NotificationOrderCompleteReverted, req, nil)
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	return req, nil
}

// Decline rejects the request and its offers, releasing any reservations
// made at approval.
func (s *Lifecycle) Decline(ctx context.Context, orderRequestID uuid.UUID) (req domain.OrderRequest, err error) {
	defer func() { s.observe("decline", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		req, err = s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		switch req.Status {
		case domain.OrderRequestStatusPaid, domain.OrderRequestStatusCompleted:
			return forbidden("paid order request cannot be declined")
		case domain.OrderRequestStatusDeclined:
			return nil
		}

		wasApproved := req.Status == domain.OrderRequestStatusApproved

		req.Status = domain.OrderRequestStatusDeclined

		for i := range req.Offers {
			offer := &req.Offers[i]
			offer.Status = domain.OfferStatusDeclined

			if !wasApproved {
				continue
			}
			for _, item := range offer.SelectedItems() {
				if item.StockBalanceID == nil {
					continue
				}
				if err := r.Stock.ReleaseReservation(ctx, *item.StockBalanceID, item.Count); err != nil {
					return fmt.Errorf("Stock.ReleaseReservation: %w", err)
				}
			}
		}

		if err := s.reproject(ctx, r, &req); err != nil {
			return err
		}

		if err := s.dispatch(ctx, r, req.CustomerID, domain.RoleCustomer, domain.NotificationOrderDeclined, req, nil); err != nil {
			return err
		}
		for i := range req.Offers {
			if err := s.dispatch(ctx, r, req.Offers[i].SellerID, domain.RoleSeller, domain.NotificationOrderDeclined, req, &req.Offers[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	s.log.Info("order request declined", zap.String("order_request_id", orderRequestID.String()))

	return req, nil
}

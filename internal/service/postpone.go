package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// AcceptPaymentPostpone agrees the deferred payment date on the whole
// request. Requires every selected offer to have individually agreed its
// own postponement date; never-selected offers are discarded here, same as
// at payment time.
func (s *Lifecycle) AcceptPaymentPostpone(ctx context.Context, orderRequestID uuid.UUID) (req domain.OrderRequest, err error) {
	defer func() { s.observe("accept_postpone", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		req, err = s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		switch req.Status {
		case domain.OrderRequestStatusRequested:
			return forbidden("invoices are not generated yet")
		case domain.OrderRequestStatusPaymentPostponed, domain.OrderRequestStatusPaid, domain.OrderRequestStatusCompleted:
			return forbidden("payment is already settled or postponed")
		case domain.OrderRequestStatusDeclined:
			return forbidden("order request is declined")
		}

		if req.PaymentPostponedAt == nil {
			return badRequest("no postponement date requested")
		}

		selected := req.SelectedOffers()
		if len(selected) == 0 {
			return badRequest("order request has no selected offers")
		}

		agreed := lo.EveryBy(selected, func(o domain.Offer) bool {
			return o.PaymentPostponedAt != nil
		})
		if !agreed {
			return badRequest("not every seller agreed a postponement date")
		}

		for _, offer := range req.UnselectedOffers() {
			if err := r.Offers.DeleteOffer(ctx, offer.ID); err != nil {
				return fmt.Errorf("Offers.DeleteOffer: %w", err)
			}
		}
		req.Offers = req.SelectedOffers()

		now := s.now()
		req.Status = domain.OrderRequestStatusPaymentPostponed
		req.PaymentPostponeAcceptedAt = &now

		for i := range req.Offers {
			offer := &req.Offers[i]
			offer.Status = domain.OfferStatusPaymentPostponed
			offer.PaymentPostponeAcceptedAt = &now

			// The designated organization requires a refreshed
			// specification document on every postponement.
			if offer.Organization.INN == s.cfg.SpecialOrgINN && s.cfg.SpecialOrgINN != "" {
				if err := s.docs.GenerateSpecification(ctx, req, *offer); err != nil {
					return fmt.Errorf("docs.GenerateSpecification: %w", err)
				}
			}
		}

		if err := s.reproject(ctx, r, &req); err != nil {
			return err
		}

		if err := s.dispatch(ctx, r, req.CustomerID, domain.RoleCustomer, domain.NotificationPaymentPostponeAccepted, req, nil); err != nil {
			return err
		}
		for i := range req.Offers {
			if err := s.dispatch(ctx, r, req.Offers[i].SellerID, domain.RoleSeller, domain.NotificationPaymentPostponeAccepted, req, &req.Offers[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	s.log.Info("payment postpone accepted", zap.String("order_request_id", orderRequestID.String()))

	return req, nil
}

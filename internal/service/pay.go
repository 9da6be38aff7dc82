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

// Pay settles the whole request: every selected offer is paid in full,
// never-selected offers are discarded, stock reservations are consumed and
// product price floors refreshed. Auto-completes when every surviving offer
// already has a receiving date.
func (s *Lifecycle) Pay(ctx context.Context, orderRequestID uuid.UUID) (req domain.OrderRequest, err error) {
	defer func() { s.observe("pay", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		loaded, err := s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		amounts := map[uuid.UUID]decimal.Decimal{}
		for _, offer := range loaded.SelectedOffers() {
			amounts[offer.ID] = offer.SelectedTotal()
		}

		req, err = s.payOffers(ctx, r, loaded, amounts)
		return err
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	s.log.Info("order request paid", zap.String("order_request_id", orderRequestID.String()))

	return req, nil
}

// PayOffers settles individual offers of a request with the given amounts.
// An offer flips to PAID once its paid sum covers the selected total; the
// request flips to PAID when every surviving offer is paid.
func (s *Lifecycle) PayOffers(ctx context.Context, orderRequestID uuid.UUID, amounts map[uuid.UUID]decimal.Decimal) (req domain.OrderRequest, err error) {
	defer func() { s.observe("pay_offers", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		loaded, err := s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		req, err = s.payOffers(ctx, r, loaded, amounts)
		return err
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	return req, nil
}

func (s *Lifecycle) payOffers(ctx context.Context, r port.Repositories, req domain.OrderRequest, amounts map[uuid.UUID]decimal.Decimal) (domain.OrderRequest, error) {
	switch req.Status {
	case domain.OrderRequestStatusRequested:
		return req, forbidden("order request is not approved yet")
	case domain.OrderRequestStatusCompleted:
		return req, forbidden("order request is already completed")
	case domain.OrderRequestStatusDeclined:
		return req, forbidden("order request is declined")
	}

	if len(req.SelectedOffers()) == 0 {
		return req, forbidden("order request has no payable offers")
	}

	for offerID := range amounts {
		if _, ok := req.Offer(offerID); !ok {
			return req, notFound(fmt.Sprintf("offer %s not found", offerID))
		}
	}

	now := s.now()

	// What the customer did not select is discarded at payment time, not
	// earlier: the offers stay visible through the whole negotiation.
	for _, offer := range req.UnselectedOffers() {
		if err := r.Offers.DeleteOffer(ctx, offer.ID); err != nil {
			return req, fmt.Errorf("Offers.DeleteOffer: %w", err)
		}
	}
	req.Offers = req.SelectedOffers()

	productsToRefresh := map[uuid.UUID]struct{}{}

	for i := range req.Offers {
		offer := &req.Offers[i]

		amount, ok := amounts[offer.ID]
		if !ok {
			continue
		}

		// An already-paid offer short-circuits, PaidAt is set exactly once.
		if offer.Status == domain.OfferStatusPaid {
			continue
		}

		// Recorded sums never exceed the selected total, so settling in
		// full after a partial payment only tops up the remainder.
		outstanding := offer.SelectedTotal().Sub(offer.PaidSum)
		if amount.GreaterThan(outstanding) {
			amount = outstanding
		}

		offer.PaidSum = offer.PaidSum.Add(amount)

		if offer.PaidSum.LessThan(offer.SelectedTotal()) {
			continue
		}

		offer.Status = domain.OfferStatusPaid
		offer.PaidAt = &now

		// Payment consumes the reservation made at approval.
		for _, item := range offer.SelectedItems() {
			if item.StockBalanceID == nil {
				continue
			}
			if err := r.Stock.Deduct(ctx, *item.StockBalanceID, item.Count); err != nil {
				return req, fmt.Errorf("Stock.Deduct: %w", err)
			}
			if item.ProductID != nil {
				productsToRefresh[*item.ProductID] = struct{}{}
			}
		}
	}

	for productID := range productsToRefresh {
		if err := r.Stock.RefreshProductMinPrice(ctx, productID); err != nil {
			return req, fmt.Errorf("Stock.RefreshProductMinPrice: %w", err)
		}
	}

	req.PaidSum = lo.Reduce(req.Offers, func(sum decimal.Decimal, o domain.Offer, _ int) decimal.Decimal {
		return sum.Add(o.PaidSum)
	}, decimal.Zero)

	allPaid := lo.EveryBy(req.Offers, func(o domain.Offer) bool {
		return o.Status == domain.OfferStatusPaid
	})

	notifyType := domain.NotificationOrderPartiallyPaid

	if allPaid {
		notifyType = domain.NotificationOrderPaid

		if req.Status != domain.OrderRequestStatusPaid {
			req.Status = domain.OrderRequestStatusPaid
			req.PaymentDate = &now
		}
		req.UnpaidSellerIDs = nil

		if req.ReadyToComplete() {
			req.Status = domain.OrderRequestStatusCompleted
			req.CompletionDate = &now
		}

		if err := r.Notifications.MarkViewedByOrderRequest(ctx, req.ID); err != nil {
			return req, fmt.Errorf("Notifications.MarkViewedByOrderRequest: %w", err)
		}
		req.HasUnreadOfferUpdate = false
	}

	if err := s.reproject(ctx, r, &req); err != nil {
		return req, err
	}

	if err := s.dispatch(ctx, r, req.CustomerID, domain.RoleCustomer, notifyType, req, nil); err != nil {
		return req, err
	}
	for i := range req.Offers {
		if err := s.dispatch(ctx, r, req.Offers[i].SellerID, domain.RoleSeller, notifyType, req, &req.Offers[i]); err != nil {
			return req, err
		}
	}

	return req, nil
}

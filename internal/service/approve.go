package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ApproveResult carries the refreshed aggregate and, for card payments, the
// acquiring link the customer is redirected to.
type ApproveResult struct {
	Request     domain.OrderRequest
	PaymentLink string
}

// Approve takes the buyer's selection into an order: assigns order numbers
// and totals to the qualifying offers, creates their rewards, reserves
// stock, and either flips the request to APPROVED with regenerated invoices
// (invoice payment) or returns an acquiring link (card payment) leaving the
// status flip to the payment callback.
//
// Approve is not idempotent: re-approving an APPROVED-but-unpaid request
// regenerates order numbers, rewards and invoices.
func (s *Lifecycle) Approve(ctx context.Context, orderRequestID, payerOrgID uuid.UUID, paymentType domain.PaymentType) (result ApproveResult, err error) {
	defer func() { s.observe("approve", err) }()

	err = s.store.WithinTx(ctx, func(r port.Repositories) error {
		req, err := s.load(ctx, r, orderRequestID)
		if err != nil {
			return err
		}

		switch req.Status {
		case domain.OrderRequestStatusPaid, domain.OrderRequestStatusCompleted:
			return forbidden("order request is already paid")
		case domain.OrderRequestStatusDeclined:
			return forbidden("order request is declined")
		}

		// Only offers the buyer selected from AND that settled on a
		// shipping method can be taken into the order.
		qualifying := make([]*domain.Offer, 0, len(req.Offers))
		for i := range req.Offers {
			offer := &req.Offers[i]
			if len(offer.SelectedItems()) > 0 && offer.HasConfirmedShipping() {
				qualifying = append(qualifying, offer)
			}
		}

		if len(qualifying) == 0 {
			return badRequest("no offers with selected products and a confirmed shipping method")
		}

		total := decimal.Zero
		for i, offer := range qualifying {
			offer.TotalPrice = offer.SelectedTotal()
			total = total.Add(offer.TotalPrice)

			offer.OrderNumber = req.Number
			if len(qualifying) > 1 {
				offer.OrderNumber = req.Number + "-" + strconv.Itoa(i+1)
			}

			reward := domain.Reward{OfferID: offer.ID}
			// Split-commission organizations settle the platform fee via
			// separate acquiring/invoice flows, their reward stays zero.
			if !offer.Organization.SplitCommission {
				reward.Amount = domain.CalculateSellerCash(
					offer.TotalPrice,
					offer.Organization.CommissionPercent,
					offer.Organization.Individual,
				)
			}

			created, err := r.Offers.UpsertReward(ctx, reward)
			if err != nil {
				return fmt.Errorf("Offers.UpsertReward: %w", err)
			}
			offer.Reward = &created

			for _, item := range offer.SelectedItems() {
				if item.StockBalanceID == nil {
					continue
				}
				if err := r.Stock.Reserve(ctx, *item.StockBalanceID, item.Count); err != nil {
					return fmt.Errorf("Stock.Reserve: %w", err)
				}
			}
		}

		req.TotalPrice = total
		req.PaymentType = paymentType

		if paymentType == domain.PaymentTypeCard {
			// The request stays in its current status until the gateway
			// confirms; the customer just gets the link.
			link, err := s.payments.CreatePaymentLink(ctx, req)
			if err != nil {
				return fmt.Errorf("payments.CreatePaymentLink: %w", err)
			}

			if err := s.reproject(ctx, r, &req); err != nil {
				return err
			}

			result = ApproveResult{Request: req, PaymentLink: link}
			return nil
		}

		req.Status = domain.OrderRequestStatusApproved

		if err := s.docs.GenerateInvoices(ctx, req, payerOrgID); err != nil {
			return fmt.Errorf("docs.GenerateInvoices: %w", err)
		}

		if err := s.reproject(ctx, r, &req); err != nil {
			return err
		}

		if err := s.dispatch(ctx, r, req.CustomerID, domain.RoleCustomer, domain.NotificationOrderApproved, req, nil); err != nil {
			return err
		}
		if err := s.notifyManagers(ctx, r, domain.NotificationInvoicesGenerated, req, nil); err != nil {
			return err
		}

		result = ApproveResult{Request: req}
		return nil
	})
	if err != nil {
		return ApproveResult{}, err
	}

	s.log.Info("order request approved",
		zap.String("order_request_id", orderRequestID.String()),
		zap.String("payment_type", string(paymentType)),
	)

	return result, nil
}

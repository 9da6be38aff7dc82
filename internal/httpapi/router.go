// Package httpapi exposes the order lifecycle over HTTP/JSON. Authentication
// and authorization are handled by the gateway in front of this service.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/logger"
	"github.com/partline/marketplace/internal/metrics"
	"github.com/partline/marketplace/internal/service"
	"github.com/shopspring/decimal"
)

// LifecycleService is the slice of the service layer the handlers need.
type LifecycleService interface {
	GetOrderRequest(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)
	SearchOrderRequests(ctx context.Context, filter domain.OrderRequestFilter, role domain.Role, sellerID uuid.UUID) ([]domain.OrderRequest, error)

	Approve(ctx context.Context, orderRequestID, payerOrgID uuid.UUID, paymentType domain.PaymentType) (service.ApproveResult, error)
	Pay(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)
	PayOffers(ctx context.Context, orderRequestID uuid.UUID, amounts map[uuid.UUID]decimal.Decimal) (domain.OrderRequest, error)
	CancelPayment(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)
	CancelOfferPayment(ctx context.Context, orderRequestID, offerID uuid.UUID) (domain.OrderRequest, error)
	AcceptPaymentPostpone(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)
	Complete(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)
	RevertComplete(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)
	Decline(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)
	ConfirmSupplierPayment(ctx context.Context, orderRequestID, offerID uuid.UUID) (domain.OrderRequest, error)
	ConfirmSellerFeePaid(ctx context.Context, orderRequestID, offerID uuid.UUID) (domain.OrderRequest, error)

	ListNotifications(ctx context.Context, userID uuid.UUID, role domain.Role, onlyUnread bool) ([]domain.Notification, error)
	MarkNotificationsViewed(ctx context.Context, ids []uuid.UUID) error
}

func NewRouter(lifecycle LifecycleService) chi.Router {
	h := &handlers{lifecycle: lifecycle}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger)

	r.Route("/api/order-requests", func(r chi.Router) {
		r.Get("/", h.searchOrderRequests)

		r.Route("/{orderRequestID}", func(r chi.Router) {
			r.Get("/", h.getOrderRequest)

			r.Post("/approve", h.approve)
			r.Post("/pay", h.pay)
			r.Post("/pay-offers", h.payOffers)
			r.Post("/payment/cancel", h.cancelPayment)
			r.Post("/postpone/accept", h.acceptPaymentPostpone)
			r.Post("/complete", h.complete)
			r.Post("/complete/revert", h.revertComplete)
			r.Post("/decline", h.decline)

			r.Route("/offers/{offerID}", func(r chi.Router) {
				r.Post("/payment/cancel", h.cancelOfferPayment)
				r.Post("/reward/supplier-paid", h.confirmSupplierPayment)
				r.Post("/reward/fee-paid", h.confirmSellerFeePaid)
			})
		})
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", h.listNotifications)
		r.Post("/viewed", h.markNotificationsViewed)
	})

	r.Handle("/metrics", metrics.Handler())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

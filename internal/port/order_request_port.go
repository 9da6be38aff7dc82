package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
)

type OrderRequestRepository interface {
	// GetOrderRequest loads the full aggregate: offers with their items,
	// organizations and rewards, unattached request items, and the
	// unread-offer-update flag.
	GetOrderRequest(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)

	// GetOrderRequestForUpdate is GetOrderRequest with a row lock on the
	// request, serializing concurrent lifecycle transitions.
	GetOrderRequestForUpdate(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error)

	SearchOrderRequests(ctx context.Context, filter domain.OrderRequestFilter) ([]domain.OrderRequest, error)

	// UpdateOrderRequest persists the mutable lifecycle columns: status,
	// cached projections, totals, payment and postponement fields,
	// completion date and the unpaid-sellers list.
	UpdateOrderRequest(ctx context.Context, req domain.OrderRequest) error
}

package port

import (
	"context"

	"github.com/google/uuid"
)

type StockRepository interface {
	// Reserve moves quantity from the free amount into the reservation.
	Reserve(ctx context.Context, stockBalanceID uuid.UUID, quantity int32) error

	// ReleaseReservation returns reserved quantity back to the free amount,
	// used when an approved order is declined or reverted.
	ReleaseReservation(ctx context.Context, stockBalanceID uuid.UUID, quantity int32) error

	// Deduct drops reserved quantity from the balance for good once the
	// order is paid.
	Deduct(ctx context.Context, stockBalanceID uuid.UUID, quantity int32) error

	// RefreshProductMinPrice recomputes the product's price floor from the
	// remaining stock balances.
	RefreshProductMinPrice(ctx context.Context, productID uuid.UUID) error
}

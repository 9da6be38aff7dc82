package port

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	// ListManagerIDs returns the employees who receive manager-side
	// lifecycle notifications.
	ListManagerIDs(ctx context.Context) ([]uuid.UUID, error)

	// IncrementSalesNumber advances the seller's completed-sales counter
	// once both reward confirmations are in place.
	IncrementSalesNumber(ctx context.Context, sellerID uuid.UUID) error
}

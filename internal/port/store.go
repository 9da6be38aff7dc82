package port

import "context"

// Repositories bundles the transaction-scoped repositories handed to a
// lifecycle operation.
type Repositories struct {
	OrderRequests OrderRequestRepository
	Offers        OfferRepository
	Notifications NotificationRepository
	Stock         StockRepository
	Users         UserRepository
}

// Store runs fn inside a single database transaction; an error from fn
// rolls back everything the operation wrote.
type Store interface {
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}

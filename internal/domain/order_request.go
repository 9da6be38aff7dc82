package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// OrderRequest is one buyer's purchase request, potentially served by
// several sellers through child Offers.
type OrderRequest struct {
	ID         uuid.UUID
	Number     string // human-readable order number, offers get "-N" suffixes
	CustomerID uuid.UUID
	AddressID  uuid.UUID

	Status OrderRequestStatus

	// Cached projections, recomputed and written back after every lifecycle
	// mutation in the same transaction. Never read before that refresh.
	CustomerStatus DisplayStatus
	ManagerStatus  DisplayStatus

	TotalPrice decimal.Decimal
	PaidSum    decimal.Decimal

	PaymentType PaymentType
	PaymentDate *time.Time

	PaymentPostponedAt        *time.Time // postponement date requested by the customer
	PaymentPostponeAcceptedAt *time.Time

	CompletionDate *time.Time

	// Sellers whose paid offers were reverted by a payment cancellation.
	UnpaidSellerIDs []uuid.UUID

	CustomerLastNotifiedAt *time.Time
	ManagerLastNotifiedAt  *time.Time

	// Set when an unread offerUpdated notification exists for the request.
	HasUnreadOfferUpdate bool

	Offers []Offer
	// Line items not yet picked up into any offer; items with no product
	// reference describe the part by photo or free text.
	Items []RequestProduct

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r OrderRequest) Offer(id uuid.UUID) (Offer, bool) {
	return lo.Find(r.Offers, func(o Offer) bool { return o.ID == id })
}

// SellerOffer returns the seller's own offer within the request, if any.
// A request has at most one offer per seller.
func (r OrderRequest) SellerOffer(sellerID uuid.UUID) (Offer, bool) {
	return lo.Find(r.Offers, func(o Offer) bool { return o.SellerID == sellerID })
}

// SelectedOffers are offers the buyer took at least one line item from.
func (r OrderRequest) SelectedOffers() []Offer {
	return lo.Filter(r.Offers, func(o Offer, _ int) bool {
		return len(o.SelectedItems()) > 0
	})
}

// UnselectedOffers are discarded at payment or postponement time.
func (r OrderRequest) UnselectedOffers() []Offer {
	return lo.Filter(r.Offers, func(o Offer, _ int) bool {
		return len(o.SelectedItems()) == 0
	})
}

func (r OrderRequest) SelectedTotal() decimal.Decimal {
	return lo.Reduce(r.SelectedOffers(), func(sum decimal.Decimal, o Offer, _ int) decimal.Decimal {
		return sum.Add(o.SelectedTotal())
	}, decimal.Zero)
}

// HasDescribedItems reports whether any requested line item is given by a
// photo or free-form description instead of a catalog product.
func (r OrderRequest) HasDescribedItems() bool {
	return lo.SomeBy(r.Items, RequestProduct.Described)
}

// ReadyToComplete holds when every offer is paid and has a receiving date.
func (r OrderRequest) ReadyToComplete() bool {
	if len(r.Offers) == 0 {
		return false
	}

	return lo.EveryBy(r.Offers, func(o Offer) bool {
		return o.Status == OfferStatusPaid && o.ReceivingDate != nil
	})
}

// OrderRequestFilter has AND semantics across fields, OR semantics within each field slice
type OrderRequestFilter struct {
	IDs         []uuid.UUID
	CustomerIDs []uuid.UUID
	Statuses    []OrderRequestStatus
	CreatedAt   *TimeRange
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Offer is one seller's response to an OrderRequest. An offer belongs to
// exactly one request and one seller.
type Offer struct {
	ID             uuid.UUID
	OrderRequestID uuid.UUID
	SellerID       uuid.UUID
	Organization   Organization

	Status OfferStatus

	// Cached seller-side projection, see projector.go.
	SellerStatus DisplayStatus

	// Assigned at approval, request number plus "-N" when several offers
	// were taken into the order.
	OrderNumber string

	TotalPrice decimal.Decimal
	PaidSum    decimal.Decimal
	PaidAt     *time.Time

	ExpiresAt         *time.Time
	UpdateRequestedAt *time.Time // customer asked the seller to refresh the offer

	TransportCompanyID *string
	Pickup             bool
	TrackNumber        *string
	DepartureDate      *time.Time
	ReceivingDate      *time.Time

	PaymentPostponedAt        *time.Time // postponement date this seller agreed to
	PaymentPostponeAcceptedAt *time.Time

	Reward *Reward

	Items []RequestProduct

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o Offer) SelectedItems() []RequestProduct {
	return lo.Filter(o.Items, func(p RequestProduct, _ int) bool { return p.IsSelected })
}

// SelectedTotal sums selected line items with an accepted quantity.
func (o Offer) SelectedTotal() decimal.Decimal {
	return lo.Reduce(o.SelectedItems(), func(sum decimal.Decimal, p RequestProduct, _ int) decimal.Decimal {
		return sum.Add(p.LineTotal())
	}, decimal.Zero)
}

// HasConfirmedShipping requires a transport company or an agreed pickup
// before the offer can be taken into an approved order.
func (o Offer) HasConfirmedShipping() bool {
	return o.Pickup || o.TransportCompanyID != nil
}

func (o Offer) Expired(now time.Time) bool {
	return o.Status == OfferStatusOffer && o.ExpiresAt != nil && o.ExpiresAt.Before(now)
}

func (o Offer) UpdateRequested() bool {
	return o.UpdateRequestedAt != nil
}

// RewardGiven holds when both payout confirmations are in place.
func (o Offer) RewardGiven() bool {
	return o.Reward != nil && o.Reward.Given()
}

// RequestProduct is a line item of an offer (or of the bare request while no
// seller has picked it up): the requested product and quantity plus the
// seller's proposed quantity, price and delivery terms.
type RequestProduct struct {
	ID             uuid.UUID
	OrderRequestID uuid.UUID
	OfferID        *uuid.UUID

	// Nil ProductID means the buyer described the part by photo or text.
	ProductID   *uuid.UUID
	Description *string

	Quantity         int32 // requested by the buyer
	DeliveryQuantity int32 // offered on top of warehouse stock
	Count            int32 // accepted quantity, Count <= Quantity+DeliveryQuantity

	UnitPrice    decimal.Decimal
	DeliveryTerm *int32 // days

	// Buyer's choice to include the item in the paid order. Only selected
	// items count toward totals.
	IsSelected bool

	// Link to a priced stock balance to reserve on approval.
	StockBalanceID *uuid.UUID
}

func (p RequestProduct) Described() bool {
	return p.ProductID == nil
}

func (p RequestProduct) LineTotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt32(p.Count))
}

// Organization is the seller's legal entity carrying commission terms.
type Organization struct {
	ID   uuid.UUID
	Name string
	INN  string // tax id

	// Individual entrepreneurs get the simplified payout formula.
	Individual bool
	VATPayer   bool

	CommissionPercent decimal.Decimal

	// Split acquiring/invoice commission model: the platform fee is settled
	// outside the reward flow, so the computed reward is zero.
	SplitCommission bool
}

// Reward is the payout owed to a seller for a paid offer, one-to-one with
// the offer. Both confirmations must be in place before the offer is marked
// complete and the seller's sales counter advances.
type Reward struct {
	ID      uuid.UUID
	OfferID uuid.UUID
	Amount  decimal.Decimal

	SupplierPaid    bool
	SellerFeePaidAt *time.Time
}

func (r Reward) Given() bool {
	return r.SupplierPaid && r.SellerFeePaidAt != nil
}

// StockBalance is a priced warehouse position. Approval reserves quantity,
// payment releases the reservation and deducts the amount.
type StockBalance struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Price     decimal.Decimal
	Amount    int32
	Reserved  int32
}

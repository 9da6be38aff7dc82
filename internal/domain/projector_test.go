package domain_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectorNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func requestWith(status domain.OrderRequestStatus, offers ...domain.Offer) domain.OrderRequest {
	return domain.OrderRequest{
		ID:     uuid.MustParse(gofakeit.UUID()),
		Number: gofakeit.DigitN(6),
		Status: status,
		Offers: offers,
	}
}

func offerWith(sellerID uuid.UUID, status domain.OfferStatus, selected bool) domain.Offer {
	offer := domain.Offer{
		ID:       uuid.MustParse(gofakeit.UUID()),
		SellerID: sellerID,
		Status:   status,
	}
	if selected {
		offer.Items = []domain.RequestProduct{{
			ID:         uuid.MustParse(gofakeit.UUID()),
			Count:      1,
			UnitPrice:  decimal.NewFromInt(100),
			IsSelected: true,
		}}
	}
	return offer
}

func TestProjectStatus_Customer(t *testing.T) {
	sellerID := uuid.MustParse(gofakeit.UUID())

	tests := []struct {
		name    string
		reqFunc func() domain.OrderRequest
		want    domain.DisplayStatus
	}{
		{
			name: "postponed request wins over everything",
			reqFunc: func() domain.OrderRequest {
				req := requestWith(domain.OrderRequestStatusPaymentPostponed,
					offerWith(sellerID, domain.OfferStatusPaymentPostponed, true))
				req.HasUnreadOfferUpdate = true
				return req
			},
			want: domain.DisplayPaymentPostponed,
		},
		{
			name: "paid with a departed offer shows shipped",
			reqFunc: func() domain.OrderRequest {
				offer := offerWith(sellerID, domain.OfferStatusPaid, true)
				offer.DepartureDate = lo.ToPtr(projectorNow.Add(-time.Hour))
				return requestWith(domain.OrderRequestStatusPaid, offer)
			},
			want: domain.DisplayShipped,
		},
		{
			name: "paid without shipping keeps the persisted status",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusPaid,
					offerWith(sellerID, domain.OfferStatusPaid, true))
			},
			want: domain.DisplayStatus(domain.OrderRequestStatusPaid),
		},
		{
			name: "update requested beats expiry",
			reqFunc: func() domain.OrderRequest {
				offer := offerWith(sellerID, domain.OfferStatusOffer, false)
				offer.UpdateRequestedAt = lo.ToPtr(projectorNow.Add(-time.Hour))
				offer.ExpiresAt = lo.ToPtr(projectorNow.Add(-time.Hour))
				return requestWith(domain.OrderRequestStatusRequested, offer)
			},
			want: domain.DisplayOfferUpdateRequest,
		},
		{
			name: "expired offer",
			reqFunc: func() domain.OrderRequest {
				offer := offerWith(sellerID, domain.OfferStatusOffer, false)
				offer.ExpiresAt = lo.ToPtr(projectorNow.Add(-time.Minute))
				return requestWith(domain.OrderRequestStatusRequested, offer)
			},
			want: domain.DisplayOfferExpired,
		},
		{
			name: "unread offer update",
			reqFunc: func() domain.OrderRequest {
				req := requestWith(domain.OrderRequestStatusRequested,
					offerWith(sellerID, domain.OfferStatusOffer, false))
				req.HasUnreadOfferUpdate = true
				return req
			},
			want: domain.DisplayOfferUpdated,
		},
		{
			name: "no offers yet",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusRequested)
			},
			want: domain.DisplayRequested,
		},
		{
			name: "plain offer received",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusRequested,
					offerWith(sellerID, domain.OfferStatusOffer, false))
			},
			want: domain.DisplayOfferReceived,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ProjectStatus(tt.reqFunc(), domain.RoleCustomer, uuid.Nil, projectorNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectStatus_Employee(t *testing.T) {
	sellerID := uuid.MustParse(gofakeit.UUID())

	givenReward := &domain.Reward{
		Amount:          decimal.NewFromInt(100),
		SupplierPaid:    true,
		SellerFeePaidAt: lo.ToPtr(projectorNow.Add(-time.Hour)),
	}

	tests := []struct {
		name    string
		reqFunc func() domain.OrderRequest
		want    domain.DisplayStatus
	}{
		{
			name: "all rewards given shows reward paid",
			reqFunc: func() domain.OrderRequest {
				offer := offerWith(sellerID, domain.OfferStatusCompleted, true)
				offer.Reward = givenReward
				return requestWith(domain.OrderRequestStatusCompleted, offer)
			},
			want: domain.DisplayRewardPaid,
		},
		{
			name: "postponement still beats rewards",
			reqFunc: func() domain.OrderRequest {
				offer := offerWith(sellerID, domain.OfferStatusCompleted, true)
				offer.Reward = givenReward
				return requestWith(domain.OrderRequestStatusPaymentPostponed, offer)
			},
			want: domain.DisplayPaymentPostponed,
		},
		{
			name: "no offers with a described item",
			reqFunc: func() domain.OrderRequest {
				req := requestWith(domain.OrderRequestStatusRequested)
				req.Items = []domain.RequestProduct{{
					ID:          uuid.MustParse(gofakeit.UUID()),
					Description: lo.ToPtr("left headlight, see photo"),
				}}
				return req
			},
			want: domain.DisplayOrderRequestByPhoto,
		},
		{
			name: "no offers with catalog items",
			reqFunc: func() domain.OrderRequest {
				req := requestWith(domain.OrderRequestStatusRequested)
				req.Items = []domain.RequestProduct{{
					ID:        uuid.MustParse(gofakeit.UUID()),
					ProductID: lo.ToPtr(uuid.MustParse(gofakeit.UUID())),
				}}
				return req
			},
			want: domain.DisplayOrderRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ProjectStatus(tt.reqFunc(), domain.RoleEmployee, uuid.Nil, projectorNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectStatus_Seller(t *testing.T) {
	sellerID := uuid.MustParse(gofakeit.UUID())
	otherSellerID := uuid.MustParse(gofakeit.UUID())

	tests := []struct {
		name    string
		reqFunc func() domain.OrderRequest
		want    domain.DisplayStatus
	}{
		{
			name: "postponed request, own offer paid",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusPaymentPostponed,
					offerWith(sellerID, domain.OfferStatusPaid, true))
			},
			want: domain.DisplayPaid,
		},
		{
			name: "postponed request, own offer dropped",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusPaymentPostponed,
					offerWith(otherSellerID, domain.OfferStatusPaymentPostponed, true))
			},
			want: domain.DisplayOrderRequest,
		},
		{
			name: "postponed request, own offer postponed",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusPaymentPostponed,
					offerWith(sellerID, domain.OfferStatusPaymentPostponed, true))
			},
			want: domain.DisplayPaymentPostponed,
		},
		{
			name: "paid request, own offer lagging behind",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusPaid,
					offerWith(sellerID, domain.OfferStatusOffer, true))
			},
			want: domain.DisplayApproved,
		},
		{
			name: "approved request, own offer not chosen",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusApproved,
					offerWith(sellerID, domain.OfferStatusOffer, false))
			},
			want: domain.DisplayOrderRequest,
		},
		{
			name: "open request without own offer",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusRequested,
					offerWith(otherSellerID, domain.OfferStatusOffer, false))
			},
			want: domain.DisplayOrderRequest,
		},
		{
			name: "open request, own offer sent",
			reqFunc: func() domain.OrderRequest {
				return requestWith(domain.OrderRequestStatusRequested,
					offerWith(sellerID, domain.OfferStatusOffer, false))
			},
			want: domain.DisplayOfferSent,
		},
		{
			name: "open request, own offer expired",
			reqFunc: func() domain.OrderRequest {
				offer := offerWith(sellerID, domain.OfferStatusOffer, false)
				offer.ExpiresAt = lo.ToPtr(projectorNow.Add(-time.Minute))
				return requestWith(domain.OrderRequestStatusRequested, offer)
			},
			want: domain.DisplayOfferExpired,
		},
		{
			name: "paid request, own offer received",
			reqFunc: func() domain.OrderRequest {
				offer := offerWith(sellerID, domain.OfferStatusPaid, true)
				offer.ReceivingDate = lo.ToPtr(projectorNow.Add(-time.Hour))
				return requestWith(domain.OrderRequestStatusPaid, offer)
			},
			want: domain.DisplayCompleted,
		},
		{
			name: "paid request, own offer shipped",
			reqFunc: func() domain.OrderRequest {
				offer := offerWith(sellerID, domain.OfferStatusPaid, true)
				offer.DepartureDate = lo.ToPtr(projectorNow.Add(-time.Hour))
				return requestWith(domain.OrderRequestStatusPaid, offer)
			},
			want: domain.DisplayShipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ProjectStatus(tt.reqFunc(), domain.RoleSeller, sellerID, projectorNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectStatus_Pure(t *testing.T) {
	offer := offerWith(uuid.MustParse(gofakeit.UUID()), domain.OfferStatusOffer, true)
	offer.ExpiresAt = lo.ToPtr(projectorNow.Add(-time.Hour))
	req := requestWith(domain.OrderRequestStatusRequested, offer)

	before := req

	for _, role := range []domain.Role{domain.RoleCustomer, domain.RoleEmployee, domain.RoleSeller} {
		domain.ProjectStatus(req, role, offer.SellerID, projectorNow)
	}

	require.Empty(t, cmp.Diff(before, req), "projection mutated the request")
}

func TestProjectionRuleNames_Order(t *testing.T) {
	// Rule precedence is part of the contract: the postponement short-circuit
	// leads every chain, and the employee chain slots reward-paid right after.
	customer := domain.ProjectionRuleNames(domain.RoleCustomer)
	employee := domain.ProjectionRuleNames(domain.RoleEmployee)

	require.Equal(t, "payment-postponed", customer[0])
	require.Equal(t, "payment-postponed", employee[0])
	require.Equal(t, "all-rewards-given", employee[1])

	assert.Equal(t, len(customer)+1, len(employee))
}

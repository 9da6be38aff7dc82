package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/samber/lo"
)

type orderRequestResponse struct {
	ID         uuid.UUID `json:"id"`
	Number     string    `json:"number"`
	CustomerID uuid.UUID `json:"customerId"`

	Status         string `json:"status"`
	CustomerStatus string `json:"customerStatus,omitempty"`
	ManagerStatus  string `json:"managerStatus,omitempty"`

	TotalPrice string `json:"totalPrice"`
	PaidSum    string `json:"paidSum"`

	PaymentType string     `json:"paymentType,omitempty"`
	PaymentDate *time.Time `json:"paymentDate,omitempty"`

	PaymentPostponedAt        *time.Time `json:"paymentPostponedAt,omitempty"`
	PaymentPostponeAcceptedAt *time.Time `json:"paymentPostponeAcceptedAt,omitempty"`

	CompletionDate *time.Time `json:"completionDate,omitempty"`

	UnpaidSellerIDs []uuid.UUID `json:"unpaidSellerIds,omitempty"`

	HasUnreadOfferUpdate bool `json:"hasUnreadOfferUpdate"`

	Offers []offerResponse `json:"offers"`
	Items  []itemResponse  `json:"items,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type offerResponse struct {
	ID           uuid.UUID `json:"id"`
	SellerID     uuid.UUID `json:"sellerId"`
	Organization string    `json:"organization"`

	Status       string `json:"status"`
	SellerStatus string `json:"sellerStatus,omitempty"`
	OrderNumber  string `json:"orderNumber,omitempty"`

	TotalPrice string     `json:"totalPrice"`
	PaidSum    string     `json:"paidSum"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`

	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	UpdateRequestedAt *time.Time `json:"updateRequestedAt,omitempty"`

	TransportCompanyID *string    `json:"transportCompanyId,omitempty"`
	Pickup             bool       `json:"pickup"`
	TrackNumber        *string    `json:"trackNumber,omitempty"`
	DepartureDate      *time.Time `json:"departureDate,omitempty"`
	ReceivingDate      *time.Time `json:"receivingDate,omitempty"`

	PaymentPostponedAt        *time.Time `json:"paymentPostponedAt,omitempty"`
	PaymentPostponeAcceptedAt *time.Time `json:"paymentPostponeAcceptedAt,omitempty"`

	Reward *rewardResponse `json:"reward,omitempty"`

	Items []itemResponse `json:"items"`
}

type rewardResponse struct {
	Amount          string     `json:"amount"`
	SupplierPaid    bool       `json:"supplierPaid"`
	SellerFeePaidAt *time.Time `json:"sellerFeePaidAt,omitempty"`
}

type itemResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	Description *string    `json:"description,omitempty"`

	Quantity         int32 `json:"quantity"`
	DeliveryQuantity int32 `json:"deliveryQuantity"`
	Count            int32 `json:"count"`

	UnitPrice    string `json:"unitPrice"`
	DeliveryTerm *int32 `json:"deliveryTerm,omitempty"`

	IsSelected bool `json:"isSelected"`
}

type notificationResponse struct {
	ID             uuid.UUID      `json:"id"`
	Type           string         `json:"type"`
	OrderRequestID *uuid.UUID     `json:"orderRequestId,omitempty"`
	OfferID        *uuid.UUID     `json:"offerId,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	Viewed         bool           `json:"viewed"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func toOrderRequestResponse(req domain.OrderRequest) orderRequestResponse {
	return orderRequestResponse{
		ID:                        req.ID,
		Number:                    req.Number,
		CustomerID:                req.CustomerID,
		Status:                    string(req.Status),
		CustomerStatus:            string(req.CustomerStatus),
		ManagerStatus:             string(req.ManagerStatus),
		TotalPrice:                req.TotalPrice.String(),
		PaidSum:                   req.PaidSum.String(),
		PaymentType:               string(req.PaymentType),
		PaymentDate:               req.PaymentDate,
		PaymentPostponedAt:        req.PaymentPostponedAt,
		PaymentPostponeAcceptedAt: req.PaymentPostponeAcceptedAt,
		CompletionDate:            req.CompletionDate,
		UnpaidSellerIDs:           req.UnpaidSellerIDs,
		HasUnreadOfferUpdate:      req.HasUnreadOfferUpdate,
		Offers:                    lo.Map(req.Offers, func(o domain.Offer, _ int) offerResponse { return toOfferResponse(o) }),
		Items:                     lo.Map(req.Items, func(p domain.RequestProduct, _ int) itemResponse { return toItemResponse(p) }),
		CreatedAt:                 req.CreatedAt,
	}
}

func toOfferResponse(o domain.Offer) offerResponse {
	resp := offerResponse{
		ID:                        o.ID,
		SellerID:                  o.SellerID,
		Organization:              o.Organization.Name,
		Status:                    string(o.Status),
		SellerStatus:              string(o.SellerStatus),
		OrderNumber:               o.OrderNumber,
		TotalPrice:                o.TotalPrice.String(),
		PaidSum:                   o.PaidSum.String(),
		PaidAt:                    o.PaidAt,
		ExpiresAt:                 o.ExpiresAt,
		UpdateRequestedAt:         o.UpdateRequestedAt,
		TransportCompanyID:        o.TransportCompanyID,
		Pickup:                    o.Pickup,
		TrackNumber:               o.TrackNumber,
		DepartureDate:             o.DepartureDate,
		ReceivingDate:             o.ReceivingDate,
		PaymentPostponedAt:        o.PaymentPostponedAt,
		PaymentPostponeAcceptedAt: o.PaymentPostponeAcceptedAt,
		Items:                     lo.Map(o.Items, func(p domain.RequestProduct, _ int) itemResponse { return toItemResponse(p) }),
	}

	if o.Reward != nil {
		resp.Reward = &rewardResponse{
			Amount:          o.Reward.Amount.String(),
			SupplierPaid:    o.Reward.SupplierPaid,
			SellerFeePaidAt: o.Reward.SellerFeePaidAt,
		}
	}

	return resp
}

func toItemResponse(p domain.RequestProduct) itemResponse {
	return itemResponse{
		ID:               p.ID,
		ProductID:        p.ProductID,
		Description:      p.Description,
		Quantity:         p.Quantity,
		DeliveryQuantity: p.DeliveryQuantity,
		Count:            p.Count,
		UnitPrice:        p.UnitPrice.String(),
		DeliveryTerm:     p.DeliveryTerm,
		IsSelected:       p.IsSelected,
	}
}

func toNotificationResponse(n domain.Notification) notificationResponse {
	return notificationResponse{
		ID:             n.ID,
		Type:           string(n.Type),
		OrderRequestID: n.OrderRequestID,
		OfferID:        n.OfferID,
		Data:           n.Data,
		Viewed:         n.Viewed(),
		CreatedAt:      n.CreatedAt,
	}
}

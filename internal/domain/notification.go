package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType keys the free-form payload and is what external systems
// (web sockets, e-mail templates) switch on.
type NotificationType string

const (
	NotificationOrderRequestCreated      NotificationType = "orderRequestCreated"
	NotificationOfferReceived            NotificationType = "offerReceived"
	NotificationOfferUpdated             NotificationType = "offerUpdated"
	NotificationOfferExpired             NotificationType = "offerExpired"
	NotificationOfferUpdateRequested     NotificationType = "offerUpdateRequested"
	NotificationOrderApproved            NotificationType = "orderApproved"
	NotificationOrderPaid                NotificationType = "orderPaid"
	NotificationOrderPartiallyPaid       NotificationType = "orderPartiallyPaid"
	NotificationPaymentCancelled         NotificationType = "paymentCancelled"
	NotificationPaymentPostponeAccepted  NotificationType = "paymentPostponeAccepted"
	NotificationOrderShipped             NotificationType = "orderShipped"
	NotificationOrderCompleted           NotificationType = "orderCompleted"
	NotificationOrderCompleteReverted    NotificationType = "orderCompleteReverted"
	NotificationOrderDeclined            NotificationType = "orderDeclined"
	NotificationRewardPaid               NotificationType = "rewardPaid"
	NotificationSupplierPaymentConfirmed NotificationType = "supplierPaymentConfirmed"
	NotificationChangeTransportCompany   NotificationType = "changeTransportCompany"
	NotificationDeclinedChangeTransport  NotificationType = "declinedChangeTransportCompany"
	NotificationInvoicesGenerated        NotificationType = "invoicesGenerated"
)

// Notification is an append-only record of an event delivered to one
// (user, role) pair.
type Notification struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Role   Role
	Type   NotificationType

	OrderRequestID *uuid.UUID
	OfferID        *uuid.UUID

	Data map[string]any

	ViewedAt  *time.Time
	CreatedAt time.Time
}

func (n Notification) Viewed() bool {
	return n.ViewedAt != nil
}

// BuildNotificationData assembles the type-specific payload. Every known
// type gets an explicit case so a new type cannot silently ship an empty
// payload.
func BuildNotificationData(t NotificationType, req OrderRequest, offer *Offer) map[string]any {
	data := map[string]any{
		"orderRequestId": req.ID.String(),
		"orderNumber":    req.Number,
	}

	if offer != nil {
		data["offerId"] = offer.ID.String()
		data["sellerId"] = offer.SellerID.String()
	}

	switch t {
	case NotificationOrderPaid, NotificationOrderPartiallyPaid:
		data["paidSum"] = req.PaidSum.String()
	case NotificationPaymentCancelled:
		data["paymentType"] = string(req.PaymentType)
	case NotificationPaymentPostponeAccepted:
		if req.PaymentPostponedAt != nil {
			data["postponedAt"] = req.PaymentPostponedAt.Format(time.RFC3339)
		}
	case NotificationOrderShipped:
		if offer != nil && offer.TrackNumber != nil {
			data["trackNumber"] = *offer.TrackNumber
		}
	case NotificationRewardPaid:
		if offer != nil && offer.Reward != nil {
			data["rewardAmount"] = offer.Reward.Amount.String()
		}
	case NotificationChangeTransportCompany, NotificationDeclinedChangeTransport:
		if offer != nil && offer.TransportCompanyID != nil {
			data["transportCompanyId"] = *offer.TransportCompanyID
		}
	}

	return data
}

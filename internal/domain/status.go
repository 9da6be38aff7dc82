package domain

import "errors"

// OrderRequestStatus is the canonical persisted lifecycle status of a buyer's
// request. Display statuses shown to users are derived from it, see projector.go.
type OrderRequestStatus string

// remember to add new statuses to the validOrderRequestStatuses map
const (
	OrderRequestStatusRequested        OrderRequestStatus = "REQUESTED"
	OrderRequestStatusApproved         OrderRequestStatus = "APPROVED"
	OrderRequestStatusPaid             OrderRequestStatus = "PAID"
	OrderRequestStatusPaymentPostponed OrderRequestStatus = "PAYMENT_POSTPONED"
	OrderRequestStatusDeclined         OrderRequestStatus = "DECLINED"
	OrderRequestStatusCompleted        OrderRequestStatus = "COMPLETED"
)

var validOrderRequestStatuses = map[OrderRequestStatus]struct{}{
	OrderRequestStatusRequested:        {},
	OrderRequestStatusApproved:         {},
	OrderRequestStatusPaid:             {},
	OrderRequestStatusPaymentPostponed: {},
	OrderRequestStatusDeclined:         {},
	OrderRequestStatusCompleted:        {},
}

func ToOrderRequestStatus(s string) (OrderRequestStatus, error) {
	status := OrderRequestStatus(s)
	if _, ok := validOrderRequestStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order request status")
}

// OfferStatus mirrors a subset of the request statuses plus OFFER, the state
// of a seller response that has not yet been taken into an approved order.
type OfferStatus string

const (
	OfferStatusOffer            OfferStatus = "OFFER"
	OfferStatusPaid             OfferStatus = "PAID"
	OfferStatusPaymentPostponed OfferStatus = "PAYMENT_POSTPONED"
	OfferStatusDeclined         OfferStatus = "DECLINED"
	OfferStatusCompleted        OfferStatus = "COMPLETED"
)

var validOfferStatuses = map[OfferStatus]struct{}{
	OfferStatusOffer:            {},
	OfferStatusPaid:             {},
	OfferStatusPaymentPostponed: {},
	OfferStatusDeclined:         {},
	OfferStatusCompleted:        {},
}

func ToOfferStatus(s string) (OfferStatus, error) {
	status := OfferStatus(s)
	if _, ok := validOfferStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid offer status")
}

// DisplayStatus is the role-specific extended status projected for UI lists.
// It is a strict superset of the persisted statuses.
type DisplayStatus string

const (
	DisplayOrderRequest        DisplayStatus = "ORDER_REQUEST"
	DisplayOrderRequestByPhoto DisplayStatus = "ORDER_REQUEST_BY_PHOTO_OR_DESCRIPTION"
	DisplayRequested           DisplayStatus = "REQUESTED"
	DisplayOfferSent           DisplayStatus = "OFFER_SENT"
	DisplayOfferReceived       DisplayStatus = "OFFER_RECEIVED"
	DisplayOfferUpdated        DisplayStatus = "OFFER_UPDATED"
	DisplayOfferUpdateRequest  DisplayStatus = "OFFER_UPDATE_REQUESTED"
	DisplayOfferExpired        DisplayStatus = "OFFER_EXPIRED"
	DisplayApproved            DisplayStatus = "APPROVED"
	DisplayPaid                DisplayStatus = "PAID"
	DisplayPaymentPostponed    DisplayStatus = "PAYMENT_POSTPONED"
	DisplayShipped             DisplayStatus = "SHIPPED"
	DisplayCompleted           DisplayStatus = "COMPLETED"
	DisplayDeclined            DisplayStatus = "DECLINED"
	DisplayRewardPaid          DisplayStatus = "REWARD_PAID"
)

// Role identifies which party a projection or a notification is built for.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleEmployee Role = "employee"
)

func ToRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleSeller, RoleEmployee:
		return r, nil
	}

	return "", errors.New("invalid role")
}

// PaymentType distinguishes acquiring (card) payments, which go through the
// gateway and cannot be reverted by the invoice cancellation path, from
// invoice payments settled by bank transfer.
type PaymentType string

const (
	PaymentTypeCard    PaymentType = "card"
	PaymentTypeInvoice PaymentType = "invoice"
)

func ToPaymentType(s string) (PaymentType, error) {
	switch p := PaymentType(s); p {
	case PaymentTypeCard, PaymentTypeInvoice:
		return p, nil
	}

	return "", errors.New("invalid payment type")
}

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type handlers struct {
	lifecycle LifecycleService
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func (h *handlers) getOrderRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	req, err := h.lifecycle.GetOrderRequest(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) searchOrderRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	role := domain.RoleCustomer
	if s := q.Get("role"); s != "" {
		parsed, err := domain.ToRole(s)
		if err != nil {
			writeBadRequest(w, "invalid role")
			return
		}
		role = parsed
	}

	var sellerID uuid.UUID
	if s := q.Get("sellerId"); s != "" {
		parsed, err := uuid.Parse(s)
		if err != nil {
			writeBadRequest(w, "invalid seller id")
			return
		}
		sellerID = parsed
	}

	var filter domain.OrderRequestFilter
	for _, s := range q["customerId"] {
		id, err := uuid.Parse(s)
		if err != nil {
			writeBadRequest(w, "invalid customer id")
			return
		}
		filter.CustomerIDs = append(filter.CustomerIDs, id)
	}
	for _, s := range q["status"] {
		status, err := domain.ToOrderRequestStatus(s)
		if err != nil {
			writeBadRequest(w, "invalid status")
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	reqs, err := h.lifecycle.SearchOrderRequests(r.Context(), filter, role, sellerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, lo.Map(reqs, func(req domain.OrderRequest, _ int) orderRequestResponse {
		return toOrderRequestResponse(req)
	}))
}

type approveRequest struct {
	PayerOrganizationID uuid.UUID `json:"payerOrganizationId"`
	PaymentType         string    `json:"paymentType"`
}

type approveResponse struct {
	Request     orderRequestResponse `json:"request"`
	PaymentLink string               `json:"paymentLink,omitempty"`
}

func (h *handlers) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	var body approveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	paymentType, err := domain.ToPaymentType(body.PaymentType)
	if err != nil {
		writeBadRequest(w, "invalid payment type")
		return
	}

	result, err := h.lifecycle.Approve(r.Context(), id, body.PayerOrganizationID, paymentType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, approveResponse{
		Request:     toOrderRequestResponse(result.Request),
		PaymentLink: result.PaymentLink,
	})
}

func (h *handlers) pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	req, err := h.lifecycle.Pay(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

type payOffersRequest struct {
	// Offer id to the amount paid toward it, decimal string.
	Amounts map[uuid.UUID]string `json:"amounts"`
}

func (h *handlers) payOffers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	var body payOffersRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if len(body.Amounts) == 0 {
		writeBadRequest(w, "no amounts given")
		return
	}

	amounts := make(map[uuid.UUID]decimal.Decimal, len(body.Amounts))
	for offerID, s := range body.Amounts {
		amount, err := decimal.NewFromString(s)
		if err != nil || amount.IsNegative() {
			writeBadRequest(w, "invalid amount for offer "+offerID.String())
			return
		}
		amounts[offerID] = amount
	}

	req, err := h.lifecycle.PayOffers(r.Context(), id, amounts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) cancelPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	req, err := h.lifecycle.CancelPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) cancelOfferPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}
	offerID, ok := pathUUID(r, "offerID")
	if !ok {
		writeBadRequest(w, "invalid offer id")
		return
	}

	req, err := h.lifecycle.CancelOfferPayment(r.Context(), id, offerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) acceptPaymentPostpone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	req, err := h.lifecycle.AcceptPaymentPostpone(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	req, err := h.lifecycle.Complete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) revertComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	req, err := h.lifecycle.RevertComplete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) decline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}

	req, err := h.lifecycle.Decline(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) confirmSupplierPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}
	offerID, ok := pathUUID(r, "offerID")
	if !ok {
		writeBadRequest(w, "invalid offer id")
		return
	}

	req, err := h.lifecycle.ConfirmSupplierPayment(r.Context(), id, offerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) confirmSellerFeePaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "orderRequestID")
	if !ok {
		writeBadRequest(w, "invalid order request id")
		return
	}
	offerID, ok := pathUUID(r, "offerID")
	if !ok {
		writeBadRequest(w, "invalid offer id")
		return
	}

	req, err := h.lifecycle.ConfirmSellerFeePaid(r.Context(), id, offerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, toOrderRequestResponse(req))
}

func (h *handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID, err := uuid.Parse(q.Get("userId"))
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	role, err := domain.ToRole(q.Get("role"))
	if err != nil {
		writeBadRequest(w, "invalid role")
		return
	}

	onlyUnread := q.Get("unread") == "true"

	notifications, err := h.lifecycle.ListNotifications(r.Context(), userID, role, onlyUnread)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, lo.Map(notifications, func(n domain.Notification, _ int) notificationResponse {
		return toNotificationResponse(n)
	}))
}

type markViewedRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *handlers) markNotificationsViewed(w http.ResponseWriter, r *http.Request) {
	var body markViewedRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := h.lifecycle.MarkNotificationsViewed(r.Context(), body.IDs); err != nil {
		writeError(w, err)
		return
	}

	writeData(w, struct{}{})
}

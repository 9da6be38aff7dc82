package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"github.com/partline/marketplace/internal/repository"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// In-memory collaborators for lifecycle tests. The store keeps whole
// aggregates; UpdateOrderRequest replaces the stored aggregate, which covers
// UpdateOffer as well since the service always persists both together.

type fakeStore struct {
	orderRequests *fakeOrderRequestRepo
	offers        *fakeOfferRepo
	notifications *fakeNotificationRepo
	stock         *fakeStockRepo
	users         *fakeUserRepo
}

func newFakeStore() *fakeStore {
	requests := map[uuid.UUID]*domain.OrderRequest{}

	return &fakeStore{
		orderRequests: &fakeOrderRequestRepo{requests: requests},
		offers:        &fakeOfferRepo{requests: requests},
		notifications: &fakeNotificationRepo{},
		stock:         &fakeStockRepo{},
		users:         &fakeUserRepo{salesNumbers: map[uuid.UUID]int{}},
	}
}

func (s *fakeStore) WithinTx(_ context.Context, fn func(r port.Repositories) error) error {
	return fn(port.Repositories{
		OrderRequests: s.orderRequests,
		Offers:        s.offers,
		Notifications: s.notifications,
		Stock:         s.stock,
		Users:         s.users,
	})
}

func (s *fakeStore) put(req domain.OrderRequest) {
	copied := req
	s.orderRequests.requests[req.ID] = &copied
}

func (s *fakeStore) get(id uuid.UUID) domain.OrderRequest {
	return *s.orderRequests.requests[id]
}

type fakeOrderRequestRepo struct {
	requests map[uuid.UUID]*domain.OrderRequest
}

func (r *fakeOrderRequestRepo) GetOrderRequest(_ context.Context, id uuid.UUID) (domain.OrderRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return domain.OrderRequest{}, fmt.Errorf("order request[%s]: %w", id, repository.ErrNotFound)
	}
	return *req, nil
}

func (r *fakeOrderRequestRepo) GetOrderRequestForUpdate(ctx context.Context, id uuid.UUID) (domain.OrderRequest, error) {
	return r.GetOrderRequest(ctx, id)
}

func (r *fakeOrderRequestRepo) SearchOrderRequests(_ context.Context, filter domain.OrderRequestFilter) ([]domain.OrderRequest, error) {
	var result []domain.OrderRequest
	for _, req := range r.requests {
		if len(filter.IDs) > 0 && !lo.Contains(filter.IDs, req.ID) {
			continue
		}
		if len(filter.Statuses) > 0 && !lo.Contains(filter.Statuses, req.Status) {
			continue
		}
		result = append(result, *req)
	}
	return result, nil
}

func (r *fakeOrderRequestRepo) UpdateOrderRequest(_ context.Context, req domain.OrderRequest) error {
	if _, ok := r.requests[req.ID]; !ok {
		return fmt.Errorf("order request[%s]: %w", req.ID, repository.ErrNotFound)
	}
	copied := req
	r.requests[req.ID] = &copied
	return nil
}

type fakeOfferRepo struct {
	requests map[uuid.UUID]*domain.OrderRequest

	deleted      []uuid.UUID
	rewardUpsert int
	expired      []domain.Offer
}

func (r *fakeOfferRepo) UpdateOffer(_ context.Context, offer domain.Offer) error {
	req, ok := r.requests[offer.OrderRequestID]
	if !ok {
		return nil
	}
	for i := range req.Offers {
		if req.Offers[i].ID == offer.ID {
			req.Offers[i] = offer
		}
	}
	return nil
}

func (r *fakeOfferRepo) DeleteOffer(_ context.Context, offerID uuid.UUID) error {
	r.deleted = append(r.deleted, offerID)
	for _, req := range r.requests {
		req.Offers = lo.Reject(req.Offers, func(o domain.Offer, _ int) bool {
			return o.ID == offerID
		})
	}
	return nil
}

func (r *fakeOfferRepo) UpsertReward(_ context.Context, reward domain.Reward) (domain.Reward, error) {
	r.rewardUpsert++
	if reward.ID == uuid.Nil {
		reward.ID = uuid.MustParse(gofakeit.UUID())
	}
	return reward, nil
}

func (r *fakeOfferRepo) ListExpiredOffers(_ context.Context, _ time.Time, _ int32) ([]domain.Offer, error) {
	return r.expired, nil
}

type fakeNotificationRepo struct {
	inserted []domain.Notification

	viewedByRequest []uuid.UUID
	viewedIDs       []uuid.UUID
}

func (r *fakeNotificationRepo) InsertNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	n.ID = uuid.MustParse(gofakeit.UUID())
	r.inserted = append(r.inserted, n)
	return n, nil
}

func (r *fakeNotificationRepo) ListNotifications(_ context.Context, userID uuid.UUID, role domain.Role, onlyUnread bool) ([]domain.Notification, error) {
	return lo.Filter(r.inserted, func(n domain.Notification, _ int) bool {
		if n.UserID != userID || n.Role != role {
			return false
		}
		return !onlyUnread || !n.Viewed()
	}), nil
}

func (r *fakeNotificationRepo) MarkViewed(_ context.Context, ids []uuid.UUID) error {
	r.viewedIDs = append(r.viewedIDs, ids...)
	return nil
}

func (r *fakeNotificationRepo) MarkViewedByOrderRequest(_ context.Context, orderRequestID uuid.UUID) error {
	r.viewedByRequest = append(r.viewedByRequest, orderRequestID)
	return nil
}

func (r *fakeNotificationRepo) ofType(t domain.NotificationType) []domain.Notification {
	return lo.Filter(r.inserted, func(n domain.Notification, _ int) bool { return n.Type == t })
}

type stockCall struct {
	op       string
	targetID uuid.UUID
	quantity int32
}

type fakeStockRepo struct {
	calls []stockCall
}

func (r *fakeStockRepo) record(op string, id uuid.UUID, quantity int32) {
	r.calls = append(r.calls, stockCall{op: op, targetID: id, quantity: quantity})
}

func (r *fakeStockRepo) Reserve(_ context.Context, stockBalanceID uuid.UUID, quantity int32) error {
	r.record("reserve", stockBalanceID, quantity)
	return nil
}

func (r *fakeStockRepo) ReleaseReservation(_ context.Context, stockBalanceID uuid.UUID, quantity int32) error {
	r.record("release", stockBalanceID, quantity)
	return nil
}

func (r *fakeStockRepo) Deduct(_ context.Context, stockBalanceID uuid.UUID, quantity int32) error {
	r.record("deduct", stockBalanceID, quantity)
	return nil
}

func (r *fakeStockRepo) RefreshProductMinPrice(_ context.Context, productID uuid.UUID) error {
	r.record("refresh", productID, 0)
	return nil
}

func (r *fakeStockRepo) ops(op string) []stockCall {
	return lo.Filter(r.calls, func(c stockCall, _ int) bool { return c.op == op })
}

type fakeUserRepo struct {
	managerIDs   []uuid.UUID
	salesNumbers map[uuid.UUID]int
}

func (r *fakeUserRepo) ListManagerIDs(context.Context) ([]uuid.UUID, error) {
	return r.managerIDs, nil
}

func (r *fakeUserRepo) IncrementSalesNumber(_ context.Context, sellerID uuid.UUID) error {
	r.salesNumbers[sellerID]++
	return nil
}

type docCall struct {
	kind    string // "invoices" or "specification"
	offerID uuid.UUID
}

type fakeDocs struct {
	calls []docCall
}

func (d *fakeDocs) GenerateInvoices(_ context.Context, _ domain.OrderRequest, _ uuid.UUID) error {
	d.calls = append(d.calls, docCall{kind: "invoices"})
	return nil
}

func (d *fakeDocs) GenerateSpecification(_ context.Context, _ domain.OrderRequest, offer domain.Offer) error {
	d.calls = append(d.calls, docCall{kind: "specification", offerID: offer.ID})
	return nil
}

type fakePayments struct {
	link string
	err  error
}

func (p *fakePayments) CreatePaymentLink(context.Context, domain.OrderRequest) (string, error) {
	return p.link, p.err
}

type fakePublisher struct {
	published []domain.Notification
}

func (p *fakePublisher) Publish(_ context.Context, n domain.Notification) error {
	p.published = append(p.published, n)
	return nil
}

// Builders.

func selectedItem(price int64, count int32) domain.RequestProduct {
	return domain.RequestProduct{
		ID:             uuid.MustParse(gofakeit.UUID()),
		ProductID:      lo.ToPtr(uuid.MustParse(gofakeit.UUID())),
		Quantity:       count,
		Count:          count,
		UnitPrice:      decimal.NewFromInt(price),
		IsSelected:     true,
		StockBalanceID: lo.ToPtr(uuid.MustParse(gofakeit.UUID())),
	}
}

func unselectedItem(price int64, count int32) domain.RequestProduct {
	item := selectedItem(price, count)
	item.IsSelected = false
	return item
}

func baseOffer(reqID uuid.UUID, items ...domain.RequestProduct) domain.Offer {
	return domain.Offer{
		ID:             uuid.MustParse(gofakeit.UUID()),
		OrderRequestID: reqID,
		SellerID:       uuid.MustParse(gofakeit.UUID()),
		Organization: domain.Organization{
			ID:                uuid.MustParse(gofakeit.UUID()),
			Name:              gofakeit.Company(),
			INN:               gofakeit.DigitN(10),
			CommissionPercent: decimal.NewFromInt(10),
		},
		Status: domain.OfferStatusOffer,
		Pickup: true,
		Items:  items,
	}
}

func baseRequest(offers ...domain.Offer) domain.OrderRequest {
	return domain.OrderRequest{
		ID:         uuid.MustParse(gofakeit.UUID()),
		Number:     gofakeit.DigitN(6),
		CustomerID: uuid.MustParse(gofakeit.UUID()),
		Status:     domain.OrderRequestStatusRequested,
		Offers:     offers,
	}
}

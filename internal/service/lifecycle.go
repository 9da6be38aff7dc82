// Package service orchestrates the order-request lifecycle. Every operation
// follows the same shape inside one database transaction:
// load (locked) → validate guards → mutate → recompute projections → notify.
// An error anywhere rolls the whole operation back.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/metrics"
	"github.com/partline/marketplace/internal/port"
	"github.com/partline/marketplace/internal/repository"
	"go.uber.org/zap"
)

type Config struct {
	// Tax id of the organization that requires a regenerated specification
	// document on payment postponement.
	SpecialOrgINN string
}

type Lifecycle struct {
	store     port.Store
	docs      port.DocumentGenerator
	payments  port.PaymentGateway
	publisher port.EventPublisher

	cfg     Config
	log     *zap.Logger
	metrics *metrics.Lifecycle

	now func() time.Time
}

func NewLifecycle(
	store port.Store,
	docs port.DocumentGenerator,
	payments port.PaymentGateway,
	publisher port.EventPublisher,
	cfg Config,
	log *zap.Logger,
	m *metrics.Lifecycle,
) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}

	return &Lifecycle{
		store:     store,
		docs:      docs,
		payments:  payments,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// load fetches the locked aggregate, translating the repository sentinel
// into a typed NOT_FOUND error.
func (s *Lifecycle) load(ctx context.Context, r port.Repositories, orderRequestID uuid.UUID) (domain.OrderRequest, error) {
	req, err := r.OrderRequests.GetOrderRequestForUpdate(ctx, orderRequestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return req, notFound(fmt.Sprintf("order request %s not found", orderRequestID))
		}
		return req, fmt.Errorf("OrderRequests.GetOrderRequestForUpdate: %w", err)
	}

	return req, nil
}

// reproject recomputes and persists the cached display statuses for every
// role. Runs after each mutation in the same transaction, so the cache never
// diverges from the authoritative fields.
func (s *Lifecycle) reproject(ctx context.Context, r port.Repositories, req *domain.OrderRequest) error {
	now := s.now()

	req.CustomerStatus = domain.ProjectStatus(*req, domain.RoleCustomer, uuid.Nil, now)
	req.ManagerStatus = domain.ProjectStatus(*req, domain.RoleEmployee, uuid.Nil, now)

	for i := range req.Offers {
		offer := &req.Offers[i]
		offer.SellerStatus = domain.ProjectStatus(*req, domain.RoleSeller, offer.SellerID, now)

		if err := r.Offers.UpdateOffer(ctx, *offer); err != nil {
			return fmt.Errorf("Offers.UpdateOffer: %w", err)
		}
	}

	if err := r.OrderRequests.UpdateOrderRequest(ctx, *req); err != nil {
		return fmt.Errorf("OrderRequests.UpdateOrderRequest: %w", err)
	}

	return nil
}

// dispatch persists a notification for one (user, role) pair and pushes it
// over the delivery channel within the same transaction.
func (s *Lifecycle) dispatch(ctx context.Context, r port.Repositories, userID uuid.UUID, role domain.Role, t domain.NotificationType, req domain.OrderRequest, offer *domain.Offer) error {
	n := domain.Notification{
		UserID:         userID,
		Role:           role,
		Type:           t,
		OrderRequestID: &req.ID,
		Data:           domain.BuildNotificationData(t, req, offer),
	}
	if offer != nil {
		n.OfferID = &offer.ID
	}

	created, err := r.Notifications.InsertNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("Notifications.InsertNotification: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, created); err != nil {
			return fmt.Errorf("publisher.Publish: %w", err)
		}
	}

	return nil
}

func (s *Lifecycle) notifyManagers(ctx context.Context, r port.Repositories, t domain.NotificationType, req domain.OrderRequest, offer *domain.Offer) error {
	managerIDs, err := r.Users.ListManagerIDs(ctx)
	if err != nil {
		return fmt.Errorf("Users.ListManagerIDs: %w", err)
	}

	for _, id := range managerIDs {
		if err := s.dispatch(ctx, r, id, domain.RoleEmployee, t, req, offer); err != nil {
			return err
		}
	}

	return nil
}

func (s *Lifecycle) observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if svcErr, ok := AsError(err); ok {
			outcome = string(svcErr.Code)
		}
	}
	s.metrics.Observe(operation, outcome)
}

// GetOrderRequest loads the aggregate without a lock, for read endpoints.
func (s *Lifecycle) GetOrderRequest(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error) {
	var req domain.OrderRequest

	err := s.store.WithinTx(ctx, func(r port.Repositories) error {
		var err error
		req, err = r.OrderRequests.GetOrderRequest(ctx, orderRequestID)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(fmt.Sprintf("order request %s not found", orderRequestID))
		}
		return err
	})

	return req, err
}

// SearchOrderRequests projects display statuses on the fly for list views;
// persisted caches are only refreshed by lifecycle operations.
func (s *Lifecycle) SearchOrderRequests(ctx context.Context, filter domain.OrderRequestFilter, role domain.Role, sellerID uuid.UUID) ([]domain.OrderRequest, error) {
	var result []domain.OrderRequest

	err := s.store.WithinTx(ctx, func(r port.Repositories) error {
		reqs, err := r.OrderRequests.SearchOrderRequests(ctx, filter)
		if err != nil {
			return fmt.Errorf("OrderRequests.SearchOrderRequests: %w", err)
		}

		now := s.now()
		for i := range reqs {
			status := domain.ProjectStatus(reqs[i], role, sellerID, now)
			switch role {
			case domain.RoleSeller:
				for j := range reqs[i].Offers {
					if reqs[i].Offers[j].SellerID == sellerID {
						reqs[i].Offers[j].SellerStatus = status
					}
				}
			case domain.RoleEmployee:
				reqs[i].ManagerStatus = status
			default:
				reqs[i].CustomerStatus = status
			}
		}

		result = reqs
		return nil
	})

	return result, err
}

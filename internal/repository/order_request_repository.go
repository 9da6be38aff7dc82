package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

type orderRequestRepository struct {
	db DB
}

func NewOrderRequest(db DB) port.OrderRequestRepository {
	return &orderRequestRepository{db: db}
}

const orderRequestColumns = `
	id, number, customer_id, address_id, status, customer_status, manager_status,
	total_price::text, paid_sum::text, payment_type, payment_date,
	payment_postponed_at, payment_postpone_accepted_at, completion_date,
	unpaid_seller_ids::text[], customer_last_notified_at, manager_last_notified_at,
	created_at, updated_at`

func (r *orderRequestRepository) GetOrderRequest(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error) {
	return r.getOrderRequest(ctx, orderRequestID, false)
}

func (r *orderRequestRepository) GetOrderRequestForUpdate(ctx context.Context, orderRequestID uuid.UUID) (domain.OrderRequest, error) {
	return r.getOrderRequest(ctx, orderRequestID, true)
}

func (r *orderRequestRepository) getOrderRequest(ctx context.Context, orderRequestID uuid.UUID, forUpdate bool) (domain.OrderRequest, error) {
	var req domain.OrderRequest

	if orderRequestID == uuid.Nil {
		return req, errors.New("orderRequestID is empty")
	}

	query := `SELECT ` + orderRequestColumns + ` FROM order_requests WHERE id = $1`
	if forUpdate {
		// Serializes concurrent lifecycle transitions on the same request.
		query += ` FOR UPDATE`
	}

	row := r.db.QueryRow(ctx, query, orderRequestID)

	req, err := scanOrderRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return req, fmt.Errorf("order request[%s]: %w", orderRequestID, ErrNotFound)
		}
		return req, fmt.Errorf("scanOrderRequest: %w", err)
	}

	if err := r.loadAggregate(ctx, &req); err != nil {
		return req, fmt.Errorf("r.loadAggregate: %w", err)
	}

	return req, nil
}

// loadAggregate attaches offers (with organization and reward), line items
// and the unread-offer-update flag.
func (r *orderRequestRepository) loadAggregate(ctx context.Context, req *domain.OrderRequest) error {
	offers, err := r.loadOffers(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("r.loadOffers: %w", err)
	}

	items, err := r.loadItems(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("r.loadItems: %w", err)
	}

	byOffer := lo.GroupBy(
		lo.Filter(items, func(p domain.RequestProduct, _ int) bool { return p.OfferID != nil }),
		func(p domain.RequestProduct) uuid.UUID { return *p.OfferID },
	)

	for i := range offers {
		offers[i].Items = byOffer[offers[i].ID]
	}

	req.Offers = offers
	req.Items = lo.Filter(items, func(p domain.RequestProduct, _ int) bool { return p.OfferID == nil })

	unread, err := r.hasUnreadOfferUpdate(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("r.hasUnreadOfferUpdate: %w", err)
	}
	req.HasUnreadOfferUpdate = unread

	return nil
}

func (r *orderRequestRepository) loadOffers(ctx context.Context, orderRequestID uuid.UUID) ([]domain.Offer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.order_request_id, o.seller_id, o.status, o.seller_status,
		       o.order_number, o.total_price::text, o.paid_sum::text, o.paid_at,
		       o.expires_at, o.update_requested_at, o.transport_company_id,
		       o.pickup, o.track_number, o.departure_date, o.receiving_date,
		       o.payment_postponed_at, o.payment_postpone_accepted_at,
		       o.created_at, o.updated_at,
		       org.id, org.name, org.inn, org.individual, org.vat_payer,
		       org.commission_percent::text, org.split_commission,
		       rw.id, rw.amount::text, rw.supplier_paid, rw.seller_fee_paid_at
		FROM offers o
		JOIN organizations org ON org.id = o.organization_id
		LEFT JOIN rewards rw ON rw.offer_id = o.id
		WHERE o.order_request_id = $1
		ORDER BY o.created_at`, orderRequestID)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOffer: %w", err)
		}
		offers = append(offers, offer)
	}

	return offers, rows.Err()
}

func (r *orderRequestRepository) loadItems(ctx context.Context, orderRequestID uuid.UUID) ([]domain.RequestProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_request_id, offer_id, product_id, description,
		       quantity, delivery_quantity, count, unit_price::text,
		       delivery_term, is_selected, stock_balance_id
		FROM request_products
		WHERE order_request_id = $1
		ORDER BY id`, orderRequestID)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.RequestProduct
	for rows.Next() {
		item, err := scanRequestProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanRequestProduct: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *orderRequestRepository) hasUnreadOfferUpdate(ctx context.Context, orderRequestID uuid.UUID) (bool, error) {
	var unread bool

	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE order_request_id = $1 AND type = $2 AND viewed_at IS NULL
		)`, orderRequestID, string(domain.NotificationOfferUpdated)).Scan(&unread)
	if err != nil {
		return false, fmt.Errorf("db.QueryRow: %w", err)
	}

	return unread, nil
}

func (r *orderRequestRepository) SearchOrderRequests(ctx context.Context, filter domain.OrderRequestFilter) ([]domain.OrderRequest, error) {
	var createdAfter, createdBefore *time.Time
	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	statuses := lo.Map(filter.Statuses, func(s domain.OrderRequestStatus, _ int) string { return string(s) })
	ids := lo.Map(filter.IDs, func(id uuid.UUID, _ int) string { return id.String() })
	customerIDs := lo.Map(filter.CustomerIDs, func(id uuid.UUID, _ int) string { return id.String() })

	rows, err := r.db.Query(ctx, `
		SELECT `+orderRequestColumns+`
		FROM order_requests
		WHERE ($1::uuid[] IS NULL OR id = ANY($1::uuid[]))
		  AND ($2::uuid[] IS NULL OR customer_id = ANY($2::uuid[]))
		  AND ($3::text[] IS NULL OR status = ANY($3::text[]))
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at <= $5)
		ORDER BY created_at DESC`,
		nilSliceIfEmpty(ids), nilSliceIfEmpty(customerIDs),
		nilSliceIfEmpty(statuses), createdAfter, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var result []domain.OrderRequest
	for rows.Next() {
		req, err := scanOrderRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrderRequest: %w", err)
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if err := r.loadAggregate(ctx, &result[i]); err != nil {
			return nil, fmt.Errorf("r.loadAggregate: %w", err)
		}
	}

	return result, nil
}

func (r *orderRequestRepository) UpdateOrderRequest(ctx context.Context, req domain.OrderRequest) error {
	if req.ID == uuid.Nil {
		return errors.New("orderRequestID is empty")
	}

	unpaid := lo.Map(req.UnpaidSellerIDs, func(id uuid.UUID, _ int) string { return id.String() })

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE order_requests SET
			status = $2, customer_status = $3, manager_status = $4,
			total_price = $5::numeric, paid_sum = $6::numeric,
			payment_type = $7, payment_date = $8,
			payment_postponed_at = $9, payment_postpone_accepted_at = $10,
			completion_date = $11, unpaid_seller_ids = $12::uuid[],
			customer_last_notified_at = $13, manager_last_notified_at = $14,
			updated_at = now()
		WHERE id = $1`,
		req.ID, string(req.Status), string(req.CustomerStatus), string(req.ManagerStatus),
		req.TotalPrice.String(), req.PaidSum.String(),
		nilIfEmpty(string(req.PaymentType)), req.PaymentDate,
		req.PaymentPostponedAt, req.PaymentPostponeAcceptedAt,
		req.CompletionDate, unpaid,
		req.CustomerLastNotifiedAt, req.ManagerLastNotifiedAt)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("order request[%s]: %w", req.ID, ErrNotFound)
	}

	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOrderRequest(row scannable) (domain.OrderRequest, error) {
	var (
		req                 domain.OrderRequest
		totalPrice, paidSum string
		paymentType         *string
		unpaidSellerIDs     []string
	)

	err := row.Scan(
		&req.ID, &req.Number, &req.CustomerID, &req.AddressID,
		(*string)(&req.Status), (*string)(&req.CustomerStatus), (*string)(&req.ManagerStatus),
		&totalPrice, &paidSum, &paymentType, &req.PaymentDate,
		&req.PaymentPostponedAt, &req.PaymentPostponeAcceptedAt, &req.CompletionDate,
		&unpaidSellerIDs, &req.CustomerLastNotifiedAt, &req.ManagerLastNotifiedAt,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return req, err
	}

	if req.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
		return req, fmt.Errorf("total_price[%s]: %w", totalPrice, err)
	}
	if req.PaidSum, err = decimal.NewFromString(paidSum); err != nil {
		return req, fmt.Errorf("paid_sum[%s]: %w", paidSum, err)
	}

	if paymentType != nil {
		req.PaymentType = domain.PaymentType(*paymentType)
	}

	for _, raw := range unpaidSellerIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return req, fmt.Errorf("unpaid_seller_ids[%s]: %w", raw, err)
		}
		req.UnpaidSellerIDs = append(req.UnpaidSellerIDs, id)
	}

	return req, nil
}

func scanOffer(row scannable) (domain.Offer, error) {
	var (
		o                     domain.Offer
		totalPrice, paidSum   string
		commissionPercent     string
		rewardID              *uuid.UUID
		rewardAmount          *string
		rewardSupplierPaid    *bool
		rewardSellerFeePaidAt *time.Time
	)

	err := row.Scan(
		&o.ID, &o.OrderRequestID, &o.SellerID, (*string)(&o.Status), (*string)(&o.SellerStatus),
		&o.OrderNumber, &totalPrice, &paidSum, &o.PaidAt,
		&o.ExpiresAt, &o.UpdateRequestedAt, &o.TransportCompanyID,
		&o.Pickup, &o.TrackNumber, &o.DepartureDate, &o.ReceivingDate,
		&o.PaymentPostponedAt, &o.PaymentPostponeAcceptedAt,
		&o.CreatedAt, &o.UpdatedAt,
		&o.Organization.ID, &o.Organization.Name, &o.Organization.INN,
		&o.Organization.Individual, &o.Organization.VATPayer,
		&commissionPercent, &o.Organization.SplitCommission,
		&rewardID, &rewardAmount, &rewardSupplierPaid, &rewardSellerFeePaidAt,
	)
	if err != nil {
		return o, err
	}

	if o.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
		return o, fmt.Errorf("total_price[%s]: %w", totalPrice, err)
	}
	if o.PaidSum, err = decimal.NewFromString(paidSum); err != nil {
		return o, fmt.Errorf("paid_sum[%s]: %w", paidSum, err)
	}
	if o.Organization.CommissionPercent, err = decimal.NewFromString(commissionPercent); err != nil {
		return o, fmt.Errorf("commission_percent[%s]: %w", commissionPercent, err)
	}

	if rewardID != nil {
		amount, err := decimal.NewFromString(lo.FromPtr(rewardAmount))
		if err != nil {
			return o, fmt.Errorf("reward amount[%s]: %w", lo.FromPtr(rewardAmount), err)
		}

		o.Reward = &domain.Reward{
			ID:              *rewardID,
			OfferID:         o.ID,
			Amount:          amount,
			SupplierPaid:    lo.FromPtr(rewardSupplierPaid),
			SellerFeePaidAt: rewardSellerFeePaidAt,
		}
	}

	return o, nil
}

func scanRequestProduct(row scannable) (domain.RequestProduct, error) {
	var (
		p         domain.RequestProduct
		unitPrice string
	)

	err := row.Scan(
		&p.ID, &p.OrderRequestID, &p.OfferID, &p.ProductID, &p.Description,
		&p.Quantity, &p.DeliveryQuantity, &p.Count, &unitPrice,
		&p.DeliveryTerm, &p.IsSelected, &p.StockBalanceID,
	)
	if err != nil {
		return p, err
	}

	if p.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return p, fmt.Errorf("unit_price[%s]: %w", unitPrice, err)
	}

	return p, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

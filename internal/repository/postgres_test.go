package repository_test

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("marketplace"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("tcpostgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	if err := repository.RunMigrations(connStr); err != nil {
		return container, "", fmt.Errorf("repository.RunMigrations: %w", err)
	}

	return container, connStr, nil
}

// Fixture inserts. The repositories only read and update the aggregates,
// creation belongs to the request/offer intake flows outside this module.

type fixtures struct {
	pool *pgxpool.Pool
}

func (f fixtures) user(ctx context.Context, role domain.Role) (uuid.UUID, error) {
	var id uuid.UUID
	err := f.pool.QueryRow(ctx,
		`INSERT INTO users (role) VALUES ($1) RETURNING id`, string(role)).Scan(&id)
	return id, err
}

func (f fixtures) organization(ctx context.Context, individual bool) (uuid.UUID, error) {
	var id uuid.UUID
	err := f.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, inn, individual, commission_percent)
		VALUES ($1, $2, $3, 10)
		RETURNING id`,
		gofakeit.Company(), gofakeit.DigitN(10), individual).Scan(&id)
	return id, err
}

func (f fixtures) orderRequest(ctx context.Context, customerID uuid.UUID) (domain.OrderRequest, error) {
	var req domain.OrderRequest
	req.Number = gofakeit.DigitN(6)
	req.CustomerID = customerID
	req.AddressID = uuid.MustParse(gofakeit.UUID())
	req.Status = domain.OrderRequestStatusRequested
	req.CustomerStatus = domain.DisplayRequested
	req.ManagerStatus = domain.DisplayOrderRequest
	req.TotalPrice = decimal.Zero
	req.PaidSum = decimal.Zero

	err := f.pool.QueryRow(ctx, `
		INSERT INTO order_requests (number, customer_id, address_id, status, customer_status, manager_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		req.Number, req.CustomerID, req.AddressID,
		string(req.Status), string(req.CustomerStatus), string(req.ManagerStatus),
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	return req, err
}

func (f fixtures) offer(ctx context.Context, orderRequestID, sellerID, orgID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := f.pool.QueryRow(ctx, `
		INSERT INTO offers (order_request_id, seller_id, organization_id, pickup)
		VALUES ($1, $2, $3, true)
		RETURNING id`,
		orderRequestID, sellerID, orgID).Scan(&id)
	return id, err
}

func (f fixtures) item(ctx context.Context, orderRequestID uuid.UUID, offerID *uuid.UUID, price int64, count int32, selected bool) (uuid.UUID, error) {
	var id uuid.UUID
	err := f.pool.QueryRow(ctx, `
		INSERT INTO request_products (order_request_id, offer_id, quantity, count, unit_price, is_selected)
		VALUES ($1, $2, $3, $3, $4::numeric, $5)
		RETURNING id`,
		orderRequestID, offerID, count, decimal.NewFromInt(price).String(), selected).Scan(&id)
	return id, err
}

func (f fixtures) stockBalance(ctx context.Context, price int64, amount int32) (uuid.UUID, uuid.UUID, error) {
	var productID uuid.UUID
	err := f.pool.QueryRow(ctx,
		`INSERT INTO products (name) VALUES ($1) RETURNING id`, gofakeit.ProductName()).Scan(&productID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	var balanceID uuid.UUID
	err = f.pool.QueryRow(ctx, `
		INSERT INTO stock_balances (product_id, price, amount)
		VALUES ($1, $2::numeric, $3)
		RETURNING id`,
		productID, decimal.NewFromInt(price).String(), amount).Scan(&balanceID)

	return balanceID, productID, err
}

func (f fixtures) deleteAll(ctx context.Context) error {
	for _, table := range []string{
		"notifications", "rewards", "request_products", "offers",
		"order_requests", "stock_balances", "products", "organizations", "users",
	} {
		if _, err := f.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/port"
)

type stockRepository struct {
	db DB
}

func NewStock(db DB) port.StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) Reserve(ctx context.Context, stockBalanceID uuid.UUID, quantity int32) error {
	if stockBalanceID == uuid.Nil {
		return errors.New("stockBalanceID is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE stock_balances
		SET amount = amount - $2, reserved = reserved + $2
		WHERE id = $1 AND amount >= $2`, stockBalanceID, quantity)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("stock balance[%s]: insufficient amount or %w", stockBalanceID, ErrNotFound)
	}

	return nil
}

func (r *stockRepository) ReleaseReservation(ctx context.Context, stockBalanceID uuid.UUID, quantity int32) error {
	if stockBalanceID == uuid.Nil {
		return errors.New("stockBalanceID is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE stock_balances
		SET amount = amount + $2, reserved = reserved - $2
		WHERE id = $1 AND reserved >= $2`, stockBalanceID, quantity)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("stock balance[%s]: reservation mismatch or %w", stockBalanceID, ErrNotFound)
	}

	return nil
}

func (r *stockRepository) Deduct(ctx context.Context, stockBalanceID uuid.UUID, quantity int32) error {
	if stockBalanceID == uuid.Nil {
		return errors.New("stockBalanceID is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE stock_balances
		SET reserved = reserved - $2
		WHERE id = $1 AND reserved >= $2`, stockBalanceID, quantity)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("stock balance[%s]: reservation mismatch or %w", stockBalanceID, ErrNotFound)
	}

	return nil
}

func (r *stockRepository) RefreshProductMinPrice(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return errors.New("productID is empty")
	}

	if _, err := r.db.Exec(ctx, `
		UPDATE products SET min_price = (
			SELECT MIN(price) FROM stock_balances
			WHERE product_id = $1 AND amount > 0
		)
		WHERE id = $1`, productID); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}

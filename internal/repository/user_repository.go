package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/partline/marketplace/internal/domain"
	"github.com/partline/marketplace/internal/port"
)

type userRepository struct {
	db DB
}

func NewUser(db DB) port.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ListManagerIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE role = $1`, string(domain.RoleEmployee))
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *userRepository) IncrementSalesNumber(ctx context.Context, sellerID uuid.UUID) error {
	if sellerID == uuid.Nil {
		return errors.New("sellerID is empty")
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE users SET sales_number = sales_number + 1 WHERE id = $1`, sellerID)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user[%s]: %w", sellerID, ErrNotFound)
	}

	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"payment-webhook-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository against the commerce platform's
// orders table. The engine only resolves ids and applies partial updates.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// FindIDByReference resolves an order id from its payment reference.
func (r *OrderRepo) FindIDByReference(ctx context.Context, orgID uuid.UUID, reference string) (*uuid.UUID, error) {
	query := `SELECT id FROM orders WHERE organization_id = $1 AND payment_reference = $2`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, orgID, reference).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order by reference: %w", err)
	}
	return &id, nil
}

// Update writes exactly the fields present in upd. Absent fields never
// appear in the statement, so an order's confirmed_at can only be written,
// never nulled, by reconciliation.
func (r *OrderRepo) Update(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, upd domain.OrderUpdate) error {
	if upd.IsZero() {
		return nil
	}

	var sets []string
	var args []any
	argIdx := 1

	if upd.PaymentStatus != nil {
		sets = append(sets, fmt.Sprintf("payment_status = $%d", argIdx))
		args = append(args, *upd.PaymentStatus)
		argIdx++
	}
	if upd.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *upd.Status)
		argIdx++
	}
	if upd.ConfirmedAt != nil {
		sets = append(sets, fmt.Sprintf("confirmed_at = $%d", argIdx))
		args = append(args, *upd.ConfirmedAt)
		argIdx++
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(sets, ", "), argIdx)
	args = append(args, orderID)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", orderID)
	}
	return nil
}

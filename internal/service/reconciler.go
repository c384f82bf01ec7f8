package service

import (
	"context"
	"fmt"
	"time"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderReconciler implements ports.OrderReconciler: one rule table, at most
// one rule fires per transition.
type orderReconciler struct {
	orderRepo ports.OrderRepository
	log       zerolog.Logger
}

// NewOrderReconciler creates a new order reconciler.
func NewOrderReconciler(orderRepo ports.OrderRepository, log zerolog.Logger) ports.OrderReconciler {
	return &orderReconciler{orderRepo: orderRepo, log: log}
}

// Apply writes the order fields mandated by the new transaction status.
// The update carries exactly the fields of the rule table: a voided
// transition never touches order status, and confirmed_at is present only on
// approved — never emitted as null.
func (r *orderReconciler) Apply(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status domain.TransactionStatus, at time.Time) (bool, error) {
	upd, notify := orderTransition(status, at)
	if upd.IsZero() {
		r.log.Debug().
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("no order transition for status")
		return false, nil
	}

	if err := r.orderRepo.Update(ctx, tx, orderID, upd); err != nil {
		return false, fmt.Errorf("update order %s: %w", orderID, err)
	}

	r.log.Info().
		Str("order_id", orderID.String()).
		Str("status", string(status)).
		Msg("order reconciled")

	return notify, nil
}

// orderTransition is the rule table from transaction status to order update.
func orderTransition(status domain.TransactionStatus, at time.Time) (domain.OrderUpdate, bool) {
	switch status {
	case domain.TransactionStatusApproved:
		paid := domain.OrderPaymentPaid
		confirmed := domain.OrderStatusConfirmed
		confirmedAt := at
		return domain.OrderUpdate{
			PaymentStatus: &paid,
			Status:        &confirmed,
			ConfirmedAt:   &confirmedAt,
		}, true

	case domain.TransactionStatusDeclined:
		failed := domain.OrderPaymentFailed
		cancelled := domain.OrderStatusCancelled
		return domain.OrderUpdate{
			PaymentStatus: &failed,
			Status:        &cancelled,
		}, false

	case domain.TransactionStatusVoided:
		refunded := domain.OrderPaymentRefunded
		return domain.OrderUpdate{
			PaymentStatus: &refunded,
		}, false

	default:
		// pending and error never touch the order
		return domain.OrderUpdate{}, false
	}
}

package domain

import "time"

// OrderPaymentStatus is the payment lifecycle of an order.
type OrderPaymentStatus string

const (
	OrderPaymentPending  OrderPaymentStatus = "pending"
	OrderPaymentPaid     OrderPaymentStatus = "paid"
	OrderPaymentFailed   OrderPaymentStatus = "failed"
	OrderPaymentRefunded OrderPaymentStatus = "refunded"
)

// OrderStatus is the order lifecycle state the engine is allowed to touch.
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderUpdate is a partial update to an order. Nil fields are omitted from
// the write entirely; a voided transition, for example, carries only
// PaymentStatus. ConfirmedAt is present only on approved transitions.
type OrderUpdate struct {
	PaymentStatus *OrderPaymentStatus
	Status        *OrderStatus
	ConfirmedAt   *time.Time
}

// IsZero reports whether the update carries no fields at all.
func (u OrderUpdate) IsZero() bool {
	return u.PaymentStatus == nil && u.Status == nil && u.ConfirmedAt == nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the canonical status vocabulary every provider's
// statuses map onto.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusDeclined TransactionStatus = "declined"
	TransactionStatusVoided   TransactionStatus = "voided"
	TransactionStatusError    TransactionStatus = "error"
)

// Transaction is the locally stored record of a payment attempt at a gateway.
// At most one row exists per (organization, provider, provider_transaction_id).
type Transaction struct {
	ID                    uuid.UUID         `json:"id"`
	OrganizationID        uuid.UUID         `json:"organization_id"`
	Provider              Provider          `json:"provider"`
	ProviderTransactionID string            `json:"provider_transaction_id"`
	ProviderReference     *string           `json:"provider_reference,omitempty"`
	Status                TransactionStatus `json:"status"`
	Amount                int64             `json:"amount"` // minor units
	Currency              string            `json:"currency"`
	OrderID               *uuid.UUID        `json:"order_id,omitempty"`
	ProviderResponse      []byte            `json:"-"` // last raw payload, kept verbatim for audit
	CompletedAt           *time.Time        `json:"completed_at,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// ApplyStatus sets the new status and maintains the completed_at rule:
// set on approved, cleared on every other status.
func (t *Transaction) ApplyStatus(status TransactionStatus, at time.Time) {
	t.Status = status
	t.UpdatedAt = at
	if status == TransactionStatusApproved {
		completed := at
		t.CompletedAt = &completed
	} else {
		t.CompletedAt = nil
	}
}

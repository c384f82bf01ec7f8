package ports

import (
	"context"
	"time"

	"payment-webhook-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SecretCipher handles AES-256-GCM encryption/decryption of stored gateway
// secret material.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// ProviderAdapter is the per-gateway strategy: typed payload decoding,
// signature verification and status normalization.
type ProviderAdapter interface {
	Provider() domain.Provider
	// Decode parses the envelope body into a canonical event, rejecting
	// missing required fields rather than coercing.
	Decode(env *domain.WebhookEnvelope) (*domain.CanonicalEvent, error)
	// Verify authenticates the envelope against the gateway config. It is a
	// pure function of envelope + config and never returns an error: any
	// decode failure, missing field or digest mismatch is false.
	Verify(env *domain.WebhookEnvelope, cfg *domain.GatewayConfig) bool
	// MapStatus translates the provider vocabulary into the canonical enum.
	// Total: unknown values map to pending so gateway retries make progress.
	MapStatus(raw string) domain.TransactionStatus
}

// EventCache is the Redis fast path for duplicate suppression. Best-effort:
// the database remains authoritative and callers treat errors as misses.
type EventCache interface {
	GetStatus(ctx context.Context, key string) (domain.TransactionStatus, bool, error)
	SetStatus(ctx context.Context, key string, status domain.TransactionStatus, ttl time.Duration) error
}

// SaleNotification is the order snapshot handed to the dispatcher when a
// transaction reaches approved.
type SaleNotification struct {
	OrganizationID        uuid.UUID
	OrderID               uuid.UUID
	TransactionID         uuid.UUID
	Provider              domain.Provider
	ProviderTransactionID string
	Reference             string
	Amount                int64
	Currency              string
	CompletedAt           time.Time
}

// NotificationDispatcher fires a sale notification. Best-effort: delivery
// failures are logged, never propagated to the webhook response.
type NotificationDispatcher interface {
	SendSaleNotification(ctx context.Context, n SaleNotification) error
}

// WebhookResult is the outcome of one processed webhook invocation.
type WebhookResult struct {
	Received    bool
	Duplicate   bool
	Transaction *domain.Transaction
}

// WebhookProcessor orchestrates one inbound webhook end to end.
type WebhookProcessor interface {
	Process(ctx context.Context, env *domain.WebhookEnvelope) (*WebhookResult, error)
}

// OrderReconciler propagates a transaction status change into the linked
// order. Returns whether a sale notification should fire.
type OrderReconciler interface {
	Apply(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status domain.TransactionStatus, at time.Time) (notify bool, err error)
}

// TokenService handles JWT operations for the ops API.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// ReportingService defines the ops dashboard read model.
type ReportingService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, orgID uuid.UUID) (*TransactionStats, error)
	ListNotifications(ctx context.Context, txID uuid.UUID) ([]domain.NotificationLog, error)
}

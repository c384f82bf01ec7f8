package ports

import (
	"context"

	"payment-webhook-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrganizationRepository resolves tenants. Read-only to the engine.
type OrganizationRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
}

// GatewayConfigRepository resolves per-provider gateway credentials.
// Read-only to the engine.
type GatewayConfigRepository interface {
	GetByOrgAndProvider(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.GatewayConfig, error)
}

// TransactionRepository defines persistence operations for transactions.
// Write methods accept pgx.Tx so the transaction and order writes of one
// webhook commit atomically.
type TransactionRepository interface {
	GetByProviderTransactionID(ctx context.Context, orgID uuid.UUID, provider domain.Provider, providerTxID string) (*domain.Transaction, error)
	GetByProviderReference(ctx context.Context, orgID uuid.UUID, provider domain.Provider, reference string) (*domain.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	Insert(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	// Update overwrites status, provider id, response and timestamps
	// unconditionally. Used by the reference-claim path.
	Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	// UpdateStatusIf applies t's new state only while the stored status still
	// equals expected. Returns false (and writes nothing) on conflict, letting
	// the caller re-read and decide.
	UpdateStatusIf(ctx context.Context, tx pgx.Tx, t *domain.Transaction, expected domain.TransactionStatus) (bool, error)
	// Reporting queries
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	GetStats(ctx context.Context, orgID uuid.UUID) (*TransactionStats, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	OrganizationID uuid.UUID
	Provider       *domain.Provider
	Status         *domain.TransactionStatus
	Page           int
	PageSize       int
}

// TransactionStats holds per-status aggregates for the ops dashboard.
type TransactionStats struct {
	TotalTransactions int64
	Approved          int64
	Declined          int64
	Voided            int64
	Errored           int64
	Pending           int64
	ApprovedAmount    int64 // sum of approved amounts, minor units
}

// OrderRepository is the engine's narrow view of the external order store:
// it may resolve an order id from a payment reference and apply partial
// updates, nothing else.
type OrderRepository interface {
	FindIDByReference(ctx context.Context, orgID uuid.UUID, reference string) (*uuid.UUID, error)
	// Update writes exactly the fields present in upd. Absent fields must not
	// appear in the statement at all.
	Update(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, upd domain.OrderUpdate) error
}

// NotificationLogRepository persists outbound delivery attempts.
type NotificationLogRepository interface {
	Create(ctx context.Context, log *domain.NotificationLog) error
	Update(ctx context.Context, log *domain.NotificationLog) error
	ListByTransactionID(ctx context.Context, txID uuid.UUID) ([]domain.NotificationLog, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Organization Repo ---

type inMemoryOrganizationRepo struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]*domain.Organization
}

func newInMemoryOrganizationRepo() *inMemoryOrganizationRepo {
	return &inMemoryOrganizationRepo{orgs: make(map[uuid.UUID]*domain.Organization)}
}

func (r *inMemoryOrganizationRepo) add(org *domain.Organization) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orgs[org.ID] = org
}

func (r *inMemoryOrganizationRepo) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, org := range r.orgs {
		if org.Slug == slug {
			copied := *org
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrganizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	org, ok := r.orgs[id]
	if !ok {
		return nil, nil
	}
	copied := *org
	return &copied, nil
}

// --- In-Memory Gateway Config Repo ---

type inMemoryGatewayConfigRepo struct {
	mu      sync.RWMutex
	configs []*domain.GatewayConfig
}

func newInMemoryGatewayConfigRepo() *inMemoryGatewayConfigRepo {
	return &inMemoryGatewayConfigRepo{}
}

func (r *inMemoryGatewayConfigRepo) add(cfg *domain.GatewayConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, cfg)
}

func (r *inMemoryGatewayConfigRepo) GetByOrgAndProvider(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.GatewayConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cfg := range r.configs {
		if cfg.OrganizationID == orgID && cfg.Provider == provider {
			copied := *cfg
			return &copied, nil
		}
	}
	return nil, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) GetByProviderTransactionID(ctx context.Context, orgID uuid.UUID, provider domain.Provider, providerTxID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.OrganizationID == orgID && t.Provider == provider && t.ProviderTransactionID == providerTxID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetByProviderReference(ctx context.Context, orgID uuid.UUID, provider domain.Provider, reference string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.OrganizationID == orgID && t.Provider == provider &&
			t.ProviderReference != nil && *t.ProviderReference == reference {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (r *inMemoryTransactionRepo) Insert(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.transactions {
		if existing.OrganizationID == t.OrganizationID && existing.Provider == t.Provider &&
			existing.ProviderTransactionID == t.ProviderTransactionID {
			return fmt.Errorf("duplicate provider transaction id %s", t.ProviderTransactionID)
		}
	}
	copied := *t
	r.transactions[t.ID] = &copied
	return nil
}

func (r *inMemoryTransactionRepo) Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[t.ID]; !ok {
		return fmt.Errorf("transaction not found")
	}
	copied := *t
	r.transactions[t.ID] = &copied
	return nil
}

// UpdateStatusIf mirrors the conditional UPDATE of the SQL implementation:
// the write applies only while the stored status still equals expected.
func (r *inMemoryTransactionRepo) UpdateStatusIf(ctx context.Context, tx pgx.Tx, t *domain.Transaction, expected domain.TransactionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transactions[t.ID]
	if !ok || stored.Status != expected {
		return false, nil
	}
	copied := *t
	r.transactions[t.ID] = &copied
	return true, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.OrganizationID != params.OrganizationID {
			continue
		}
		if params.Provider != nil && t.Provider != *params.Provider {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		result = append(result, *t)
	}
	total := int64(len(result))

	// Simple pagination
	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *inMemoryTransactionRepo) GetStats(ctx context.Context, orgID uuid.UUID) (*ports.TransactionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.TransactionStats{}
	for _, t := range r.transactions {
		if t.OrganizationID != orgID {
			continue
		}
		stats.TotalTransactions++
		switch t.Status {
		case domain.TransactionStatusApproved:
			stats.Approved++
			stats.ApprovedAmount += t.Amount
		case domain.TransactionStatusDeclined:
			stats.Declined++
		case domain.TransactionStatusVoided:
			stats.Voided++
		case domain.TransactionStatusError:
			stats.Errored++
		case domain.TransactionStatusPending:
			stats.Pending++
		}
	}
	return stats, nil
}

// --- In-Memory Order Repo ---

// order is the slice of the external commerce order the engine may touch.
type order struct {
	ID               uuid.UUID
	OrganizationID   uuid.UUID
	PaymentReference string
	PaymentStatus    domain.OrderPaymentStatus
	Status           string
	ConfirmedAt      *time.Time
}

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*order)}
}

func (r *inMemoryOrderRepo) add(o *order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
}

func (r *inMemoryOrderRepo) get(id uuid.UUID) *order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil
	}
	copied := *o
	return &copied
}

func (r *inMemoryOrderRepo) FindIDByReference(ctx context.Context, orgID uuid.UUID, reference string) (*uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.OrganizationID == orgID && o.PaymentReference == reference {
			id := o.ID
			return &id, nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrderRepo) Update(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, upd domain.OrderUpdate) error {
	if upd.IsZero() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order not found")
	}
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
	}
	if upd.Status != nil {
		o.Status = string(*upd.Status)
	}
	if upd.ConfirmedAt != nil {
		at := *upd.ConfirmedAt
		o.ConfirmedAt = &at
	}
	return nil
}

// --- In-Memory Notification Log Repo ---

type inMemoryNotificationLogRepo struct {
	mu   sync.RWMutex
	logs map[uuid.UUID]*domain.NotificationLog
}

func newInMemoryNotificationLogRepo() *inMemoryNotificationLogRepo {
	return &inMemoryNotificationLogRepo{logs: make(map[uuid.UUID]*domain.NotificationLog)}
}

func (r *inMemoryNotificationLogRepo) Create(ctx context.Context, log *domain.NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *log
	r.logs[log.ID] = &copied
	return nil
}

func (r *inMemoryNotificationLogRepo) Update(ctx context.Context, log *domain.NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[log.ID]; !ok {
		return fmt.Errorf("notification log not found")
	}
	copied := *log
	r.logs[log.ID] = &copied
	return nil
}

func (r *inMemoryNotificationLogRepo) ListByTransactionID(ctx context.Context, txID uuid.UUID) ([]domain.NotificationLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.NotificationLog
	for _, l := range r.logs {
		if l.TransactionID == txID {
			result = append(result, *l)
		}
	}
	return result, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

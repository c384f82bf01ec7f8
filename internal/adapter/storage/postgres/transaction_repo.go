package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, organization_id, provider, provider_transaction_id, provider_reference,
		status, amount, currency, order_id, provider_response, completed_at, created_at, updated_at`

// GetByProviderTransactionID fetches a transaction by the gateway's canonical id.
func (r *TransactionRepo) GetByProviderTransactionID(ctx context.Context, orgID uuid.UUID, provider domain.Provider, providerTxID string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions
		WHERE organization_id = $1 AND provider = $2 AND provider_transaction_id = $3`, transactionColumns)

	return r.scanTransaction(r.pool.QueryRow(ctx, query, orgID, provider, providerTxID))
}

// GetByProviderReference fetches a transaction by the merchant-side payment
// reference.
func (r *TransactionRepo) GetByProviderReference(ctx context.Context, orgID uuid.UUID, provider domain.Provider, reference string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions
		WHERE organization_id = $1 AND provider = $2 AND provider_reference = $3`, transactionColumns)

	return r.scanTransaction(r.pool.QueryRow(ctx, query, orgID, provider, reference))
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)
	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// Insert creates a new transaction within a database transaction.
func (r *TransactionRepo) Insert(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, organization_id, provider, provider_transaction_id, provider_reference,
		status, amount, currency, order_id, provider_response, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.OrganizationID, t.Provider, t.ProviderTransactionID, t.ProviderReference,
		t.Status, t.Amount, t.Currency, t.OrderID, t.ProviderResponse, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields unconditionally. Used by the
// reference-claim path.
func (r *TransactionRepo) Update(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `UPDATE transactions
		SET provider_transaction_id = $1, status = $2, amount = $3, currency = $4,
			provider_response = $5, completed_at = $6, updated_at = $7
		WHERE id = $8`

	tag, err := tx.Exec(ctx, query,
		t.ProviderTransactionID, t.Status, t.Amount, t.Currency,
		t.ProviderResponse, t.CompletedAt, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", t.ID)
	}
	return nil
}

// UpdateStatusIf applies the new state only while the stored status still
// equals expected. Zero rows affected is a conflict, not an error.
func (r *TransactionRepo) UpdateStatusIf(ctx context.Context, tx pgx.Tx, t *domain.Transaction, expected domain.TransactionStatus) (bool, error) {
	query := `UPDATE transactions
		SET status = $1, provider_response = $2, completed_at = $3, updated_at = $4
		WHERE id = $5 AND status = $6`

	tag, err := tx.Exec(ctx, query,
		t.Status, t.ProviderResponse, t.CompletedAt, t.UpdatedAt, t.ID, expected,
	)
	if err != nil {
		return false, fmt.Errorf("conditional update transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List fetches transactions with filtering and pagination.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("organization_id = $%d", argIdx))
	args = append(args, params.OrganizationID)
	argIdx++

	if params.Provider != nil {
		conditions = append(conditions, fmt.Sprintf("provider = $%d", argIdx))
		args = append(args, *params.Provider)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, transactionColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.OrganizationID, &t.Provider, &t.ProviderTransactionID, &t.ProviderReference,
			&t.Status, &t.Amount, &t.Currency, &t.OrderID, &t.ProviderResponse, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// GetStats retrieves per-status aggregates for an organization.
func (r *TransactionRepo) GetStats(ctx context.Context, orgID uuid.UUID) (*ports.TransactionStats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'declined') AS declined,
		COUNT(*) FILTER (WHERE status = 'voided') AS voided,
		COUNT(*) FILTER (WHERE status = 'error') AS errored,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COALESCE(SUM(amount) FILTER (WHERE status = 'approved'), 0) AS approved_amount
		FROM transactions WHERE organization_id = $1`

	stats := &ports.TransactionStats{}
	err := r.pool.QueryRow(ctx, query, orgID).Scan(
		&stats.TotalTransactions, &stats.Approved, &stats.Declined,
		&stats.Voided, &stats.Errored, &stats.Pending, &stats.ApprovedAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction stats: %w", err)
	}
	return stats, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.OrganizationID, &t.Provider, &t.ProviderTransactionID, &t.ProviderReference,
		&t.Status, &t.Amount, &t.Currency, &t.OrderID, &t.ProviderResponse, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

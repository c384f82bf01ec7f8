package postgres

import (
	"context"
	"fmt"

	"payment-webhook-engine/internal/core/domain"

	"github.com/google/uuid"
)

// NotificationLogRepo implements ports.NotificationLogRepository.
type NotificationLogRepo struct {
	pool Pool
}

// NewNotificationLogRepo creates a new NotificationLogRepo.
func NewNotificationLogRepo(pool Pool) *NotificationLogRepo {
	return &NotificationLogRepo{pool: pool}
}

// Create inserts a new delivery log entry.
func (r *NotificationLogRepo) Create(ctx context.Context, l *domain.NotificationLog) error {
	query := `INSERT INTO notification_logs (id, transaction_id, organization_id, url, payload,
		http_status, attempt, status, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.TransactionID, l.OrganizationID, l.URL, l.Payload,
		l.HTTPStatus, l.Attempt, l.Status, l.LastError, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification log: %w", err)
	}
	return nil
}

// Update records the outcome of a delivery attempt.
func (r *NotificationLogRepo) Update(ctx context.Context, l *domain.NotificationLog) error {
	query := `UPDATE notification_logs
		SET http_status = $1, attempt = $2, status = $3, last_error = $4, updated_at = $5
		WHERE id = $6`

	_, err := r.pool.Exec(ctx, query,
		l.HTTPStatus, l.Attempt, l.Status, l.LastError, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update notification log: %w", err)
	}
	return nil
}

// ListByTransactionID fetches the delivery log for one transaction, newest
// first.
func (r *NotificationLogRepo) ListByTransactionID(ctx context.Context, txID uuid.UUID) ([]domain.NotificationLog, error) {
	query := `SELECT id, transaction_id, organization_id, url, payload,
		http_status, attempt, status, last_error, created_at, updated_at
		FROM notification_logs WHERE transaction_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, txID)
	if err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.NotificationLog
	for rows.Next() {
		l := domain.NotificationLog{}
		err := rows.Scan(
			&l.ID, &l.TransactionID, &l.OrganizationID, &l.URL, &l.Payload,
			&l.HTTPStatus, &l.Attempt, &l.Status, &l.LastError, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification log rows: %w", err)
	}
	return logs, nil
}

package postgres

import (
	"context"
	"testing"
	"time"

	"payment-webhook-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotificationLog() *domain.NotificationLog {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.NotificationLog{
		ID:             uuid.New(),
		TransactionID:  uuid.New(),
		OrganizationID: uuid.New(),
		URL:            "https://hooks.acme.test/sales",
		Payload:        `{"event_type":"SALE_COMPLETED"}`,
		Attempt:        0,
		Status:         domain.NotificationStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestNotificationLogRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationLogRepo(mock)
	l := newTestNotificationLog()

	mock.ExpectExec("INSERT INTO notification_logs").
		WithArgs(
			l.ID, l.TransactionID, l.OrganizationID, l.URL, l.Payload,
			l.HTTPStatus, l.Attempt, l.Status, l.LastError, l.CreatedAt, l.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationLogRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationLogRepo(mock)
	l := newTestNotificationLog()
	status := 200
	l.HTTPStatus = &status
	l.Attempt = 1
	l.Status = domain.NotificationStatusDelivered

	mock.ExpectExec("UPDATE notification_logs").
		WithArgs(l.HTTPStatus, l.Attempt, l.Status, l.LastError, l.UpdatedAt, l.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.Update(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationLogRepo_ListByTransactionID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationLogRepo(mock)
	l := newTestNotificationLog()

	mock.ExpectQuery("SELECT .+ FROM notification_logs").
		WithArgs(l.TransactionID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "transaction_id", "organization_id", "url", "payload",
			"http_status", "attempt", "status", "last_error", "created_at", "updated_at",
		}).AddRow(
			l.ID, l.TransactionID, l.OrganizationID, l.URL, l.Payload,
			l.HTTPStatus, l.Attempt, l.Status, l.LastError, l.CreatedAt, l.UpdatedAt,
		))

	logs, err := repo.ListByTransactionID(context.Background(), l.TransactionID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, l.ID, logs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

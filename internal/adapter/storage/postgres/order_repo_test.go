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

func TestOrderRepo_FindIDByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	orgID := uuid.New()
	orderID := uuid.New()

	mock.ExpectQuery("SELECT id FROM orders").
		WithArgs(orgID, "REF001").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(orderID))

	result, err := repo.FindIDByReference(context.Background(), orgID, "REF001")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, orderID, *result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_FindIDByReference_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectQuery("SELECT id FROM orders").
		WithArgs(pgxmock.AnyArg(), "REF-unknown").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	result, err := repo.FindIDByReference(context.Background(), uuid.New(), "REF-unknown")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestOrderRepo_Update_AllFields(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	orderID := uuid.New()
	paid := domain.OrderPaymentPaid
	confirmed := domain.OrderStatusConfirmed
	confirmedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET payment_status = \$1, status = \$2, confirmed_at = \$3, updated_at = NOW\(\) WHERE id = \$4`).
		WithArgs(paid, confirmed, confirmedAt, orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), dbTx, orderID, domain.OrderUpdate{
		PaymentStatus: &paid,
		Status:        &confirmed,
		ConfirmedAt:   &confirmedAt,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Update_PaymentStatusOnly(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	orderID := uuid.New()
	refunded := domain.OrderPaymentRefunded

	mock.ExpectBegin()
	// Only payment_status appears in the statement: status and confirmed_at
	// stay untouched on the row.
	mock.ExpectExec(`UPDATE orders SET payment_status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(refunded, orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), dbTx, orderID, domain.OrderUpdate{PaymentStatus: &refunded})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Update_EmptyUpdateIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)

	mock.ExpectBegin()
	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), dbTx, uuid.New(), domain.OrderUpdate{})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Update_UnknownOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	paid := domain.OrderPaymentPaid

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").
		WithArgs(paid, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), dbTx, uuid.New(), domain.OrderUpdate{PaymentStatus: &paid})
	assert.Error(t, err)
}

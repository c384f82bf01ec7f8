package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want Provider
		ok   bool
	}{
		{"wompi", ProviderWompi, true},
		{"epayco", ProviderEpayco, true},
		{"stripe", "", false},
		{"", "", false},
		{"WOMPI", "", false}, // path segment is case-sensitive
	}
	for _, tt := range tests {
		got, ok := ParseProvider(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTransaction_ApplyStatus_Approved(t *testing.T) {
	tx := &Transaction{Status: TransactionStatusPending}
	now := time.Now().UTC()

	tx.ApplyStatus(TransactionStatusApproved, now)

	assert.Equal(t, TransactionStatusApproved, tx.Status)
	assert.Equal(t, now, tx.UpdatedAt)
	if assert.NotNil(t, tx.CompletedAt) {
		assert.Equal(t, now, *tx.CompletedAt)
	}
}

func TestTransaction_ApplyStatus_ClearsCompletedAt(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	tx := &Transaction{Status: TransactionStatusApproved, CompletedAt: &past}

	tx.ApplyStatus(TransactionStatusVoided, time.Now().UTC())

	assert.Equal(t, TransactionStatusVoided, tx.Status)
	assert.Nil(t, tx.CompletedAt)
}

func TestOrderUpdate_IsZero(t *testing.T) {
	assert.True(t, OrderUpdate{}.IsZero())

	paid := OrderPaymentPaid
	assert.False(t, OrderUpdate{PaymentStatus: &paid}.IsZero())
}

func TestEventCacheKey(t *testing.T) {
	orgID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	key := EventCacheKey(orgID, ProviderWompi, "TX-1")
	assert.Equal(t, "11111111-2222-3333-4444-555555555555:wompi:TX-1", key)
}

func TestGatewayConfig_HasIntegritySecret(t *testing.T) {
	assert.False(t, (&GatewayConfig{}).HasIntegritySecret())
	assert.True(t, (&GatewayConfig{IntegritySecretEnc: "enc"}).HasIntegritySecret())
}

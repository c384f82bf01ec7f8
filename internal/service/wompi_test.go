package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"payment-webhook-engine/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wompiIntegritySecret = "test_integrity_secret_123"

func newWompiTestAdapter(t *testing.T) (*wompiAdapter, *domain.GatewayConfig) {
	t.Helper()
	cipher, err := NewAESSecretCipher(testAESKey)
	require.NoError(t, err)

	secretEnc, err := cipher.Encrypt(wompiIntegritySecret)
	require.NoError(t, err)

	cfg := &domain.GatewayConfig{
		Provider:           domain.ProviderWompi,
		PublicKey:          "pub_test_wompi",
		IntegritySecretEnc: secretEnc,
		RequireSignature:   true,
	}
	return &wompiAdapter{cipher: cipher}, cfg
}

// wompiBody builds a payload whose checksum is valid for the given secret.
func wompiBody(txID, status string, amountInCents, timestamp int64, secret string) []byte {
	concat := fmt.Sprintf("%s%s%d%d%s", txID, status, amountInCents, timestamp, secret)
	sum := sha256.Sum256([]byte(concat))
	checksum := hex.EncodeToString(sum[:])

	return []byte(fmt.Sprintf(`{
		"event": "transaction.updated",
		"data": {"transaction": {
			"id": %q, "reference": "REF001", "status": %q,
			"amount_in_cents": %d, "currency": "COP",
			"payment_method_type": "CARD", "created_at": "2024-01-01T00:00:00Z"
		}},
		"signature": {"checksum": %q, "properties": ["transaction.id","transaction.status","transaction.amount_in_cents"]},
		"timestamp": %d
	}`, txID, status, amountInCents, checksum, timestamp))
}

func TestWompiAdapter_Decode(t *testing.T) {
	a, _ := newWompiTestAdapter(t)
	body := wompiBody("TX123456789", "APPROVED", 50000, 1700000000, wompiIntegritySecret)

	event, err := a.Decode(&domain.WebhookEnvelope{
		Provider:    domain.ProviderWompi,
		ContentType: domain.ContentTypeJSON,
		Body:        body,
	})
	require.NoError(t, err)

	assert.Equal(t, "TX123456789", event.ProviderTransactionID)
	assert.Equal(t, "REF001", event.ProviderReference)
	assert.Equal(t, "APPROVED", event.RawStatus)
	assert.Equal(t, int64(50000), event.Amount)
	assert.Equal(t, "COP", event.Currency)
	assert.Equal(t, body, event.RawPayload)
}

func TestWompiAdapter_Decode_MissingRequiredFields(t *testing.T) {
	a, _ := newWompiTestAdapter(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"missing id", `{"data":{"transaction":{"status":"APPROVED"}},"timestamp":1}`},
		{"missing status", `{"data":{"transaction":{"id":"TX1"}},"timestamp":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Decode(&domain.WebhookEnvelope{
				ContentType: domain.ContentTypeJSON,
				Body:        []byte(tt.body),
			})
			assert.Error(t, err)
		})
	}
}

func TestWompiAdapter_Decode_RejectsFormBody(t *testing.T) {
	a, _ := newWompiTestAdapter(t)
	_, err := a.Decode(&domain.WebhookEnvelope{
		ContentType: domain.ContentTypeForm,
		Body:        []byte("id=TX1"),
	})
	assert.Error(t, err)
}

func TestWompiAdapter_Verify_ValidChecksum(t *testing.T) {
	a, cfg := newWompiTestAdapter(t)
	body := wompiBody("TX123456789", "APPROVED", 50000, 1700000000, wompiIntegritySecret)

	ok := a.Verify(&domain.WebhookEnvelope{ContentType: domain.ContentTypeJSON, Body: body}, cfg)
	assert.True(t, ok)
}

func TestWompiAdapter_Verify_ChecksumCaseInsensitive(t *testing.T) {
	a, cfg := newWompiTestAdapter(t)

	concat := fmt.Sprintf("TX1APPROVED%d%d%s", int64(100), int64(42), wompiIntegritySecret)
	sum := sha256.Sum256([]byte(concat))
	upperChecksum := strings.ToUpper(hex.EncodeToString(sum[:]))

	body := []byte(fmt.Sprintf(`{
		"data": {"transaction": {"id": "TX1", "status": "APPROVED", "amount_in_cents": 100}},
		"signature": {"checksum": %q},
		"timestamp": 42
	}`, upperChecksum))

	assert.True(t, a.Verify(&domain.WebhookEnvelope{ContentType: domain.ContentTypeJSON, Body: body}, cfg))
}

func TestWompiAdapter_Verify_WrongSecret(t *testing.T) {
	a, cfg := newWompiTestAdapter(t)
	body := wompiBody("TX1", "APPROVED", 100, 42, "some-other-secret")

	assert.False(t, a.Verify(&domain.WebhookEnvelope{ContentType: domain.ContentTypeJSON, Body: body}, cfg))
}

func TestWompiAdapter_Verify_TamperedChecksum(t *testing.T) {
	a, cfg := newWompiTestAdapter(t)
	body := []byte(`{
		"data": {"transaction": {"id": "TX1", "status": "APPROVED", "amount_in_cents": 100}},
		"signature": {"checksum": "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"},
		"timestamp": 42
	}`)

	assert.False(t, a.Verify(&domain.WebhookEnvelope{ContentType: domain.ContentTypeJSON, Body: body}, cfg))
}

func TestWompiAdapter_Verify_MissingChecksum(t *testing.T) {
	a, cfg := newWompiTestAdapter(t)
	body := []byte(`{"data":{"transaction":{"id":"TX1","status":"APPROVED"}},"timestamp":42}`)

	assert.False(t, a.Verify(&domain.WebhookEnvelope{ContentType: domain.ContentTypeJSON, Body: body}, cfg))
}

func TestWompiAdapter_Verify_NoSecretPolicy(t *testing.T) {
	a, _ := newWompiTestAdapter(t)
	body := []byte(`{"data":{"transaction":{"id":"TX1","status":"APPROVED"}},"timestamp":42}`)
	env := &domain.WebhookEnvelope{ContentType: domain.ContentTypeJSON, Body: body}

	// Fail-open: no secret configured, signatures not required.
	relaxed := &domain.GatewayConfig{Provider: domain.ProviderWompi, RequireSignature: false}
	assert.True(t, a.Verify(env, relaxed))

	// Fail-closed: signatures required but no secret to check against.
	strict := &domain.GatewayConfig{Provider: domain.ProviderWompi, RequireSignature: true}
	assert.False(t, a.Verify(env, strict))
}

func TestWompiAdapter_MapStatus(t *testing.T) {
	a, _ := newWompiTestAdapter(t)

	tests := []struct {
		raw  string
		want domain.TransactionStatus
	}{
		{"APPROVED", domain.TransactionStatusApproved},
		{"DECLINED", domain.TransactionStatusDeclined},
		{"VOIDED", domain.TransactionStatusVoided},
		{"ERROR", domain.TransactionStatusError},
		{"PENDING", domain.TransactionStatusPending},
		{"SOMETHING_NEW", domain.TransactionStatusPending},
		{"", domain.TransactionStatusPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.MapStatus(tt.raw), tt.raw)
	}
}

func TestDigestEqual(t *testing.T) {
	assert.True(t, digestEqual("abc123", "ABC123"))
	assert.False(t, digestEqual("abc123", "abc124"))
	assert.False(t, digestEqual("abc123", "abc1234"))
}

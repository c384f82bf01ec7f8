package service

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"testing"

	"payment-webhook-engine/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	epaycoPublicKey  = "pub_epayco_test"
	epaycoPrivateKey = "priv_epayco_test"
)

func newEpaycoTestAdapter(t *testing.T) (*epaycoAdapter, *domain.GatewayConfig) {
	t.Helper()
	cipher, err := NewAESSecretCipher(testAESKey)
	require.NoError(t, err)

	privEnc, err := cipher.Encrypt(epaycoPrivateKey)
	require.NoError(t, err)

	cfg := &domain.GatewayConfig{
		Provider:         domain.ProviderEpayco,
		PublicKey:        epaycoPublicKey,
		PrivateKeyEnc:    privEnc,
		RequireSignature: true,
	}
	return &epaycoAdapter{cipher: cipher}, cfg
}

func epaycoSignature(refPayco, txID, amount, currency string) string {
	concat := epaycoPublicKey + epaycoPrivateKey + refPayco + txID + amount + currency
	sum := sha256.Sum256([]byte(concat))
	return hex.EncodeToString(sum[:])
}

func epaycoFormBody(refPayco, txID, invoice, amount, currency, code string) []byte {
	v := url.Values{}
	v.Set("x_ref_payco", refPayco)
	v.Set("x_transaction_id", txID)
	v.Set("x_id_invoice", invoice)
	v.Set("x_amount", amount)
	v.Set("x_currency_code", currency)
	v.Set("x_cod_response", code)
	v.Set("x_signature", epaycoSignature(refPayco, txID, amount, currency))
	v.Set("x_bank_name", "BANCO TEST")
	v.Set("x_customer_email", "buyer@example.com")
	return []byte(v.Encode())
}

func TestEpaycoAdapter_Decode_Form(t *testing.T) {
	a, _ := newEpaycoTestAdapter(t)
	body := epaycoFormBody("EP123", "TX999", "INV-42", "50000", "COP", "1")

	event, err := a.Decode(&domain.WebhookEnvelope{
		Provider:    domain.ProviderEpayco,
		ContentType: domain.ContentTypeForm,
		Body:        body,
	})
	require.NoError(t, err)

	assert.Equal(t, "TX999", event.ProviderTransactionID)
	assert.Equal(t, "INV-42", event.ProviderReference)
	assert.Equal(t, "1", event.RawStatus)
	assert.Equal(t, int64(50000), event.Amount)
	assert.Equal(t, "COP", event.Currency)
	assert.Equal(t, body, event.RawPayload)
}

func TestEpaycoAdapter_Decode_JSON(t *testing.T) {
	a, _ := newEpaycoTestAdapter(t)
	// x_transaction_id and x_cod_response unquoted, as ePayco sometimes sends.
	body := []byte(`{
		"x_ref_payco": "EP123",
		"x_transaction_id": 4242,
		"x_id_invoice": "INV-42",
		"x_amount": "50000.00",
		"x_currency_code": "COP",
		"x_cod_response": 2,
		"x_signature": "irrelevant-for-decode"
	}`)

	event, err := a.Decode(&domain.WebhookEnvelope{
		ContentType: domain.ContentTypeJSON,
		Body:        body,
	})
	require.NoError(t, err)

	assert.Equal(t, "4242", event.ProviderTransactionID)
	assert.Equal(t, "2", event.RawStatus)
	assert.Equal(t, int64(50000), event.Amount)
}

func TestEpaycoAdapter_Decode_MissingField(t *testing.T) {
	a, _ := newEpaycoTestAdapter(t)

	v := url.Values{}
	v.Set("x_ref_payco", "EP123")
	// no x_transaction_id
	v.Set("x_amount", "100")
	v.Set("x_currency_code", "COP")
	v.Set("x_cod_response", "1")

	_, err := a.Decode(&domain.WebhookEnvelope{
		ContentType: domain.ContentTypeForm,
		Body:        []byte(v.Encode()),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x_transaction_id")
}

func TestEpaycoAdapter_Decode_BadJSON(t *testing.T) {
	a, _ := newEpaycoTestAdapter(t)
	_, err := a.Decode(&domain.WebhookEnvelope{
		ContentType: domain.ContentTypeJSON,
		Body:        []byte(`not json at all`),
	})
	assert.Error(t, err)
}

func TestEpaycoAdapter_Verify_Valid(t *testing.T) {
	a, cfg := newEpaycoTestAdapter(t)
	body := epaycoFormBody("EP123", "TX999", "INV-42", "50000", "COP", "1")

	assert.True(t, a.Verify(&domain.WebhookEnvelope{ContentType: domain.ContentTypeForm, Body: body}, cfg))
}

func TestEpaycoAdapter_Verify_TamperedAmount(t *testing.T) {
	a, cfg := newEpaycoTestAdapter(t)

	v := url.Values{}
	v.Set("x_ref_payco", "EP123")
	v.Set("x_transaction_id", "TX999")
	v.Set("x_amount", "1") // signature was computed over 50000
	v.Set("x_currency_code", "COP")
	v.Set("x_cod_response", "1")
	v.Set("x_signature", epaycoSignature("EP123", "TX999", "50000", "COP"))

	assert.False(t, a.Verify(&domain.WebhookEnvelope{ContentType: domain.ContentTypeForm, Body: []byte(v.Encode())}, cfg))
}

func TestEpaycoAdapter_Verify_MissingSignature(t *testing.T) {
	a, cfg := newEpaycoTestAdapter(t)

	v := url.Values{}
	v.Set("x_ref_payco", "EP123")
	v.Set("x_transaction_id", "TX999")
	v.Set("x_amount", "50000")
	v.Set("x_currency_code", "COP")

	assert.False(t, a.Verify(&domain.WebhookEnvelope{ContentType: domain.ContentTypeForm, Body: []byte(v.Encode())}, cfg))
}

func TestEpaycoAdapter_Verify_NoKeyPolicy(t *testing.T) {
	a, _ := newEpaycoTestAdapter(t)
	body := epaycoFormBody("EP123", "TX999", "INV-42", "50000", "COP", "1")
	env := &domain.WebhookEnvelope{ContentType: domain.ContentTypeForm, Body: body}

	relaxed := &domain.GatewayConfig{Provider: domain.ProviderEpayco, RequireSignature: false}
	assert.True(t, a.Verify(env, relaxed))

	strict := &domain.GatewayConfig{Provider: domain.ProviderEpayco, RequireSignature: true}
	assert.False(t, a.Verify(env, strict))
}

func TestEpaycoAdapter_MapStatus(t *testing.T) {
	a, _ := newEpaycoTestAdapter(t)

	tests := []struct {
		raw  string
		want domain.TransactionStatus
	}{
		{"1", domain.TransactionStatusApproved},
		{"2", domain.TransactionStatusDeclined},
		{"3", domain.TransactionStatusPending},
		{"4", domain.TransactionStatusError},
		{"6", domain.TransactionStatusVoided},
		{"7", domain.TransactionStatusPending},
		{"abc", domain.TransactionStatusPending},
		{"", domain.TransactionStatusPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.MapStatus(tt.raw), tt.raw)
	}
}

func TestParseEpaycoAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"50000", 50000, false},
		{"50000.00", 50000, false},
		{"99.9", 100, false},
		{"150.75", 151, false},
		{"150.4", 150, false},
		{"-150.75", -151, false},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseEpaycoAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestAdapterRegistry_For(t *testing.T) {
	cipher, err := NewAESSecretCipher(testAESKey)
	require.NoError(t, err)
	reg := NewAdapterRegistry(cipher)

	wompi, ok := reg.For(domain.ProviderWompi)
	require.True(t, ok)
	assert.Equal(t, domain.ProviderWompi, wompi.Provider())

	epayco, ok := reg.For(domain.ProviderEpayco)
	require.True(t, ok)
	assert.Equal(t, domain.ProviderEpayco, epayco.Provider())

	_, ok = reg.For(domain.Provider("stripe"))
	assert.False(t, ok)
}

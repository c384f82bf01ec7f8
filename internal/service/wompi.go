package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"
)

// wompiAdapter implements ports.ProviderAdapter for the Wompi card/PSE
// gateway. Wompi delivers JSON event envelopes with a SHA-256 integrity
// checksum over selected transaction properties.
type wompiAdapter struct {
	cipher ports.SecretCipher
}

// NewWompiAdapter creates the Wompi provider strategy.
func NewWompiAdapter(cipher ports.SecretCipher) ports.ProviderAdapter {
	return &wompiAdapter{cipher: cipher}
}

type wompiTransaction struct {
	ID                string `json:"id"`
	Reference         string `json:"reference"`
	Status            string `json:"status"`
	AmountInCents     int64  `json:"amount_in_cents"`
	Currency          string `json:"currency"`
	PaymentMethodType string `json:"payment_method_type"`
	CreatedAt         string `json:"created_at"`
	FinalizedAt       string `json:"finalized_at,omitempty"`
}

type wompiPayload struct {
	Event string `json:"event"`
	Data  struct {
		Transaction wompiTransaction `json:"transaction"`
	} `json:"data"`
	Signature struct {
		Checksum   string   `json:"checksum"`
		Properties []string `json:"properties"`
	} `json:"signature"`
	Timestamp int64 `json:"timestamp"`
}

func (a *wompiAdapter) Provider() domain.Provider {
	return domain.ProviderWompi
}

// Decode parses a Wompi event envelope. Wompi only posts JSON.
func (a *wompiAdapter) Decode(env *domain.WebhookEnvelope) (*domain.CanonicalEvent, error) {
	if env.ContentType != domain.ContentTypeJSON {
		return nil, fmt.Errorf("wompi events must be JSON, got %s", env.ContentType)
	}

	var p wompiPayload
	if err := json.Unmarshal(env.Body, &p); err != nil {
		return nil, fmt.Errorf("decoding wompi payload: %w", err)
	}

	tx := p.Data.Transaction
	if tx.ID == "" {
		return nil, fmt.Errorf("wompi payload missing data.transaction.id")
	}
	if tx.Status == "" {
		return nil, fmt.Errorf("wompi payload missing data.transaction.status")
	}

	return &domain.CanonicalEvent{
		ProviderTransactionID: tx.ID,
		ProviderReference:     tx.Reference,
		RawStatus:             tx.Status,
		Amount:                tx.AmountInCents,
		Currency:              tx.Currency,
		RawPayload:            env.Body,
	}, nil
}

// Verify checks the integrity checksum: SHA-256 over the concatenation of
// transaction id, status, amount_in_cents, the envelope timestamp and the
// decrypted integrity secret. Without a configured secret the outcome is
// governed by RequireSignature.
func (a *wompiAdapter) Verify(env *domain.WebhookEnvelope, cfg *domain.GatewayConfig) bool {
	if !cfg.HasIntegritySecret() {
		return !cfg.RequireSignature
	}

	var p wompiPayload
	if err := json.Unmarshal(env.Body, &p); err != nil {
		return false
	}
	tx := p.Data.Transaction
	if tx.ID == "" || tx.Status == "" || p.Signature.Checksum == "" {
		return false
	}

	secret, err := a.cipher.Decrypt(cfg.IntegritySecretEnc)
	if err != nil {
		return false
	}

	concat := tx.ID + tx.Status + strconv.FormatInt(tx.AmountInCents, 10) +
		strconv.FormatInt(p.Timestamp, 10) + secret
	sum := sha256.Sum256([]byte(concat))
	expected := hex.EncodeToString(sum[:])

	return digestEqual(expected, p.Signature.Checksum)
}

func (a *wompiAdapter) MapStatus(raw string) domain.TransactionStatus {
	switch raw {
	case "APPROVED":
		return domain.TransactionStatusApproved
	case "DECLINED":
		return domain.TransactionStatusDeclined
	case "VOIDED":
		return domain.TransactionStatusVoided
	case "ERROR":
		return domain.TransactionStatusError
	case "PENDING":
		return domain.TransactionStatusPending
	default:
		// Unknown vocabulary values stay pending so gateway retries make
		// progress instead of failing hard on an unseen code.
		return domain.TransactionStatusPending
	}
}

// digestEqual compares two hex digests case-insensitively in constant time.
func digestEqual(expected, supplied string) bool {
	e := strings.ToLower(expected)
	s := strings.ToLower(supplied)
	if len(e) != len(s) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(e), []byte(s)) == 1
}

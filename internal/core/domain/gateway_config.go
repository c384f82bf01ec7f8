package domain

import (
	"time"

	"github.com/google/uuid"
)

// GatewayConfig holds per-organization credentials for one provider.
// Secret material is stored AES-encrypted and decrypted on demand.
type GatewayConfig struct {
	ID                 uuid.UUID `json:"id"`
	OrganizationID     uuid.UUID `json:"organization_id"`
	Provider           Provider  `json:"provider"`
	PublicKey          string    `json:"public_key"`
	PrivateKeyEnc      string    `json:"-"`
	IntegritySecretEnc string    `json:"-"` // Wompi only
	IsTestMode         bool      `json:"is_test_mode"`
	// RequireSignature makes the fail-open posture explicit: when false and no
	// secret is configured, verification is skipped and the event is treated
	// as authentic. When true, a missing secret rejects the event.
	RequireSignature bool      `json:"require_signature"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasIntegritySecret reports whether Wompi checksum material is configured.
func (c *GatewayConfig) HasIntegritySecret() bool {
	return c.IntegritySecretEnc != ""
}

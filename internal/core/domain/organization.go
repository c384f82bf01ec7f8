package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant of the platform. Webhooks are scoped to an
// organization by the slug query parameter on the inbound request.
type Organization struct {
	ID               uuid.UUID `json:"id"`
	Slug             string    `json:"slug"`
	Name             string    `json:"name"`
	NotificationURL  *string   `json:"notification_url,omitempty"`
	WebhookSecretEnc string    `json:"-"` // HMAC secret for outbound notifications, AES-encrypted
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

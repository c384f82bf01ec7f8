package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ContentType is the declared encoding of an inbound webhook body.
type ContentType string

const (
	ContentTypeJSON ContentType = "json"
	ContentTypeForm ContentType = "form-urlencoded"
)

// WebhookEnvelope is the as-received payload of one webhook request.
// It lives only for the duration of that request.
type WebhookEnvelope struct {
	Provider    Provider
	OrgSlug     string
	ContentType ContentType
	Body        []byte
}

// CanonicalEvent is the provider-agnostic projection of an envelope.
// Immutable once built.
type CanonicalEvent struct {
	ProviderTransactionID string
	ProviderReference     string // empty when the provider sent none
	RawStatus             string // provider vocabulary, not yet mapped
	Amount                int64  // minor units
	Currency              string
	RawPayload            []byte // stored verbatim for audit
}

// EventCacheKey builds the Redis key under which the last applied canonical
// status for a provider transaction is cached.
func EventCacheKey(orgID uuid.UUID, provider Provider, providerTxID string) string {
	return fmt.Sprintf("%s:%s:%s", orgID, provider, providerTxID)
}

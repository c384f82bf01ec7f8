package service

import (
	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"
)

// AdapterRegistry is the closed set of provider strategies. Dispatch is by
// enum value, not by string lookup in a mutable map.
type AdapterRegistry struct {
	wompi  ports.ProviderAdapter
	epayco ports.ProviderAdapter
}

// NewAdapterRegistry builds the registry with both supported providers.
func NewAdapterRegistry(cipher ports.SecretCipher) *AdapterRegistry {
	return &AdapterRegistry{
		wompi:  NewWompiAdapter(cipher),
		epayco: NewEpaycoAdapter(cipher),
	}
}

// For returns the adapter for a provider. False for any value outside the
// closed set, which callers surface as an unknown-provider rejection.
func (r *AdapterRegistry) For(p domain.Provider) (ports.ProviderAdapter, bool) {
	switch p {
	case domain.ProviderWompi:
		return r.wompi, true
	case domain.ProviderEpayco:
		return r.epayco, true
	}
	return nil, false
}

package domain

// Provider identifies a supported payment gateway.
type Provider string

const (
	ProviderWompi  Provider = "wompi"
	ProviderEpayco Provider = "epayco"
)

// ParseProvider converts a path segment into a Provider.
// Returns false for anything outside the closed set.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderWompi:
		return ProviderWompi, true
	case ProviderEpayco:
		return ProviderEpayco, true
	}
	return "", false
}

package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"
)

// epaycoAdapter implements ports.ProviderAdapter for the ePayco LatAm
// gateway. ePayco confirmations are flat x_-prefixed fields, delivered
// either as JSON or form-urlencoded, signed with SHA-256 over the gateway
// key pair and transaction identifiers.
type epaycoAdapter struct {
	cipher ports.SecretCipher
}

// NewEpaycoAdapter creates the ePayco provider strategy.
func NewEpaycoAdapter(cipher ports.SecretCipher) ports.ProviderAdapter {
	return &epaycoAdapter{cipher: cipher}
}

func (a *epaycoAdapter) Provider() domain.Provider {
	return domain.ProviderEpayco
}

// Decode parses an ePayco confirmation into a canonical event. Customer and
// bank metadata fields ride along verbatim inside RawPayload but are not
// interpreted.
func (a *epaycoAdapter) Decode(env *domain.WebhookEnvelope) (*domain.CanonicalEvent, error) {
	fields, err := epaycoFields(env)
	if err != nil {
		return nil, err
	}

	for _, required := range []string{"x_transaction_id", "x_ref_payco", "x_cod_response", "x_amount", "x_currency_code"} {
		if fields[required] == "" {
			return nil, fmt.Errorf("epayco payload missing %s", required)
		}
	}

	amount, err := parseEpaycoAmount(fields["x_amount"])
	if err != nil {
		return nil, fmt.Errorf("epayco payload invalid x_amount: %w", err)
	}

	return &domain.CanonicalEvent{
		ProviderTransactionID: fields["x_transaction_id"],
		ProviderReference:     fields["x_id_invoice"],
		RawStatus:             fields["x_cod_response"],
		Amount:                amount,
		Currency:              fields["x_currency_code"],
		RawPayload:            env.Body,
	}, nil
}

// Verify checks x_signature: SHA-256 over public_key, decrypted private_key,
// x_ref_payco, x_transaction_id, x_amount and x_currency_code concatenated
// in that order.
func (a *epaycoAdapter) Verify(env *domain.WebhookEnvelope, cfg *domain.GatewayConfig) bool {
	if cfg.PrivateKeyEnc == "" {
		return !cfg.RequireSignature
	}

	fields, err := epaycoFields(env)
	if err != nil {
		return false
	}
	supplied := fields["x_signature"]
	if supplied == "" {
		return false
	}

	privateKey, err := a.cipher.Decrypt(cfg.PrivateKeyEnc)
	if err != nil {
		return false
	}

	concat := cfg.PublicKey + privateKey + fields["x_ref_payco"] +
		fields["x_transaction_id"] + fields["x_amount"] + fields["x_currency_code"]
	sum := sha256.Sum256([]byte(concat))
	expected := hex.EncodeToString(sum[:])

	return digestEqual(expected, supplied)
}

func (a *epaycoAdapter) MapStatus(raw string) domain.TransactionStatus {
	switch raw {
	case "1":
		return domain.TransactionStatusApproved
	case "2":
		return domain.TransactionStatusDeclined
	case "3":
		return domain.TransactionStatusPending
	case "4":
		return domain.TransactionStatusError
	case "6":
		return domain.TransactionStatusVoided
	default:
		return domain.TransactionStatusPending
	}
}

// epaycoFields flattens the envelope body into string key/values according to
// the declared content type.
func epaycoFields(env *domain.WebhookEnvelope) (map[string]string, error) {
	switch env.ContentType {
	case domain.ContentTypeForm:
		values, err := url.ParseQuery(string(env.Body))
		if err != nil {
			return nil, fmt.Errorf("decoding epayco form payload: %w", err)
		}
		fields := make(map[string]string, len(values))
		for k := range values {
			fields[k] = values.Get(k)
		}
		return fields, nil

	case domain.ContentTypeJSON:
		var raw map[string]any
		if err := json.Unmarshal(env.Body, &raw); err != nil {
			return nil, fmt.Errorf("decoding epayco json payload: %w", err)
		}
		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				fields[k] = val
			case float64:
				// JSON numbers arrive as float64; x_transaction_id and
				// x_cod_response are sometimes sent unquoted.
				fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				fields[k] = strconv.FormatBool(val)
			case nil:
				// absent
			default:
				// nested structures are not part of the ePayco contract
			}
		}
		return fields, nil

	default:
		return nil, fmt.Errorf("unsupported content type %q", env.ContentType)
	}
}

// parseEpaycoAmount accepts both integer and decimal renderings of x_amount.
func parseEpaycoAmount(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f)), nil
}

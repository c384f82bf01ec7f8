package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultRetryIntervals paces redelivery of a failed sale notification.
var defaultRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	5 * time.Minute,
}

// EventSaleCompleted is the event type carried by every sale notification.
const EventSaleCompleted = "SALE_COMPLETED"

// SaleNotificationPayload is the JSON structure posted to the organization's
// notification URL.
type SaleNotificationPayload struct {
	EventType string               `json:"event_type"`
	Data      SaleNotificationData `json:"data"`
	Signature string               `json:"signature"`
}

// SaleNotificationData holds the sale details in the notification.
type SaleNotificationData struct {
	OrderID               string `json:"order_id"`
	TransactionID         string `json:"transaction_id"`
	Provider              string `json:"provider"`
	ProviderTransactionID string `json:"provider_transaction_id"`
	Reference             string `json:"reference,omitempty"`
	Amount                int64  `json:"amount"`
	Currency              string `json:"currency"`
	CompletedAt           string `json:"completed_at"`
	Timestamp             int64  `json:"timestamp"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// saleNotifier implements ports.NotificationDispatcher. Delivery runs on a
// background goroutine: the caller's webhook response never waits on the
// organization's endpoint.
type saleNotifier struct {
	orgRepo        ports.OrganizationRepository
	logRepo        ports.NotificationLogRepository
	cipher         ports.SecretCipher
	httpClient     HTTPClient
	timeout        time.Duration
	retryIntervals []time.Duration
	log            zerolog.Logger
}

// NewSaleNotifier creates a new sale notification dispatcher.
func NewSaleNotifier(
	orgRepo ports.OrganizationRepository,
	logRepo ports.NotificationLogRepository,
	cipher ports.SecretCipher,
	httpClient HTTPClient,
	timeout time.Duration,
	log zerolog.Logger,
) ports.NotificationDispatcher {
	return &saleNotifier{
		orgRepo:        orgRepo,
		logRepo:        logRepo,
		cipher:         cipher,
		httpClient:     httpClient,
		timeout:        timeout,
		retryIntervals: defaultRetryIntervals,
		log:            log,
	}
}

// SendSaleNotification signs and enqueues one notification. A missing
// notification URL is a silent skip, not an error.
func (s *saleNotifier) SendSaleNotification(ctx context.Context, n ports.SaleNotification) error {
	org, err := s.orgRepo.GetByID(ctx, n.OrganizationID)
	if err != nil {
		s.log.Error().Err(err).Str("org_id", n.OrganizationID.String()).Msg("notify: failed to fetch organization")
		return err
	}
	if org == nil || org.NotificationURL == nil || *org.NotificationURL == "" {
		s.log.Debug().Str("org_id", n.OrganizationID.String()).Msg("notify: no notification URL configured, skipping")
		return nil
	}

	data := SaleNotificationData{
		OrderID:               n.OrderID.String(),
		TransactionID:         n.TransactionID.String(),
		Provider:              string(n.Provider),
		ProviderTransactionID: n.ProviderTransactionID,
		Reference:             n.Reference,
		Amount:                n.Amount,
		Currency:              n.Currency,
		CompletedAt:           n.CompletedAt.UTC().Format(time.RFC3339),
		Timestamp:             time.Now().Unix(),
	}

	secret, err := s.cipher.Decrypt(org.WebhookSecretEnc)
	if err != nil {
		s.log.Error().Err(err).Str("org_id", org.ID.String()).Msg("notify: failed to decrypt signing secret")
		return err
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	payload := SaleNotificationPayload{
		EventType: EventSaleCompleted,
		Data:      data,
		Signature: hmacSign(secret, dataBytes),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	entry := &domain.NotificationLog{
		ID:             uuid.New(),
		TransactionID:  n.TransactionID,
		OrganizationID: org.ID,
		URL:            *org.NotificationURL,
		Payload:        string(payloadBytes),
		Status:         domain.NotificationStatusPending,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		// The delivery attempt still proceeds; only the audit trail is degraded.
		s.log.Error().Err(err).Str("tx_id", n.TransactionID.String()).Msg("notify: failed to record delivery log")
	}

	go s.deliverWithRetries(entry, payloadBytes)

	return nil
}

// deliverWithRetries posts the payload until a 2xx lands or the retry
// schedule is exhausted, recording the outcome in the delivery log.
func (s *saleNotifier) deliverWithRetries(entry *domain.NotificationLog, payloadBytes []byte) {
	for attempt := 0; attempt <= len(s.retryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(s.retryIntervals[attempt-1])
		}
		entry.Attempt = attempt + 1

		status, err := s.deliverOnce(entry.URL, payloadBytes)
		if err != nil {
			msg := err.Error()
			entry.LastError = &msg
			s.log.Warn().Err(err).
				Str("tx_id", entry.TransactionID.String()).
				Int("attempt", entry.Attempt).
				Msg("notify: delivery failed")
			continue
		}

		entry.HTTPStatus = &status
		if status >= 200 && status < 300 {
			entry.Status = domain.NotificationStatusDelivered
			entry.LastError = nil
			s.finishLog(entry)
			s.log.Info().
				Str("tx_id", entry.TransactionID.String()).
				Int("attempt", entry.Attempt).
				Int("status", status).
				Msg("notify: delivered")
			return
		}

		msg := fmt.Sprintf("unexpected status %d", status)
		entry.LastError = &msg
		s.log.Warn().
			Str("tx_id", entry.TransactionID.String()).
			Int("attempt", entry.Attempt).
			Int("status", status).
			Msg("notify: non-2xx response, retrying")
	}

	entry.Status = domain.NotificationStatusFailed
	s.finishLog(entry)
	s.log.Error().
		Str("tx_id", entry.TransactionID.String()).
		Int("attempts", entry.Attempt).
		Msg("notify: all retry attempts exhausted")
}

func (s *saleNotifier) deliverOnce(url string, payloadBytes []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (s *saleNotifier) finishLog(entry *domain.NotificationLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry.UpdatedAt = time.Now().UTC()
	if err := s.logRepo.Update(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("tx_id", entry.TransactionID.String()).Msg("notify: failed to update delivery log")
	}
}

// hmacSign produces the hex HMAC-SHA256 the receiving endpoint verifies
// against its shared secret.
func hmacSign(secret string, data []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

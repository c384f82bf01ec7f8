package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"
	"payment-webhook-engine/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeHTTPClient records requests and replies from a scripted status queue.
type fakeHTTPClient struct {
	statuses []int
	err      error
	requests chan *http.Request
}

func newFakeHTTPClient(statuses ...int) *fakeHTTPClient {
	return &fakeHTTPClient{statuses: statuses, requests: make(chan *http.Request, 10)}
}

func (c *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.requests <- req
	if c.err != nil {
		return nil, c.err
	}
	status := c.statuses[0]
	if len(c.statuses) > 1 {
		c.statuses = c.statuses[1:]
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}, nil
}

type notifierTestDeps struct {
	svc     *saleNotifier
	orgRepo *mocks.MockOrganizationRepository
	logRepo *mocks.MockNotificationLogRepository
	client  *fakeHTTPClient
	ctrl    *gomock.Controller

	org    *domain.Organization
	secret string
}

func setupNotifier(t *testing.T, client *fakeHTTPClient) *notifierTestDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	cipher, err := NewAESSecretCipher(testAESKey)
	require.NoError(t, err)
	secret := "org_signing_secret"
	secretEnc, err := cipher.Encrypt(secret)
	require.NoError(t, err)

	url := "https://hooks.acme.test/sales"
	d := &notifierTestDeps{
		orgRepo: mocks.NewMockOrganizationRepository(ctrl),
		logRepo: mocks.NewMockNotificationLogRepository(ctrl),
		client:  client,
		ctrl:    ctrl,
		secret:  secret,
		org: &domain.Organization{
			ID:               uuid.New(),
			Slug:             "acme-store",
			NotificationURL:  &url,
			WebhookSecretEnc: secretEnc,
		},
	}
	d.svc = NewSaleNotifier(d.orgRepo, d.logRepo, cipher, client, time.Second, zerolog.Nop()).(*saleNotifier)
	d.svc.retryIntervals = []time.Duration{0, 0} // no sleeping in tests
	return d
}

func saleFixture(orgID uuid.UUID) ports.SaleNotification {
	return ports.SaleNotification{
		OrganizationID:        orgID,
		OrderID:               uuid.New(),
		TransactionID:         uuid.New(),
		Provider:              domain.ProviderWompi,
		ProviderTransactionID: "TX123456789",
		Reference:             "REF001",
		Amount:                50000,
		Currency:              "COP",
		CompletedAt:           time.Now().UTC(),
	}
}

func TestSaleNotifier_DeliversSignedPayload(t *testing.T) {
	d := setupNotifier(t, newFakeHTTPClient(http.StatusOK))
	defer d.ctrl.Finish()

	done := make(chan *domain.NotificationLog, 1)
	d.orgRepo.EXPECT().GetByID(gomock.Any(), d.org.ID).Return(d.org, nil)
	d.logRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	d.logRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *domain.NotificationLog) error {
			done <- entry
			return nil
		})

	n := saleFixture(d.org.ID)
	require.NoError(t, d.svc.SendSaleNotification(context.Background(), n))

	var entry *domain.NotificationLog
	select {
	case entry = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery never completed")
	}

	assert.Equal(t, domain.NotificationStatusDelivered, entry.Status)
	assert.Equal(t, 1, entry.Attempt)
	require.NotNil(t, entry.HTTPStatus)
	assert.Equal(t, http.StatusOK, *entry.HTTPStatus)

	req := <-d.client.requests
	assert.Equal(t, *d.org.NotificationURL, req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var payload SaleNotificationPayload
	require.NoError(t, json.Unmarshal([]byte(entry.Payload), &payload))
	assert.Equal(t, EventSaleCompleted, payload.EventType)
	assert.Equal(t, n.OrderID.String(), payload.Data.OrderID)
	assert.Equal(t, int64(50000), payload.Data.Amount)

	// Signature must be the HMAC of the data object under the org secret.
	dataBytes, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	mac := hmac.New(sha256.New, []byte(d.secret))
	mac.Write(dataBytes)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), payload.Signature)
}

func TestSaleNotifier_RetriesThenSucceeds(t *testing.T) {
	d := setupNotifier(t, newFakeHTTPClient(http.StatusBadGateway, http.StatusOK))
	defer d.ctrl.Finish()

	done := make(chan *domain.NotificationLog, 1)
	d.orgRepo.EXPECT().GetByID(gomock.Any(), d.org.ID).Return(d.org, nil)
	d.logRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	d.logRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *domain.NotificationLog) error {
			done <- entry
			return nil
		})

	require.NoError(t, d.svc.SendSaleNotification(context.Background(), saleFixture(d.org.ID)))

	entry := <-done
	assert.Equal(t, domain.NotificationStatusDelivered, entry.Status)
	assert.Equal(t, 2, entry.Attempt)
}

func TestSaleNotifier_ExhaustsRetries(t *testing.T) {
	client := newFakeHTTPClient(0)
	client.err = errors.New("connection refused")
	d := setupNotifier(t, client)
	defer d.ctrl.Finish()

	done := make(chan *domain.NotificationLog, 1)
	d.orgRepo.EXPECT().GetByID(gomock.Any(), d.org.ID).Return(d.org, nil)
	d.logRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	d.logRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *domain.NotificationLog) error {
			done <- entry
			return nil
		})

	require.NoError(t, d.svc.SendSaleNotification(context.Background(), saleFixture(d.org.ID)))

	entry := <-done
	assert.Equal(t, domain.NotificationStatusFailed, entry.Status)
	assert.Equal(t, 3, entry.Attempt) // initial attempt + two retries
	require.NotNil(t, entry.LastError)
	assert.Contains(t, *entry.LastError, "connection refused")
}

func TestSaleNotifier_NoURLConfigured_Skips(t *testing.T) {
	d := setupNotifier(t, newFakeHTTPClient(http.StatusOK))
	defer d.ctrl.Finish()

	d.org.NotificationURL = nil
	d.orgRepo.EXPECT().GetByID(gomock.Any(), d.org.ID).Return(d.org, nil)
	// No log row and no HTTP call for an unconfigured endpoint.

	require.NoError(t, d.svc.SendSaleNotification(context.Background(), saleFixture(d.org.ID)))
	assert.Empty(t, d.client.requests)
}

func TestSaleNotifier_OrgLookupError(t *testing.T) {
	d := setupNotifier(t, newFakeHTTPClient(http.StatusOK))
	defer d.ctrl.Finish()

	d.orgRepo.EXPECT().GetByID(gomock.Any(), d.org.ID).Return(nil, errors.New("timeout"))

	err := d.svc.SendSaleNotification(context.Background(), saleFixture(d.org.ID))
	require.Error(t, err)
}

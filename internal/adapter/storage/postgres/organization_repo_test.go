package postgres

import (
	"context"
	"testing"
	"time"

	"payment-webhook-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orgColumns() []string {
	return []string{"id", "slug", "name", "notification_url", "webhook_secret_enc", "created_at", "updated_at"}
}

func TestOrganizationRepo_GetBySlug(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizationRepo(mock)
	now := time.Now().UTC()
	org := &domain.Organization{
		ID:               uuid.New(),
		Slug:             "acme-store",
		Name:             "Acme Store",
		NotificationURL:  strPtr("https://hooks.acme.test/sales"),
		WebhookSecretEnc: "enc_secret",
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	mock.ExpectQuery("SELECT .+ FROM organizations WHERE slug").
		WithArgs(org.Slug).
		WillReturnRows(pgxmock.NewRows(orgColumns()).AddRow(
			org.ID, org.Slug, org.Name, org.NotificationURL, org.WebhookSecretEnc, org.CreatedAt, org.UpdatedAt,
		))

	result, err := repo.GetBySlug(context.Background(), "acme-store")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, org.ID, result.ID)
	assert.Equal(t, "Acme Store", result.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepo_GetBySlug_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrganizationRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM organizations WHERE slug").
		WithArgs("ghost-org").
		WillReturnRows(pgxmock.NewRows(orgColumns()))

	result, err := repo.GetBySlug(context.Background(), "ghost-org")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestGatewayConfigRepo_GetByOrgAndProvider(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewGatewayConfigRepo(mock)
	now := time.Now().UTC()
	cfg := &domain.GatewayConfig{
		ID:                 uuid.New(),
		OrganizationID:     uuid.New(),
		Provider:           domain.ProviderEpayco,
		PublicKey:          "pub_key",
		PrivateKeyEnc:      "enc_private",
		IntegritySecretEnc: "",
		IsTestMode:         true,
		RequireSignature:   true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	mock.ExpectQuery("SELECT .+ FROM gateway_configs").
		WithArgs(cfg.OrganizationID, cfg.Provider).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "organization_id", "provider", "public_key", "private_key_enc", "integrity_secret_enc",
			"is_test_mode", "require_signature", "created_at", "updated_at",
		}).AddRow(
			cfg.ID, cfg.OrganizationID, cfg.Provider, cfg.PublicKey, cfg.PrivateKeyEnc, cfg.IntegritySecretEnc,
			cfg.IsTestMode, cfg.RequireSignature, cfg.CreatedAt, cfg.UpdatedAt,
		))

	result, err := repo.GetByOrgAndProvider(context.Background(), cfg.OrganizationID, domain.ProviderEpayco)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, cfg.PublicKey, result.PublicKey)
	assert.True(t, result.RequireSignature)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayConfigRepo_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewGatewayConfigRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM gateway_configs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	result, err := repo.GetByOrgAndProvider(context.Background(), uuid.New(), domain.ProviderWompi)
	require.NoError(t, err)
	assert.Nil(t, result)
}

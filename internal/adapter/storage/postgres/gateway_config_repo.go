package postgres

import (
	"context"
	"errors"
	"fmt"

	"payment-webhook-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GatewayConfigRepo implements ports.GatewayConfigRepository.
type GatewayConfigRepo struct {
	pool Pool
}

// NewGatewayConfigRepo creates a new GatewayConfigRepo.
func NewGatewayConfigRepo(pool Pool) *GatewayConfigRepo {
	return &GatewayConfigRepo{pool: pool}
}

// GetByOrgAndProvider fetches the gateway credentials one organization holds
// for one provider.
func (r *GatewayConfigRepo) GetByOrgAndProvider(ctx context.Context, orgID uuid.UUID, provider domain.Provider) (*domain.GatewayConfig, error) {
	query := `SELECT id, organization_id, provider, public_key, private_key_enc, integrity_secret_enc,
		is_test_mode, require_signature, created_at, updated_at
		FROM gateway_configs WHERE organization_id = $1 AND provider = $2`

	c := &domain.GatewayConfig{}
	err := r.pool.QueryRow(ctx, query, orgID, provider).Scan(
		&c.ID, &c.OrganizationID, &c.Provider, &c.PublicKey,
		&c.PrivateKeyEnc, &c.IntegritySecretEnc,
		&c.IsTestMode, &c.RequireSignature,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get gateway config: %w", err)
	}
	return c, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"payment-webhook-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrganizationRepo implements ports.OrganizationRepository.
type OrganizationRepo struct {
	pool Pool
}

// NewOrganizationRepo creates a new OrganizationRepo.
func NewOrganizationRepo(pool Pool) *OrganizationRepo {
	return &OrganizationRepo{pool: pool}
}

const organizationColumns = `id, slug, name, notification_url, webhook_secret_enc, created_at, updated_at`

// GetBySlug fetches an organization by its URL slug.
func (r *OrganizationRepo) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM organizations WHERE slug = $1`, organizationColumns)
	return r.scanOrganization(r.pool.QueryRow(ctx, query, slug))
}

// GetByID fetches an organization by its UUID.
func (r *OrganizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM organizations WHERE id = $1`, organizationColumns)
	return r.scanOrganization(r.pool.QueryRow(ctx, query, id))
}

func (r *OrganizationRepo) scanOrganization(row pgx.Row) (*domain.Organization, error) {
	o := &domain.Organization{}
	err := row.Scan(
		&o.ID, &o.Slug, &o.Name, &o.NotificationURL,
		&o.WebhookSecretEnc, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	return o, nil
}

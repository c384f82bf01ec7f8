package service

import (
	"context"
	"fmt"
	"time"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"
	"payment-webhook-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// eventCacheTTL bounds the Redis duplicate-suppression window. Gateways stop
// retrying well before this.
const eventCacheTTL = 24 * time.Hour

// WebhookProcessorImpl implements ports.WebhookProcessor: resolve tenant and
// config, authenticate, normalize, then drive the idempotent transaction and
// order writes.
type WebhookProcessorImpl struct {
	orgRepo    ports.OrganizationRepository
	cfgRepo    ports.GatewayConfigRepository
	txRepo     ports.TransactionRepository
	orderRepo  ports.OrderRepository
	reconciler ports.OrderReconciler
	notifier   ports.NotificationDispatcher
	adapters   *AdapterRegistry
	eventCache ports.EventCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWebhookProcessor creates a new WebhookProcessorImpl.
func NewWebhookProcessor(
	orgRepo ports.OrganizationRepository,
	cfgRepo ports.GatewayConfigRepository,
	txRepo ports.TransactionRepository,
	orderRepo ports.OrderRepository,
	reconciler ports.OrderReconciler,
	notifier ports.NotificationDispatcher,
	adapters *AdapterRegistry,
	eventCache ports.EventCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WebhookProcessorImpl {
	return &WebhookProcessorImpl{
		orgRepo:    orgRepo,
		cfgRepo:    cfgRepo,
		txRepo:     txRepo,
		orderRepo:  orderRepo,
		reconciler: reconciler,
		notifier:   notifier,
		adapters:   adapters,
		eventCache: eventCache,
		transactor: transactor,
		log:        log,
	}
}

// Process handles one inbound webhook end to end.
func (s *WebhookProcessorImpl) Process(ctx context.Context, env *domain.WebhookEnvelope) (*ports.WebhookResult, error) {
	adapter, ok := s.adapters.For(env.Provider)
	if !ok {
		return nil, apperror.ErrUnknownProvider()
	}

	event, err := adapter.Decode(env)
	if err != nil {
		return nil, apperror.ErrMalformedPayload(err)
	}

	org, err := s.orgRepo.GetBySlug(ctx, env.OrgSlug)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("resolve organization: %w", err))
	}
	if org == nil {
		return nil, apperror.ErrOrganizationNotFound()
	}

	cfg, err := s.cfgRepo.GetByOrgAndProvider(ctx, org.ID, env.Provider)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("resolve gateway config: %w", err))
	}
	if cfg == nil {
		return nil, apperror.ErrGatewayConfigNotFound()
	}

	if !adapter.Verify(env, cfg) {
		s.log.Warn().
			Str("org", env.OrgSlug).
			Str("provider", string(env.Provider)).
			Str("provider_tx_id", event.ProviderTransactionID).
			Msg("webhook signature rejected")
		return nil, apperror.ErrInvalidSignature()
	}

	newStatus := adapter.MapStatus(event.RawStatus)
	now := time.Now().UTC()
	cacheKey := domain.EventCacheKey(org.ID, env.Provider, event.ProviderTransactionID)

	// Redis fast path. Best-effort: errors and misses fall through to the DB.
	if cached, hit, cacheErr := s.eventCache.GetStatus(ctx, cacheKey); cacheErr != nil {
		s.log.Warn().Err(cacheErr).Str("key", cacheKey).Msg("event cache read failed, falling through to store")
	} else if hit && cached == newStatus {
		s.log.Debug().
			Str("provider_tx_id", event.ProviderTransactionID).
			Str("status", string(newStatus)).
			Msg("duplicate webhook suppressed by event cache")
		return &ports.WebhookResult{Received: true, Duplicate: true}, nil
	}

	existing, err := s.txRepo.GetByProviderTransactionID(ctx, org.ID, env.Provider, event.ProviderTransactionID)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("find transaction by provider id: %w", err))
	}

	if existing != nil {
		if existing.Status == newStatus {
			// Idempotent duplicate: zero writes.
			s.cacheStatus(ctx, cacheKey, newStatus)
			return &ports.WebhookResult{Received: true, Duplicate: true, Transaction: existing}, nil
		}
		return s.applyTransition(ctx, existing, event, newStatus, now, cacheKey)
	}

	if event.ProviderReference != "" {
		byRef, refErr := s.txRepo.GetByProviderReference(ctx, org.ID, env.Provider, event.ProviderReference)
		if refErr != nil {
			return nil, apperror.ErrStoreFailure(fmt.Errorf("find transaction by reference: %w", refErr))
		}
		if byRef != nil {
			return s.claimByReference(ctx, byRef, event, newStatus, now, cacheKey)
		}
	}

	return s.insertFirstSeen(ctx, org.ID, env.Provider, event, newStatus, now, cacheKey)
}

// applyTransition performs the conditional status update for a transaction
// already claimed by its provider id. The compare-and-swap closes the race
// window between the read above and this write: on conflict it re-reads once
// and re-evaluates.
func (s *WebhookProcessorImpl) applyTransition(
	ctx context.Context,
	existing *domain.Transaction,
	event *domain.CanonicalEvent,
	newStatus domain.TransactionStatus,
	now time.Time,
	cacheKey string,
) (*ports.WebhookResult, error) {
	const maxAttempts = 2

	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, applied, err := s.tryTransition(ctx, existing, event, newStatus, now, cacheKey)
		if err != nil {
			return nil, err
		}
		if applied {
			return result, nil
		}

		// Lost the race: someone committed between our read and write.
		fresh, err := s.txRepo.GetByProviderTransactionID(ctx, existing.OrganizationID, existing.Provider, existing.ProviderTransactionID)
		if err != nil {
			return nil, apperror.ErrStoreFailure(fmt.Errorf("re-read after conflict: %w", err))
		}
		if fresh == nil {
			return nil, apperror.ErrStoreFailure(fmt.Errorf("transaction %s vanished during conditional update", existing.ID))
		}
		if fresh.Status == newStatus {
			s.cacheStatus(ctx, cacheKey, newStatus)
			return &ports.WebhookResult{Received: true, Duplicate: true, Transaction: fresh}, nil
		}
		existing = fresh
	}

	return nil, apperror.ErrStoreFailure(fmt.Errorf("conditional update contention on transaction %s", existing.ID))
}

// tryTransition runs one CAS attempt inside its own database transaction.
// applied=false with nil error means the expected status no longer matched.
func (s *WebhookProcessorImpl) tryTransition(
	ctx context.Context,
	existing *domain.Transaction,
	event *domain.CanonicalEvent,
	newStatus domain.TransactionStatus,
	now time.Time,
	cacheKey string,
) (*ports.WebhookResult, bool, error) {
	updated := *existing
	updated.ProviderResponse = event.RawPayload
	updated.ApplyStatus(newStatus, now)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, false, apperror.ErrStoreFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	applied, err := s.txRepo.UpdateStatusIf(ctx, dbTx, &updated, existing.Status)
	if err != nil {
		return nil, false, apperror.ErrStoreFailure(fmt.Errorf("conditional update: %w", err))
	}
	if !applied {
		return nil, false, nil
	}

	notify := false
	if updated.OrderID != nil {
		notify, err = s.reconciler.Apply(ctx, dbTx, *updated.OrderID, newStatus, now)
		if err != nil {
			return nil, false, apperror.ErrStoreFailure(err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, false, apperror.ErrStoreFailure(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheStatus(ctx, cacheKey, newStatus)
	if notify {
		s.dispatchSale(ctx, &updated, event)
	}

	s.log.Info().
		Str("tx_id", updated.ID.String()).
		Str("provider_tx_id", updated.ProviderTransactionID).
		Str("from", string(existing.Status)).
		Str("to", string(newStatus)).
		Msg("transaction transitioned")

	return &ports.WebhookResult{Received: true, Transaction: &updated}, true, nil
}

// claimByReference attaches the gateway's canonical id to a transaction that
// was created by an order-initiation flow and only known by reference so
// far. The update is unconditional, even when the status is unchanged.
func (s *WebhookProcessorImpl) claimByReference(
	ctx context.Context,
	byRef *domain.Transaction,
	event *domain.CanonicalEvent,
	newStatus domain.TransactionStatus,
	now time.Time,
	cacheKey string,
) (*ports.WebhookResult, error) {
	updated := *byRef
	updated.ProviderTransactionID = event.ProviderTransactionID
	updated.Amount = event.Amount
	updated.Currency = event.Currency
	updated.ProviderResponse = event.RawPayload
	updated.ApplyStatus(newStatus, now)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Update(ctx, dbTx, &updated); err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("claim transaction: %w", err))
	}

	notify := false
	if updated.OrderID != nil {
		notify, err = s.reconciler.Apply(ctx, dbTx, *updated.OrderID, newStatus, now)
		if err != nil {
			return nil, apperror.ErrStoreFailure(err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheStatus(ctx, cacheKey, newStatus)
	if notify {
		s.dispatchSale(ctx, &updated, event)
	}

	s.log.Info().
		Str("tx_id", updated.ID.String()).
		Str("provider_tx_id", updated.ProviderTransactionID).
		Str("reference", event.ProviderReference).
		Msg("transaction claimed by provider id")

	return &ports.WebhookResult{Received: true, Transaction: &updated}, nil
}

// insertFirstSeen records a transaction the engine has never seen, linking
// it to an order when the payload reference resolves to one.
func (s *WebhookProcessorImpl) insertFirstSeen(
	ctx context.Context,
	orgID uuid.UUID,
	provider domain.Provider,
	event *domain.CanonicalEvent,
	newStatus domain.TransactionStatus,
	now time.Time,
	cacheKey string,
) (*ports.WebhookResult, error) {
	txn := &domain.Transaction{
		ID:                    uuid.New(),
		OrganizationID:        orgID,
		Provider:              provider,
		ProviderTransactionID: event.ProviderTransactionID,
		Amount:                event.Amount,
		Currency:              event.Currency,
		ProviderResponse:      event.RawPayload,
		CreatedAt:             now,
	}
	if event.ProviderReference != "" {
		ref := event.ProviderReference
		txn.ProviderReference = &ref

		orderID, err := s.orderRepo.FindIDByReference(ctx, orgID, ref)
		if err != nil {
			return nil, apperror.ErrStoreFailure(fmt.Errorf("resolve order by reference: %w", err))
		}
		txn.OrderID = orderID
	}
	txn.ApplyStatus(newStatus, now)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Insert(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("insert transaction: %w", err))
	}

	notify := false
	if txn.OrderID != nil {
		notify, err = s.reconciler.Apply(ctx, dbTx, *txn.OrderID, newStatus, now)
		if err != nil {
			return nil, apperror.ErrStoreFailure(err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStoreFailure(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheStatus(ctx, cacheKey, newStatus)
	if notify {
		s.dispatchSale(ctx, txn, event)
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("provider_tx_id", txn.ProviderTransactionID).
		Str("status", string(newStatus)).
		Msg("transaction recorded")

	return &ports.WebhookResult{Received: true, Transaction: txn}, nil
}

// cacheStatus refreshes the duplicate-suppression cache. Best-effort.
func (s *WebhookProcessorImpl) cacheStatus(ctx context.Context, key string, status domain.TransactionStatus) {
	if err := s.eventCache.SetStatus(ctx, key, status, eventCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("event cache write failed")
	}
}

// dispatchSale fires the sale notification. Fire-and-forget: the durable
// writes already committed, so a delivery failure is logged, never surfaced.
func (s *WebhookProcessorImpl) dispatchSale(ctx context.Context, txn *domain.Transaction, event *domain.CanonicalEvent) {
	if txn.OrderID == nil || txn.CompletedAt == nil {
		return
	}

	n := ports.SaleNotification{
		OrganizationID:        txn.OrganizationID,
		OrderID:               *txn.OrderID,
		TransactionID:         txn.ID,
		Provider:              txn.Provider,
		ProviderTransactionID: txn.ProviderTransactionID,
		Reference:             event.ProviderReference,
		Amount:                event.Amount,
		Currency:              event.Currency,
		CompletedAt:           *txn.CompletedAt,
	}
	if err := s.notifier.SendSaleNotification(ctx, n); err != nil {
		s.log.Error().Err(err).
			Str("tx_id", txn.ID.String()).
			Str("order_id", txn.OrderID.String()).
			Msg("sale notification dispatch failed")
	}
}

package service

import (
	"context"

	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"
	"payment-webhook-engine/pkg/apperror"

	"github.com/google/uuid"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	txRepo  ports.TransactionRepository
	logRepo ports.NotificationLogRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	txRepo ports.TransactionRepository,
	logRepo ports.NotificationLogRepository,
) ports.ReportingService {
	return &reportingService{
		txRepo:  txRepo,
		logRepo: logRepo,
	}
}

// ListTransactions returns a paginated list of transactions.
func (s *reportingService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return txns, total, nil
}

// GetStats returns aggregated transaction stats for the organization.
func (s *reportingService) GetStats(ctx context.Context, orgID uuid.UUID) (*ports.TransactionStats, error) {
	stats, err := s.txRepo.GetStats(ctx, orgID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return stats, nil
}

// ListNotifications returns the delivery log for one transaction.
func (s *reportingService) ListNotifications(ctx context.Context, txID uuid.UUID) ([]domain.NotificationLog, error) {
	txn, err := s.txRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("transaction")
	}

	logs, err := s.logRepo.ListByTransactionID(ctx, txID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return logs, nil
}

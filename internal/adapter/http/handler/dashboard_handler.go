package handler

import (
	"math"
	"strconv"
	"time"

	"payment-webhook-engine/internal/adapter/http/dto"
	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"
	"payment-webhook-engine/pkg/apperror"
	"payment-webhook-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler handles the ops API: transaction listing, delivery logs
// and aggregate stats.
type DashboardHandler struct {
	reportingSvc ports.ReportingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reportingSvc ports.ReportingService) *DashboardHandler {
	return &DashboardHandler{reportingSvc: reportingSvc}
}

// ListTransactions handles GET /api/v1/transactions.
func (h *DashboardHandler) ListTransactions(c *gin.Context) {
	orgID, err := uuid.Parse(c.Query("org_id"))
	if err != nil {
		response.Error(c, apperror.Validation("org_id must be a valid uuid"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.TransactionListParams{
		OrganizationID: orgID,
		Page:           page,
		PageSize:       pageSize,
	}

	if p := c.Query("provider"); p != "" {
		provider, ok := domain.ParseProvider(p)
		if !ok {
			response.Error(c, apperror.Validation("provider must be wompi or epayco"))
			return
		}
		params.Provider = &provider
	}
	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// ListNotifications handles GET /api/v1/transactions/:id/notifications.
func (h *DashboardHandler) ListNotifications(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid uuid"))
		return
	}

	logs, err := h.reportingSvc.ListNotifications(c.Request.Context(), txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.NotificationLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, toNotificationResponse(&logs[i]))
	}
	response.OK(c, items)
}

// GetStats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	orgID, err := uuid.Parse(c.Query("org_id"))
	if err != nil {
		response.Error(c, apperror.Validation("org_id must be a valid uuid"))
		return
	}

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DashboardStatsResponse{
		TotalTransactions: stats.TotalTransactions,
		Approved:          stats.Approved,
		Declined:          stats.Declined,
		Voided:            stats.Voided,
		Errored:           stats.Errored,
		Pending:           stats.Pending,
		ApprovedAmount:    stats.ApprovedAmount,
	})
}

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	r := dto.TransactionResponse{
		ID:                    t.ID.String(),
		Provider:              string(t.Provider),
		ProviderTransactionID: t.ProviderTransactionID,
		ProviderReference:     t.ProviderReference,
		Status:                string(t.Status),
		Amount:                t.Amount,
		Currency:              t.Currency,
		CreatedAt:             t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:             t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.OrderID != nil {
		id := t.OrderID.String()
		r.OrderID = &id
	}
	if t.CompletedAt != nil {
		at := t.CompletedAt.UTC().Format(time.RFC3339)
		r.CompletedAt = &at
	}
	return r
}

func toNotificationResponse(l *domain.NotificationLog) dto.NotificationLogResponse {
	return dto.NotificationLogResponse{
		ID:         l.ID.String(),
		URL:        l.URL,
		HTTPStatus: l.HTTPStatus,
		Attempt:    l.Attempt,
		Status:     string(l.Status),
		LastError:  l.LastError,
		CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

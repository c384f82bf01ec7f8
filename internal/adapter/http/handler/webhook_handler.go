package handler

import (
	"errors"
	"net/http"
	"strings"

	"payment-webhook-engine/internal/adapter/http/dto"
	"payment-webhook-engine/internal/core/domain"
	"payment-webhook-engine/internal/core/ports"
	"payment-webhook-engine/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler receives inbound gateway webhooks. Its responses are shaped
// for gateway retry logic, not for the ops envelope: a 2xx acknowledges, any
// other status asks the gateway to redeliver.
type WebhookHandler struct {
	processor ports.WebhookProcessor
	log       zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(processor ports.WebhookProcessor, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, log: log}
}

// Handle handles POST /webhooks/payments/:provider?org=<slug>.
func (h *WebhookHandler) Handle(c *gin.Context) {
	provider, ok := domain.ParseProvider(c.Param("provider"))
	if !ok {
		writeWebhookError(c, apperror.ErrUnknownProvider())
		return
	}

	slug := c.Query("org")
	if !dto.ValidOrgSlug(slug) {
		writeWebhookError(c, apperror.ErrOrganizationNotFound())
		return
	}

	contentType, ok := classifyContentType(c.ContentType())
	if !ok {
		writeWebhookError(c, apperror.ErrUnsupportedContentType())
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
		return
	}

	result, err := h.processor.Process(c.Request.Context(), &domain.WebhookEnvelope{
		Provider:    provider,
		OrgSlug:     slug,
		ContentType: contentType,
		Body:        body,
	})
	if err != nil {
		writeWebhookError(c, err)
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// classifyContentType maps the declared media type onto the two formats the
// gateways actually send. An absent header is treated as JSON.
func classifyContentType(ct string) (domain.ContentType, bool) {
	switch {
	case ct == "", strings.HasPrefix(ct, "application/json"):
		return domain.ContentTypeJSON, true
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		return domain.ContentTypeForm, true
	default:
		return "", false
	}
}

func writeWebhookError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus represents the delivery state of a sale notification.
type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"
	NotificationStatusDelivered NotificationStatus = "delivered"
	NotificationStatusFailed    NotificationStatus = "failed"
)

// NotificationLog records each outbound sale-notification delivery attempt.
type NotificationLog struct {
	ID             uuid.UUID          `json:"id"`
	TransactionID  uuid.UUID          `json:"transaction_id"`
	OrganizationID uuid.UUID          `json:"organization_id"`
	URL            string             `json:"url"`
	Payload        string             `json:"payload"` // JSON string
	HTTPStatus     *int               `json:"http_status"`
	Attempt        int                `json:"attempt"`
	Status         NotificationStatus `json:"status"`
	LastError      *string            `json:"last_error"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

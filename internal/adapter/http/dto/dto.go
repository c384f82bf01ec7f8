package dto

// TransactionResponse is the ops API view of a stored transaction.
type TransactionResponse struct {
	ID                    string  `json:"id"`
	Provider              string  `json:"provider"`
	ProviderTransactionID string  `json:"provider_transaction_id"`
	ProviderReference     *string `json:"provider_reference,omitempty"`
	Status                string  `json:"status"`
	Amount                int64   `json:"amount"`
	Currency              string  `json:"currency"`
	OrderID               *string `json:"order_id,omitempty"`
	CompletedAt           *string `json:"completed_at,omitempty"`
	CreatedAt             string  `json:"created_at"`
	UpdatedAt             string  `json:"updated_at"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// DashboardStatsResponse is the response for dashboard statistics.
type DashboardStatsResponse struct {
	TotalTransactions int64 `json:"total_transactions"`
	Approved          int64 `json:"approved"`
	Declined          int64 `json:"declined"`
	Voided            int64 `json:"voided"`
	Errored           int64 `json:"errored"`
	Pending           int64 `json:"pending"`
	ApprovedAmount    int64 `json:"approved_amount"`
}

// NotificationLogResponse is one outbound delivery record.
type NotificationLogResponse struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	HTTPStatus *int    `json:"http_status,omitempty"`
	Attempt    int     `json:"attempt"`
	Status     string  `json:"status"`
	LastError  *string `json:"last_error,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

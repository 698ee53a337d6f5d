package dto

// InvoicePayRequest - прямое погашение счетов (админ).
// Approved по умолчанию true, как в исходном флоу.
// UserID позволяет админу погасить счета конкретного клиента;
// пустое значение - счета самого вызывающего.
type InvoicePayRequest struct {
	InvoiceIDs []string `json:"invoice_ids" validate:"required,min=1,dive,uuid4"`
	Approved   *bool    `json:"approved"`
	UserID     string   `json:"user_id" validate:"omitempty,uuid4"`
}

type InvoicePayResponse struct {
	ProcessedIDs []string `json:"processed_ids"`
	SkippedIDs   []string `json:"skipped_ids"`
}

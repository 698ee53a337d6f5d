package dto

// CreateInvoicePaymentRequest - запуск оплаты счетов через шлюз.
type CreateInvoicePaymentRequest struct {
	InvoiceIDs []string `json:"invoice_ids" validate:"required,min=1,dive,uuid4"`
}

// CreateSubscriptionPaymentRequest - запуск оплаты подписки через шлюз.
type CreateSubscriptionPaymentRequest struct {
	Plan   string `json:"plan" validate:"required,oneof=simple medium premium"`
	Period string `json:"period" validate:"required,oneof=month year"`
}

type PaymentRedirectResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// GatewayNotification - входящее уведомление шлюза.
// Сумма из уведомления никогда не применяется как есть: движок сверки
// пересчитывает ожидаемую сумму сам и сравнивает строки.
type GatewayNotification struct {
	Event  string               `json:"event"`
	Object GatewayPaymentObject `json:"object"`
}

type GatewayPaymentObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   GatewayAmount     `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

type GatewayAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// WebhookAck - ответ шлюзу.
type WebhookAck struct {
	Status string `json:"status"`
}

package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	InvoiceHandler      *InvoiceHandler
	SubscriptionHandler *SubscriptionHandler
	PaymentHandler      *PaymentHandler
}

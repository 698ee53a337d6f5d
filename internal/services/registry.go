package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	InvoiceService        InvoiceService
	SubscriptionService   SubscriptionService
	ReconciliationService ReconciliationService
}

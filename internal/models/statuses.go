package models

type UserRole string
type InvoiceStatus string
type PaymentStatus string
type TariffPlan string
type TariffPeriod string

const (
	UserRoleClient UserRole = "client"
	UserRoleAdmin  UserRole = "admin"

	InvoiceStatusNew      InvoiceStatus = "new"
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusCanceled InvoiceStatus = "canceled"

	PaymentStatusSuccess PaymentStatus = "success"

	TariffPlanSimple  TariffPlan = "simple"
	TariffPlanMedium  TariffPlan = "medium"
	TariffPlanPremium TariffPlan = "premium"

	TariffPeriodMonth TariffPeriod = "month"
	TariffPeriodYear  TariffPeriod = "year"
)

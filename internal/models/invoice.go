package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	BaseModel
	ClientID       string          `gorm:"type:uuid;not null;index" json:"-"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description    string          `gorm:"type:text" json:"description,omitempty"`
	ContractNumber string          `gorm:"type:varchar(64)" json:"contract_number,omitempty"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Status         InvoiceStatus   `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`

	// Relations
	Payments []Payment `gorm:"foreignKey:InvoiceID" json:"-"`
}

// Payment - append-only запись об успешной оплате счета.
// Никогда не изменяется после создания.
type Payment struct {
	BaseModel
	InvoiceID string          `gorm:"type:uuid;not null;index"`
	ClientID  string          `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status    PaymentStatus   `gorm:"type:varchar(32);not null;default:'success'"`
	PaidAt    time.Time
}

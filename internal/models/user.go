package models

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	Phone        string   `gorm:"type:varchar(32)"`
	Role         UserRole `gorm:"type:varchar(20);default:'client'"`

	// Денормализованный флаг, синхронизируется SubscriptionService.
	HasSubscription bool `gorm:"default:false"`

	// Relations
	Subscriptions []Subscription `gorm:"foreignKey:UserID"`
	Invoices      []Invoice      `gorm:"foreignKey:ClientID"`
}

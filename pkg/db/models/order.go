package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockline-backend/pkg/enums"
)

// Order is a committed sales order header. TotalAmount must always equal the
// sum of quantity × unit price over its lines; every line mutation adjusts it
// in the same transaction.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceNumber *string             `gorm:"column:invoice_number;unique"`
	OrderDate     time.Time           `gorm:"column:order_date;not null;index"`
	DeliveryDate  *time.Time          `gorm:"column:delivery_date;index"`
	ClientID      uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index:idx_order_client_status"`
	AddressID     *uuid.UUID          `gorm:"column:address_id;type:uuid;index"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'draft';index:idx_order_client_status"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'unpaid';index"`
	AmountPaid    decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null"`
	DueDate       *time.Time          `gorm:"column:due_date;index"`
	Lines         []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

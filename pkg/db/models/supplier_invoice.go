package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockline-backend/pkg/enums"
)

// SupplierInvoice is the header of a goods receipt. Re-submitting a receipt
// under the same supplier + invoice number appends to the existing header
// (multiple partial deliveries under one invoice).
type SupplierInvoice struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SupplierID    uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null;index;uniqueIndex:idx_supplier_invoice_reference"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null;uniqueIndex:idx_supplier_invoice_reference"`
	InvoiceDate   time.Time           `gorm:"column:invoice_date;not null;index"`
	DueDate       *time.Time          `gorm:"column:due_date;index"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	AmountPaid    decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'unpaid';index"`
	Deliveries    []IncomingDelivery  `gorm:"foreignKey:SupplierInvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

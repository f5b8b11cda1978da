package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomingDelivery is a single received line under a supplier invoice. The
// unit cost is the operator-entered cost frozen at receipt time; the line
// total is always derived from Quantity × UnitCost.
type IncomingDelivery struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SupplierInvoiceID uuid.UUID       `gorm:"column:supplier_invoice_id;type:uuid;not null;index"`
	SupplierID        uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	DeliveryDate      time.Time       `gorm:"column:delivery_date;not null;index"`
	Quantity          decimal.Decimal `gorm:"column:quantity;type:numeric(10,2);not null"`
	UnitCost          decimal.Decimal `gorm:"column:unit_cost;type:numeric(10,2);not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Total returns the derived line total.
func (d IncomingDelivery) Total() decimal.Decimal {
	return d.Quantity.Mul(d.UnitCost)
}

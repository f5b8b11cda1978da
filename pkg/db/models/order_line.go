package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is a single product position on an order. UnitPrice is the catalog
// price frozen at draft time; later catalog changes never touch it. The line
// total is always derived from Quantity × UnitPrice, never stored.
type OrderLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric(10,2);not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Total returns the derived line total.
func (l OrderLine) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

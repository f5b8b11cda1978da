package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel tracks the current on-hand quantity per product. The quantity is
// reconciled against stock_movements: it must always equal the sum of signed
// movement quantities for the product.
type StockLevel struct {
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric(10,2);not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

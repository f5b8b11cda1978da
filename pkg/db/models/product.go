package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. Price and cost here are the authoritative values
// captured onto order lines and deliveries at draft time; changing them never
// rewrites committed documents.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null;index"`
	SupplierID  *uuid.UUID      `gorm:"column:supplier_id;type:uuid;index"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	CostPerUnit decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(10,2);not null"`
	Description *string         `gorm:"column:description"`
	Stock       *StockLevel     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

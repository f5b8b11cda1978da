package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockline-backend/pkg/enums"
)

// StockMovement records an immutable signed stock change. Rows are append-only:
// corrections are new offsetting entries, never updates or deletes.
type StockMovement struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID                `gorm:"column:product_id;type:uuid;not null;index:idx_stock_movement_product_date"`
	MovementType   enums.MovementType       `gorm:"column:movement_type;not null;index"`
	QuantityChange decimal.Decimal          `gorm:"column:quantity_change;type:numeric(10,2);not null"`
	UnitCost       decimal.Decimal          `gorm:"column:unit_cost;type:numeric(10,2);not null"`
	SourceType     enums.SourceDocumentType `gorm:"column:source_document_type;not null;index"`
	SourceID       *uuid.UUID               `gorm:"column:source_document_id;type:uuid;index"`
	Description    string                   `gorm:"column:description"`
	MovementDate   time.Time                `gorm:"column:movement_date;not null;index:idx_stock_movement_product_date"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
}

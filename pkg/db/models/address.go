package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a delivery address belonging to a client.
type Address struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ClientID    uuid.UUID `gorm:"column:client_id;type:uuid;not null;index"`
	AddressText string    `gorm:"column:address_text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

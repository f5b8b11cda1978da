package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer the operation sells to.
type Client struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;index"`
	Addresses []Address `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

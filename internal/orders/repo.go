package orders

import (
	"context"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/angelmondragon/stockline-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository manages persistence for client orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByStatuses(ctx context.Context, statuses ...enums.OrderStatus) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, fields map[string]any) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	FindLineByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error)
	CreateLine(ctx context.Context, line *models.OrderLine) error
	UpdateLineQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
	SumLineTotalsByOrderID(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Lines {
		if order.Lines[i].ID == uuid.Nil {
			order.Lines[i].ID = uuid.New()
		}
		order.Lines[i].OrderID = order.ID
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByStatuses(ctx context.Context, statuses ...enums.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// DeleteOrder removes the order and its lines.
func (r *repository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("order_id = ?", id).Delete(&models.OrderLine{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Order{}).Error
}

func (r *repository) FindLineByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.OrderLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateLineQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.OrderLine{}).Error
}

func (r *repository) SumLineTotalsByOrderID(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Select("COALESCE(SUM(quantity * unit_price), 0) AS total").
		Where("order_id = ?", orderID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

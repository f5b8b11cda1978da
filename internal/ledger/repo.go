package ledger

import (
	"context"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for stock movements and stock levels.
// Movements are append-only; stock levels are the running balance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovementsByProductID(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
	SumMovementsByProductID(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
	GetStockLevel(ctx context.Context, productID uuid.UUID) (*models.StockLevel, error)
	AdjustStockLevel(ctx context.Context, productID uuid.UUID, delta decimal.Decimal) (*models.StockLevel, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovementsByProductID(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("movement_date ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repository) SumMovementsByProductID(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Select("COALESCE(SUM(quantity_change), 0) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *repository) GetStockLevel(ctx context.Context, productID uuid.UUID) (*models.StockLevel, error) {
	var level models.StockLevel
	if err := r.db.WithContext(ctx).First(&level, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

// AdjustStockLevel applies delta to the product's balance, creating the row
// when the product has no stock record yet. The upsert adds in SQL so
// concurrent commits against the same product never lose an increment.
func (r *repository) AdjustStockLevel(ctx context.Context, productID uuid.UUID, delta decimal.Decimal) (*models.StockLevel, error) {
	tx := r.db.WithContext(ctx)

	level := models.StockLevel{ProductID: productID, Quantity: delta}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("quantity + ?", delta),
		}),
	}).Create(&level).Error; err != nil {
		return nil, err
	}

	if err := tx.First(&level, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

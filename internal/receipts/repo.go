package receipts

import (
	"context"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository manages persistence for supplier invoices and their deliveries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindInvoiceByReference(ctx context.Context, supplierID uuid.UUID, invoiceNumber string) (*models.SupplierInvoice, error)
	CreateInvoice(ctx context.Context, invoice *models.SupplierInvoice) error
	AddToInvoiceTotal(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal) (*models.SupplierInvoice, error)
	CreateDelivery(ctx context.Context, delivery *models.IncomingDelivery) error
	SumDeliveriesByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a receipts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindInvoiceByReference(ctx context.Context, supplierID uuid.UUID, invoiceNumber string) (*models.SupplierInvoice, error) {
	var invoice models.SupplierInvoice
	if err := r.db.WithContext(ctx).
		First(&invoice, "supplier_id = ? AND invoice_number = ?", supplierID, invoiceNumber).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.SupplierInvoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(invoice).Error
}

// AddToInvoiceTotal increments the invoice total in place. Repeat deliveries
// against the same reference accumulate rather than replace; the increment
// happens in SQL so concurrent commits never lose an addition.
func (r *repository) AddToInvoiceTotal(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal) (*models.SupplierInvoice, error) {
	tx := r.db.WithContext(ctx)

	res := tx.Model(&models.SupplierInvoice{}).
		Where("id = ?", invoiceID).
		Update("total_amount", gorm.Expr("total_amount + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var invoice models.SupplierInvoice
	if err := tx.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) CreateDelivery(ctx context.Context, delivery *models.IncomingDelivery) error {
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(delivery).Error
}

func (r *repository) SumDeliveriesByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.IncomingDelivery{}).
		Select("COALESCE(SUM(quantity * unit_cost), 0) AS total").
		Where("supplier_invoice_id = ?", invoiceID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

package receipts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/angelmondragon/stockline-backend/pkg/enums"
)

func newInvoice(supplierID uuid.UUID, number string) *models.SupplierInvoice {
	return &models.SupplierInvoice{
		SupplierID:    supplierID,
		InvoiceNumber: number,
		InvoiceDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.Zero,
		AmountPaid:    decimal.Zero,
		PaymentStatus: enums.PaymentStatusUnpaid,
	}
}

func TestFindInvoiceByReference(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	supplierID, _, _ := mustCreateSupplierAndProducts(t, conn)

	created := newInvoice(supplierID, "INV-42")
	require.NoError(t, repo.CreateInvoice(ctx, created))
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindInvoiceByReference(ctx, supplierID, "INV-42")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "INV-42", found.InvoiceNumber)

	_, err = repo.FindInvoiceByReference(ctx, supplierID, "INV-missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindInvoiceByReference(ctx, uuid.New(), "INV-42")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "reference lookup is scoped per supplier")
}

func TestAddToInvoiceTotalAccumulates(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	supplierID, _, _ := mustCreateSupplierAndProducts(t, conn)

	invoice := newInvoice(supplierID, "INV-43")
	require.NoError(t, repo.CreateInvoice(ctx, invoice))

	updated, err := repo.AddToInvoiceTotal(ctx, invoice.ID, decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("50.00")))

	updated, err = repo.AddToInvoiceTotal(ctx, invoice.ID, decimal.RequireFromString("60.00"))
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("110.00")))

	var stored models.SupplierInvoice
	require.NoError(t, conn.First(&stored, "id = ?", invoice.ID).Error)
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("110.00")))

	_, err = repo.AddToInvoiceTotal(ctx, uuid.New(), decimal.RequireFromString("1.00"))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSumDeliveriesByInvoiceID(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	supplierID, flourID, butterID := mustCreateSupplierAndProducts(t, conn)

	invoice := newInvoice(supplierID, "INV-44")
	require.NoError(t, repo.CreateInvoice(ctx, invoice))

	deliveries := []*models.IncomingDelivery{
		{
			SupplierInvoiceID: invoice.ID,
			SupplierID:        supplierID,
			ProductID:         flourID,
			DeliveryDate:      invoice.InvoiceDate,
			Quantity:          decimal.RequireFromString("10"),
			UnitCost:          decimal.RequireFromString("5.00"),
		},
		{
			SupplierInvoiceID: invoice.ID,
			SupplierID:        supplierID,
			ProductID:         butterID,
			DeliveryDate:      invoice.InvoiceDate,
			Quantity:          decimal.RequireFromString("3"),
			UnitCost:          decimal.RequireFromString("20.00"),
		},
	}
	for _, d := range deliveries {
		require.NoError(t, repo.CreateDelivery(ctx, d))
		require.NotEqual(t, uuid.Nil, d.ID)
	}

	total, err := repo.SumDeliveriesByInvoiceID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("110.00")), "got %s", total)

	empty, err := repo.SumDeliveriesByInvoiceID(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestDuplicateInvoiceReferenceRejected(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	supplierID, _, _ := mustCreateSupplierAndProducts(t, conn)

	require.NoError(t, repo.CreateInvoice(ctx, newInvoice(supplierID, "INV-45")))
	err := repo.CreateInvoice(ctx, newInvoice(supplierID, "INV-45"))
	require.Error(t, err, "the unique reference index must reject duplicates")
}

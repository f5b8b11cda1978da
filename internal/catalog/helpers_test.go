package catalog

import (
	"testing"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func mustCreateTestSupplier(t *testing.T, tx *gorm.DB, name string) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.Create(supplier).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return supplier
}

func mustCreateTestClient(t *testing.T, tx *gorm.DB, name string) *models.Client {
	t.Helper()
	client := &models.Client{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.Create(client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, name string, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Price:       decimal.RequireFromString(price),
		CostPerUnit: decimal.RequireFromString(price),
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

package ledger

import (
	"context"
	"testing"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/angelmondragon/stockline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.StockMovement{}, &models.StockLevel{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func mustApply(t *testing.T, svc Service, conn *gorm.DB, input ApplyInput) *models.StockMovement {
	t.Helper()
	var movement *models.StockMovement
	err := conn.Transaction(func(tx *gorm.DB) error {
		var applyErr error
		movement, applyErr = svc.Apply(context.Background(), tx, input)
		return applyErr
	})
	if err != nil {
		t.Fatalf("apply movement: %v", err)
	}
	return movement
}

func TestApplyRequiresTransaction(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), nil, ApplyInput{
		ProductID:      uuid.New(),
		MovementType:   enums.MovementTypeIncoming,
		QuantityChange: decimal.NewFromInt(5),
		SourceType:     enums.SourceDocumentTypeDelivery,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestApplyValidatesInput(t *testing.T) {
	svc, conn := newTestService(t)

	tests := []struct {
		name  string
		input ApplyInput
	}{
		{
			name: "missing product id",
			input: ApplyInput{
				MovementType:   enums.MovementTypeIncoming,
				QuantityChange: decimal.NewFromInt(5),
				SourceType:     enums.SourceDocumentTypeDelivery,
			},
		},
		{
			name: "zero quantity",
			input: ApplyInput{
				ProductID:    uuid.New(),
				MovementType: enums.MovementTypeIncoming,
				SourceType:   enums.SourceDocumentTypeDelivery,
			},
		},
		{
			name: "invalid movement type",
			input: ApplyInput{
				ProductID:      uuid.New(),
				MovementType:   enums.MovementType("sideways"),
				QuantityChange: decimal.NewFromInt(5),
				SourceType:     enums.SourceDocumentTypeDelivery,
			},
		},
		{
			name: "invalid source type",
			input: ApplyInput{
				ProductID:      uuid.New(),
				MovementType:   enums.MovementTypeIncoming,
				QuantityChange: decimal.NewFromInt(5),
				SourceType:     enums.SourceDocumentType("napkin"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := conn.Transaction(func(tx *gorm.DB) error {
				_, applyErr := svc.Apply(context.Background(), tx, tc.input)
				return applyErr
			})
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApplyRecordsMovementAndAdjustsBalance(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	productID := uuid.New()

	mustApply(t, svc, conn, ApplyInput{
		ProductID:      productID,
		MovementType:   enums.MovementTypeIncoming,
		QuantityChange: decimal.RequireFromString("10"),
		UnitCost:       decimal.RequireFromString("5.00"),
		SourceType:     enums.SourceDocumentTypeDelivery,
	})
	mustApply(t, svc, conn, ApplyInput{
		ProductID:      productID,
		MovementType:   enums.MovementTypeOutgoing,
		QuantityChange: decimal.RequireFromString("-4"),
		SourceType:     enums.SourceDocumentTypeOrder,
	})

	balance, err := svc.StockQuantity(ctx, productID)
	if err != nil {
		t.Fatalf("stock quantity: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("expected balance 6, got %s", balance)
	}

	var count int64
	if err := conn.Model(&models.StockMovement{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 movements, got %d", count)
	}

	if err := svc.VerifyProduct(ctx, productID); err != nil {
		t.Fatalf("verify product: %v", err)
	}
}

func TestVerifyProductDetectsDrift(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	productID := uuid.New()

	mustApply(t, svc, conn, ApplyInput{
		ProductID:      productID,
		MovementType:   enums.MovementTypeIncoming,
		QuantityChange: decimal.NewFromInt(3),
		SourceType:     enums.SourceDocumentTypeDelivery,
	})

	if err := conn.Model(&models.StockLevel{}).
		Where("product_id = ?", productID).
		Update("quantity", decimal.NewFromInt(99)).Error; err != nil {
		t.Fatalf("corrupt stock level: %v", err)
	}

	if err := svc.VerifyProduct(ctx, productID); !pkgerrors.IsCode(err, pkgerrors.CodeInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestStockQuantityDefaultsToZero(t *testing.T) {
	svc, _ := newTestService(t)

	balance, err := svc.StockQuantity(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("stock quantity: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", balance)
	}
}

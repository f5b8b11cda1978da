package orders

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/stockline-backend/pkg/db"
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

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Client{},
		&models.Address{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.StockMovement{},
		&models.StockLevel{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(db.NewWithConn(conn), NewRepository(conn))
	if err != nil {
		t.Fatalf("new orders service: %v", err)
	}
	return svc, conn
}

func mustCreateClientAndProduct(t *testing.T, conn *gorm.DB) (uuid.UUID, uuid.UUID) {
	t.Helper()
	client := &models.Client{ID: uuid.New(), Name: "Bistro Nord"}
	if err := conn.Create(client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	product := &models.Product{
		ID:          uuid.New(),
		Name:        "Sourdough",
		Price:       decimal.RequireFromString("5.00"),
		CostPerUnit: decimal.RequireFromString("3.00"),
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return client.ID, product.ID
}

func mustCommitOrder(t *testing.T, svc Service, clientID, productID uuid.UUID, quantity, unitPrice string) *models.Order {
	t.Helper()
	order, err := svc.Commit(context.Background(), CommitInput{
		ClientID:     clientID,
		DeliveryDate: time.Now().UTC().AddDate(0, 0, 1).Truncate(24 * time.Hour),
		Lines: []LineInput{
			{
				ProductID: productID,
				Quantity:  decimal.RequireFromString(quantity),
				UnitPrice: decimal.RequireFromString(unitPrice),
			},
		},
	})
	if err != nil {
		t.Fatalf("commit order: %v", err)
	}
	return order
}

func TestCommitCreatesDraftOrderWithDerivedTotal(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)

	deliveryDate := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	order, err := svc.Commit(context.Background(), CommitInput{
		ClientID:     clientID,
		DeliveryDate: deliveryDate,
		Lines: []LineInput{
			{ProductID: productID, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("5.00")},
			{ProductID: productID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("7.50")},
		},
	})
	if err != nil {
		t.Fatalf("commit order: %v", err)
	}

	if order.Status != enums.OrderStatusDraft {
		t.Fatalf("expected draft status, got %q", order.Status)
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid status, got %q", order.PaymentStatus)
	}
	if !order.AmountPaid.IsZero() {
		t.Fatalf("expected zero amount paid, got %s", order.AmountPaid)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("65.00")) {
		t.Fatalf("expected total 65.00, got %s", order.TotalAmount)
	}
	wantDue := deliveryDate.AddDate(0, 0, 7)
	if order.DueDate == nil || !order.DueDate.Equal(wantDue) {
		t.Fatalf("expected due date %s, got %v", wantDue, order.DueDate)
	}
}

func TestChangeLineQuantityAdjustsTotal(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)
	order := mustCommitOrder(t, svc, clientID, productID, "10", "5.00")

	updated, err := svc.ChangeLineQuantity(context.Background(), order.ID, order.Lines[0].ID, decimal.NewFromInt(4))
	if err != nil {
		t.Fatalf("change line quantity: %v", err)
	}
	if !updated.TotalAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected total 20.00 after quantity change, got %s", updated.TotalAmount)
	}
	if !updated.Lines[0].Quantity.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected line quantity 4, got %s", updated.Lines[0].Quantity)
	}
}

func TestRemoveLineAdjustsTotal(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)

	order, err := svc.Commit(context.Background(), CommitInput{
		ClientID:     clientID,
		DeliveryDate: time.Now().UTC().AddDate(0, 0, 1),
		Lines: []LineInput{
			{ProductID: productID, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("5.00")},
			{ProductID: productID, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("2.00")},
		},
	})
	if err != nil {
		t.Fatalf("commit order: %v", err)
	}

	updated, err := svc.RemoveLine(context.Background(), order.ID, order.Lines[1].ID)
	if err != nil {
		t.Fatalf("remove line: %v", err)
	}
	if !updated.TotalAmount.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected total 50.00 after removal, got %s", updated.TotalAmount)
	}
	if len(updated.Lines) != 1 {
		t.Fatalf("expected 1 remaining line, got %d", len(updated.Lines))
	}
}

func TestAddLineAdjustsTotal(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)
	order := mustCommitOrder(t, svc, clientID, productID, "10", "5.00")

	updated, err := svc.AddLine(context.Background(), order.ID, LineInput{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(2),
		UnitPrice: decimal.RequireFromString("7.50"),
	})
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if !updated.TotalAmount.Equal(decimal.RequireFromString("65.00")) {
		t.Fatalf("expected total 65.00 after adding line, got %s", updated.TotalAmount)
	}
	if len(updated.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(updated.Lines))
	}
}

func TestChangeDeliveryDateMovesDueDate(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)
	order := mustCommitOrder(t, svc, clientID, productID, "1", "5.00")

	newDate := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.ChangeDeliveryDate(context.Background(), order.ID, newDate)
	if err != nil {
		t.Fatalf("change delivery date: %v", err)
	}
	if updated.DeliveryDate == nil || !updated.DeliveryDate.Equal(newDate) {
		t.Fatalf("expected delivery date %s, got %v", newDate, updated.DeliveryDate)
	}
	wantDue := newDate.AddDate(0, 0, 7)
	if updated.DueDate == nil || !updated.DueDate.Equal(wantDue) {
		t.Fatalf("expected due date %s, got %v", wantDue, updated.DueDate)
	}
}

func TestDeleteOrderLeavesStockAndLedgerUntouched(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)
	order := mustCommitOrder(t, svc, clientID, productID, "10", "5.00")

	if err := svc.DeleteOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}

	var orderCount, lineCount, movementCount, stockCount int64
	if err := conn.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := conn.Model(&models.OrderLine{}).Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if err := conn.Model(&models.StockMovement{}).Count(&movementCount).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if err := conn.Model(&models.StockLevel{}).Count(&stockCount).Error; err != nil {
		t.Fatalf("count stock levels: %v", err)
	}
	if orderCount != 0 || lineCount != 0 {
		t.Fatalf("expected order and lines deleted, got %d orders, %d lines", orderCount, lineCount)
	}
	if movementCount != 0 || stockCount != 0 {
		t.Fatalf("order lifecycle must not write movements or stock, got %d movements, %d stock rows", movementCount, stockCount)
	}
}

func TestEditRejectedForNonEditableOrder(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)
	order := mustCommitOrder(t, svc, clientID, productID, "10", "5.00")

	if err := conn.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", enums.OrderStatusConfirmed).Error; err != nil {
		t.Fatalf("confirm order: %v", err)
	}

	_, err := svc.ChangeLineQuantity(context.Background(), order.ID, order.Lines[0].ID, decimal.NewFromInt(1))
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state-conflict error, got %v", err)
	}
}

func TestEditReportsStaleReferences(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)
	order := mustCommitOrder(t, svc, clientID, productID, "10", "5.00")

	if _, err := svc.ChangeLineQuantity(context.Background(), order.ID, uuid.New(), decimal.NewFromInt(1)); !pkgerrors.IsCode(err, pkgerrors.CodeStale) {
		t.Fatalf("expected stale error for missing line, got %v", err)
	}
	if _, err := svc.ChangeLineQuantity(context.Background(), uuid.New(), order.Lines[0].ID, decimal.NewFromInt(1)); !pkgerrors.IsCode(err, pkgerrors.CodeStale) {
		t.Fatalf("expected stale error for missing order, got %v", err)
	}
}

func TestListEditableFiltersByStatus(t *testing.T) {
	svc, conn := newTestService(t)
	clientID, productID := mustCreateClientAndProduct(t, conn)

	open := mustCommitOrder(t, svc, clientID, productID, "1", "5.00")
	closed := mustCommitOrder(t, svc, clientID, productID, "2", "5.00")
	if err := conn.Model(&models.Order{}).
		Where("id = ?", closed.ID).
		Update("status", enums.OrderStatusDelivered).Error; err != nil {
		t.Fatalf("deliver order: %v", err)
	}

	orders, err := svc.ListEditable(context.Background())
	if err != nil {
		t.Fatalf("list editable: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != open.ID {
		t.Fatalf("expected only the open order, got %+v", orders)
	}
}

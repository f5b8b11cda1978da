package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/angelmondragon/stockline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// paymentTermDays is how long after delivery an order falls due.
const paymentTermDays = 7

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service persists confirmed order drafts and edits committed orders.
// Orders never touch stock or the movement ledger; fulfilment is a separate
// concern. Every edit runs in its own transaction and re-derives the order
// total from its lines.
type Service interface {
	Commit(ctx context.Context, input CommitInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListEditable(ctx context.Context) ([]models.Order, error)
	ChangeLineQuantity(ctx context.Context, orderID, lineID uuid.UUID, quantity decimal.Decimal) (*models.Order, error)
	RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*models.Order, error)
	AddLine(ctx context.Context, orderID uuid.UUID, input LineInput) (*models.Order, error)
	ChangeDeliveryDate(ctx context.Context, orderID uuid.UUID, deliveryDate time.Time) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

// CommitInput is the confirmed order draft handed over for persistence.
type CommitInput struct {
	ClientID     uuid.UUID
	AddressID    *uuid.UUID
	DeliveryDate time.Time
	Lines        []LineInput
}

// LineInput is a single ordered product line. UnitPrice is the catalog price
// captured when the product was selected.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

type service struct {
	tx   txRunner
	repo Repository
}

// NewService builds the orders service.
func NewService(tx txRunner, repo Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) Commit(ctx context.Context, input CommitInput) (*models.Order, error) {
	if err := validateCommitInput(input); err != nil {
		return nil, err
	}

	deliveryDate := input.DeliveryDate
	dueDate := deliveryDate.AddDate(0, 0, paymentTermDays)

	order := &models.Order{
		OrderDate:     time.Now().UTC(),
		DeliveryDate:  &deliveryDate,
		ClientID:      input.ClientID,
		AddressID:     input.AddressID,
		Status:        enums.OrderStatusDraft,
		PaymentStatus: enums.PaymentStatusUnpaid,
		AmountPaid:    decimal.Zero,
		DueDate:       &dueDate,
	}
	total := decimal.Zero
	for _, line := range input.Lines {
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
		total = total.Add(line.Quantity.Mul(line.UnitPrice))
	}
	order.TotalAmount = total

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return verifyOrderTotal(ctx, repo, order.ID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		return nil, orderLoadError(err)
	}
	return order, nil
}

// ListEditable returns the orders still open for modification.
func (s *service) ListEditable(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.ListByStatuses(ctx, enums.OrderStatusDraft, enums.OrderStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list editable orders")
	}
	return orders, nil
}

func (s *service) ChangeLineQuantity(ctx context.Context, orderID, lineID uuid.UUID, quantity decimal.Decimal) (*models.Order, error) {
	if !quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	return s.editOrder(ctx, orderID, func(repo Repository, order *models.Order) error {
		line, err := s.orderLine(ctx, repo, order, lineID)
		if err != nil {
			return err
		}
		newTotal := order.TotalAmount.
			Sub(line.Total()).
			Add(quantity.Mul(line.UnitPrice))
		if err := repo.UpdateLineQuantity(ctx, line.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update line quantity")
		}
		return updateOrderTotal(ctx, repo, order.ID, newTotal)
	})
}

func (s *service) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*models.Order, error) {
	return s.editOrder(ctx, orderID, func(repo Repository, order *models.Order) error {
		line, err := s.orderLine(ctx, repo, order, lineID)
		if err != nil {
			return err
		}
		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete line")
		}
		return updateOrderTotal(ctx, repo, order.ID, order.TotalAmount.Sub(line.Total()))
	})
}

func (s *service) AddLine(ctx context.Context, orderID uuid.UUID, input LineInput) (*models.Order, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}

	return s.editOrder(ctx, orderID, func(repo Repository, order *models.Order) error {
		line := &models.OrderLine{
			OrderID:   order.ID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
		}
		if err := repo.CreateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create line")
		}
		return updateOrderTotal(ctx, repo, order.ID, order.TotalAmount.Add(line.Total()))
	})
}

func (s *service) ChangeDeliveryDate(ctx context.Context, orderID uuid.UUID, deliveryDate time.Time) (*models.Order, error) {
	if deliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date is required")
	}

	dueDate := deliveryDate.AddDate(0, 0, paymentTermDays)
	return s.editOrder(ctx, orderID, func(repo Repository, order *models.Order) error {
		return repoUpdateError(repo.UpdateOrder(ctx, order.ID, map[string]any{
			"delivery_date": deliveryDate,
			"due_date":      dueDate,
		}))
	})
}

func (s *service) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.editableOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
		}
		return nil
	})
}

// editOrder runs one edit in its own transaction against an editable order,
// then re-checks that the stored total matches the sum of the lines.
func (s *service) editOrder(ctx context.Context, orderID uuid.UUID, fn func(repo Repository, order *models.Order) error) (*models.Order, error) {
	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.editableOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if err := fn(repo, order); err != nil {
			return err
		}
		if err := verifyOrderTotal(ctx, repo, order.ID); err != nil {
			return err
		}
		result, err = repo.FindOrderByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) editableOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, orderLoadError(err)
	}
	if !order.Status.IsEditable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %q can no longer be edited", order.Status))
	}
	return order, nil
}

func (s *service) orderLine(ctx context.Context, repo Repository, order *models.Order, lineID uuid.UUID) (*models.OrderLine, error) {
	line, err := repo.FindLineByID(ctx, lineID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeStale, "order line no longer exists")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order line")
	}
	if line.OrderID != order.ID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line does not belong to this order")
	}
	return line, nil
}

func updateOrderTotal(ctx context.Context, repo Repository, orderID uuid.UUID, total decimal.Decimal) error {
	return repoUpdateError(repo.UpdateOrder(ctx, orderID, map[string]any{"total_amount": total}))
}

func verifyOrderTotal(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	order, err := repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}
	lineTotal, err := repo.SumLineTotalsByOrderID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum order lines")
	}
	if !order.TotalAmount.Equal(lineTotal) {
		return pkgerrors.New(pkgerrors.CodeInvariant,
			fmt.Sprintf("order total %s diverges from line total %s", order.TotalAmount, lineTotal))
	}
	return nil
}

func repoUpdateError(err error) error {
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
	}
	return nil
}

func orderLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeStale, "order no longer exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}

func validateCommitInput(input CommitInput) error {
	if input.ClientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	if input.DeliveryDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery date is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}
	for i, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: product id is required", i+1))
		}
		if !line.Quantity.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unit price must not be negative", i+1))
		}
	}
	return nil
}

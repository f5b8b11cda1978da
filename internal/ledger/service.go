package ledger

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

// Service records stock movements and keeps the stock balance in lockstep
// with the movement ledger. Apply must run inside the caller's transaction so
// the movement row and the balance update commit or roll back together.
type Service interface {
	Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.StockMovement, error)
	StockQuantity(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
	VerifyProduct(ctx context.Context, productID uuid.UUID) error
}

// ApplyInput captures the immutable data a stock movement requires.
type ApplyInput struct {
	ProductID      uuid.UUID
	MovementType   enums.MovementType
	QuantityChange decimal.Decimal
	UnitCost       decimal.Decimal
	SourceType     enums.SourceDocumentType
	SourceID       *uuid.UUID
	Description    string
	MovementDate   time.Time
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.StockMovement, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvariant, "stock movement applied outside a transaction")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.MovementType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement type %q", input.MovementType))
	}
	if !input.SourceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid source document type %q", input.SourceType))
	}
	if input.QuantityChange.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity change must be non-zero")
	}

	movementDate := input.MovementDate
	if movementDate.IsZero() {
		movementDate = time.Now().UTC()
	}

	repo := s.repo.WithTx(tx)
	movement := &models.StockMovement{
		ProductID:      input.ProductID,
		MovementType:   input.MovementType,
		QuantityChange: input.QuantityChange,
		UnitCost:       input.UnitCost,
		SourceType:     input.SourceType,
		SourceID:       input.SourceID,
		Description:    input.Description,
		MovementDate:   movementDate,
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record stock movement")
	}
	if _, err := repo.AdjustStockLevel(ctx, input.ProductID, input.QuantityChange); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust stock level")
	}
	return movement, nil
}

// StockQuantity returns the current balance, zero when the product has no
// stock record yet.
func (s *service) StockQuantity(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	level, err := s.repo.GetStockLevel(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock level")
	}
	return level.Quantity, nil
}

// VerifyProduct checks that the stored balance equals the sum of the
// product's movements.
func (s *service) VerifyProduct(ctx context.Context, productID uuid.UUID) error {
	balance, err := s.StockQuantity(ctx, productID)
	if err != nil {
		return err
	}
	total, err := s.repo.SumMovementsByProductID(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum stock movements")
	}
	if !balance.Equal(total) {
		return pkgerrors.New(pkgerrors.CodeInvariant,
			fmt.Sprintf("stock balance %s diverges from movement total %s for product %s", balance, total, productID))
	}
	return nil
}

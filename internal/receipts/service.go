package receipts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/stockline-backend/internal/ledger"
	"github.com/angelmondragon/stockline-backend/pkg/db"
	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/angelmondragon/stockline-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const invoiceReferenceIndex = "idx_supplier_invoice_reference"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a confirmed goods-receipt draft into durable rows: invoice
// header, one delivery per line, and matching stock movements. The whole
// receipt commits atomically or not at all.
type Service interface {
	Commit(ctx context.Context, input CommitInput) (*CommitResult, error)
}

// CommitInput is the confirmed draft handed over for persistence.
type CommitInput struct {
	SupplierID    uuid.UUID
	InvoiceNumber string
	InvoiceDate   time.Time
	Lines         []LineInput
}

// LineInput is a single received product line.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// CommitResult reports what the commit wrote.
type CommitResult struct {
	Invoice    *models.SupplierInvoice
	Deliveries []models.IncomingDelivery
}

type service struct {
	tx        txRunner
	repo      Repository
	ledgerSvc ledger.Service
}

// NewService builds the receipt commit service.
func NewService(tx txRunner, repo Repository, ledgerSvc ledger.Service) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("receipts repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{tx: tx, repo: repo, ledgerSvc: ledgerSvc}, nil
}

func (s *service) Commit(ctx context.Context, input CommitInput) (*CommitResult, error) {
	if err := validateCommitInput(input); err != nil {
		return nil, err
	}

	var result *CommitResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invoice, err := s.findOrCreateInvoice(ctx, repo, input)
		if err != nil {
			return err
		}

		deliveries := make([]models.IncomingDelivery, 0, len(input.Lines))
		receiptTotal := decimal.Zero
		for _, line := range input.Lines {
			delivery := models.IncomingDelivery{
				SupplierInvoiceID: invoice.ID,
				SupplierID:        input.SupplierID,
				ProductID:         line.ProductID,
				DeliveryDate:      input.InvoiceDate,
				Quantity:          line.Quantity,
				UnitCost:          line.UnitCost,
			}
			if err := repo.CreateDelivery(ctx, &delivery); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create delivery")
			}

			deliveryID := delivery.ID
			if _, err := s.ledgerSvc.Apply(ctx, tx, ledger.ApplyInput{
				ProductID:      line.ProductID,
				MovementType:   enums.MovementTypeIncoming,
				QuantityChange: line.Quantity,
				UnitCost:       line.UnitCost,
				SourceType:     enums.SourceDocumentTypeDelivery,
				SourceID:       &deliveryID,
				Description:    fmt.Sprintf("delivery against invoice %s", input.InvoiceNumber),
				MovementDate:   input.InvoiceDate,
			}); err != nil {
				return err
			}

			deliveries = append(deliveries, delivery)
			receiptTotal = receiptTotal.Add(delivery.Total())
		}

		invoice, err = repo.AddToInvoiceTotal(ctx, invoice.ID, receiptTotal)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update invoice total")
		}

		deliveredTotal, err := repo.SumDeliveriesByInvoiceID(ctx, invoice.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum invoice deliveries")
		}
		if !invoice.TotalAmount.Equal(deliveredTotal) {
			return pkgerrors.New(pkgerrors.CodeInvariant,
				fmt.Sprintf("invoice total %s diverges from delivered total %s", invoice.TotalAmount, deliveredTotal))
		}

		result = &CommitResult{Invoice: invoice, Deliveries: deliveries}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// findOrCreateInvoice loads the header for the supplier + invoice number
// pair, creating it when the receipt is the first one under that reference.
// A concurrent create racing on the unique reference index surfaces as a
// conflict the caller can retry.
func (s *service) findOrCreateInvoice(ctx context.Context, repo Repository, input CommitInput) (*models.SupplierInvoice, error) {
	invoice, err := repo.FindInvoiceByReference(ctx, input.SupplierID, input.InvoiceNumber)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invoice")
	}

	invoice = &models.SupplierInvoice{
		SupplierID:    input.SupplierID,
		InvoiceNumber: input.InvoiceNumber,
		InvoiceDate:   input.InvoiceDate,
		TotalAmount:   decimal.Zero,
		AmountPaid:    decimal.Zero,
		PaymentStatus: enums.PaymentStatusUnpaid,
	}
	if err := repo.CreateInvoice(ctx, invoice); err != nil {
		if db.IsUniqueViolation(err, invoiceReferenceIndex) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice reference already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create invoice")
	}
	return invoice, nil
}

func validateCommitInput(input CommitInput) error {
	if input.SupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	if strings.TrimSpace(input.InvoiceNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice number must not be empty")
	}
	if input.InvoiceDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice date is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "receipt must contain at least one line")
	}
	for i, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: product id is required", i+1))
		}
		if !line.Quantity.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if line.UnitCost.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unit cost must not be negative", i+1))
		}
	}
	return nil
}

package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/stockline-backend/internal/receipts"
	"github.com/angelmondragon/stockline-backend/internal/session"
	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
)

func (e *Engine) handleSupplierSelect(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	supplierID, ok := parseUUIDToken(event.Payload, tokenPrefixSupplier)
	if !ok {
		return e.promptSupplierList(ctx, sess)
	}

	supplier, err := e.catalogSvc.GetSupplier(ctx, supplierID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		p, perr := e.promptSupplierList(ctx, sess)
		if perr != nil {
			return nil, perr
		}
		p.Text = "That supplier is no longer available. " + p.Text
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	sess.Draft.SupplierID = supplier.ID
	sess.Draft.SupplierName = supplier.Name
	sess.State = stateInvoiceDate
	return e.promptInvoiceDates(sess), nil
}

func (e *Engine) handleInvoiceDate(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	date, ok := parseDateToken(event.Payload)
	if !ok {
		return e.promptInvoiceDates(sess), nil
	}

	sess.Draft.InvoiceDate = date
	sess.State = stateInvoiceNumber
	return prompt(sess.ID, "Enter the invoice number."), nil
}

func (e *Engine) handleInvoiceNumber(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	number := strings.TrimSpace(event.Payload)
	if event.Kind != EventKindText || number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "The invoice number must not be empty.")
	}

	sess.Draft.InvoiceNumber = number
	sess.State = stateReceiptProduct
	return e.promptProductList(ctx, sess, "Select the received product.")
}

func (e *Engine) handleReceiptProduct(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	productID, ok := parseUUIDToken(event.Payload, tokenPrefixProduct)
	if !ok {
		return e.promptProductList(ctx, sess, "Select the received product.")
	}

	product, err := e.catalogSvc.GetProduct(ctx, productID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		p, perr := e.promptProductList(ctx, sess, "Select the received product.")
		if perr != nil {
			return nil, perr
		}
		p.Text = "That product is no longer available. " + p.Text
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	sess.Draft.Pending = session.DraftLine{
		ProductID:   product.ID,
		ProductName: product.Name,
	}
	sess.State = stateReceiptQuantity
	return prompt(sess.ID, fmt.Sprintf("How much %s was received?", product.Name)), nil
}

func (e *Engine) handleReceiptQuantity(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	quantity, err := parseQuantity(event.Payload)
	if err != nil {
		return nil, err
	}

	sess.Draft.Pending.Quantity = quantity
	sess.State = stateReceiptCost
	return prompt(sess.ID, "Enter the unit cost."), nil
}

func (e *Engine) handleReceiptCost(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	cost, err := parseUnitCost(event.Payload)
	if err != nil {
		return nil, err
	}

	sess.Draft.Pending.UnitCost = cost
	line := sess.Draft.Pending
	sess.Draft.PromotePending()
	sess.State = stateReceiptLineDone
	text := fmt.Sprintf("Added %s: %s × %s = %s.",
		line.ProductName, line.Quantity.String(), formatMoney(line.UnitCost), formatMoney(line.CostTotal()))
	return prompt(sess.ID, text, lineConfirmOptions()...), nil
}

func (e *Engine) handleReceiptLineDone(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	switch event.Payload {
	case tokenAddLine:
		sess.State = stateReceiptProduct
		return e.promptProductList(ctx, sess, "Select the received product.")
	case tokenFinish:
		if len(sess.Draft.Lines) == 0 {
			return prompt(sess.ID, "Nothing has been added yet. Add at least one product.", lineConfirmOptions()...), nil
		}
		sess.State = stateReceiptConfirm
		text := fmt.Sprintf("Receipt from %s, invoice %s. %s. Commit?",
			sess.Draft.SupplierName, sess.Draft.InvoiceNumber,
			draftSummary(sess.Draft.Lines, sess.Draft.CostTotal(), true))
		return prompt(sess.ID, text, confirmOptions()...), nil
	}
	return prompt(sess.ID, "Add another product or finish.", lineConfirmOptions()...), nil
}

func (e *Engine) handleReceiptConfirm(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	if event.Payload != tokenConfirm {
		return prompt(sess.ID, "Commit the receipt?", confirmOptions()...), nil
	}

	input := receipts.CommitInput{
		SupplierID:    sess.Draft.SupplierID,
		InvoiceNumber: sess.Draft.InvoiceNumber,
		InvoiceDate:   sess.Draft.InvoiceDate,
	}
	for _, line := range sess.Draft.Lines {
		input.Lines = append(input.Lines, receipts.LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
		})
	}

	start := time.Now()
	result, err := e.receipts.Commit(ctx, input)
	e.observeCommit(sess.Workflow, start, err)
	if err != nil {
		return nil, err
	}

	if e.logg != nil {
		e.logg.Info(ctx, fmt.Sprintf("receipt committed: invoice %s, %d lines", result.Invoice.ID, len(result.Deliveries)))
	}
	text := fmt.Sprintf("Receipt committed. Invoice %s now totals %s.",
		result.Invoice.InvoiceNumber, formatMoney(result.Invoice.TotalAmount))
	return e.reset(sess, text), nil
}

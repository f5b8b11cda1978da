package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/stockline-backend/internal/session"
	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

func formatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func (e *Engine) promptSupplierList(ctx context.Context, sess *session.Session) (*Prompt, error) {
	suppliers, err := e.catalogSvc.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	if len(suppliers) == 0 {
		return e.reset(sess, "No suppliers are registered yet."), nil
	}
	options := make([]Option, 0, len(suppliers))
	for _, supplier := range suppliers {
		options = append(options, Option{
			Label: supplier.Name,
			Token: tokenPrefixSupplier + supplier.ID.String(),
		})
	}
	return prompt(sess.ID, "Select the supplier.", options...), nil
}

func (e *Engine) promptProductList(ctx context.Context, sess *session.Session, text string) (*Prompt, error) {
	products, err := e.catalogSvc.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return e.reset(sess, "The product catalog is empty."), nil
	}
	options := make([]Option, 0, len(products))
	for _, product := range products {
		options = append(options, Option{
			Label: fmt.Sprintf("%s (%s)", product.Name, formatMoney(product.Price)),
			Token: tokenPrefixProduct + product.ID.String(),
		})
	}
	return prompt(sess.ID, text, options...), nil
}

func (e *Engine) promptAddressList(ctx context.Context, sess *session.Session) (*Prompt, error) {
	addresses, err := e.catalogSvc.ListClientAddresses(ctx, sess.Draft.ClientID)
	if err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(addresses)+1)
	for _, address := range addresses {
		options = append(options, Option{
			Label: address.AddressText,
			Token: tokenPrefixAddress + address.ID.String(),
		})
	}
	options = append(options, Option{Label: "Enter a new address", Token: tokenNewAddr})
	return prompt(sess.ID, "Select the delivery address.", options...), nil
}

// promptInvoiceDates offers a window of dates around today for backdated or
// upcoming paperwork.
func (e *Engine) promptInvoiceDates(sess *session.Session) *Prompt {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	options := make([]Option, 0, 2*e.dateWindow+1)
	for offset := -e.dateWindow; offset <= e.dateWindow; offset++ {
		date := today.AddDate(0, 0, offset)
		label := date.Format(dateTokenLayout)
		if offset == 0 {
			label += " (today)"
		}
		options = append(options, Option{
			Label: label,
			Token: tokenPrefixDate + date.Format(dateTokenLayout),
		})
	}
	return prompt(sess.ID, "Select the invoice date.", options...)
}

// promptDeliveryDates offers the next few days for rescheduling an order.
func (e *Engine) promptDeliveryDates(sess *session.Session) *Prompt {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	options := make([]Option, 0, e.dateWindow)
	for offset := 1; offset <= e.dateWindow; offset++ {
		date := today.AddDate(0, 0, offset)
		options = append(options, Option{
			Label: date.Format(dateTokenLayout),
			Token: tokenPrefixDate + date.Format(dateTokenLayout),
		})
	}
	return prompt(sess.ID, "Select the new delivery date.", options...)
}

func (e *Engine) promptEditableOrders(ctx context.Context, sess *session.Session) (*Prompt, error) {
	editable, err := e.orders.ListEditable(ctx)
	if err != nil {
		return nil, err
	}
	if len(editable) == 0 {
		return e.reset(sess, "There are no orders open for editing."), nil
	}
	options := make([]Option, 0, len(editable))
	for _, order := range editable {
		label := fmt.Sprintf("%s - %s (%s)",
			order.OrderDate.Format(dateTokenLayout), formatMoney(order.TotalAmount), order.Status)
		options = append(options, Option{
			Label: label,
			Token: tokenPrefixOrder + order.ID.String(),
		})
	}
	return prompt(sess.ID, "Select the order to edit.", options...), nil
}

// promptOrderMenu renders the committed order and its edit actions. This is
// the named internal transition every edit operation returns through.
func (e *Engine) promptOrderMenu(ctx context.Context, sess *session.Session) (*Prompt, error) {
	order, err := e.orders.GetOrder(ctx, sess.Draft.OrderID)
	if err != nil {
		return nil, err
	}
	sess.State = stateOrderMenu

	text := fmt.Sprintf("Order of %s, total %s, %d lines. What next?",
		order.OrderDate.Format(dateTokenLayout), formatMoney(order.TotalAmount), len(order.Lines))
	return prompt(sess.ID, text,
		Option{Label: "Change a line quantity", Token: tokenPrefixAction + actionChangeQty},
		Option{Label: "Delete a line", Token: tokenPrefixAction + actionDeleteLine},
		Option{Label: "Add a product", Token: tokenPrefixAction + actionAddLine},
		Option{Label: "Change delivery date", Token: tokenPrefixAction + actionChangeDate},
		Option{Label: "Delete the order", Token: tokenPrefixAction + actionDelete},
		Option{Label: "Done", Token: tokenCancel},
	), nil
}

func (e *Engine) promptOrderLines(ctx context.Context, sess *session.Session, text string) (*Prompt, error) {
	order, err := e.orders.GetOrder(ctx, sess.Draft.OrderID)
	if err != nil {
		return nil, err
	}
	if len(order.Lines) == 0 {
		return e.promptOrderMenuWithNote(ctx, sess, "The order has no lines.")
	}
	options := make([]Option, 0, len(order.Lines))
	for _, line := range order.Lines {
		options = append(options, Option{
			Label: e.describeLine(ctx, line),
			Token: tokenPrefixLine + line.ID.String(),
		})
	}
	return prompt(sess.ID, text, options...), nil
}

func (e *Engine) describeLine(ctx context.Context, line models.OrderLine) string {
	name := "product"
	if product, err := e.catalogSvc.GetProduct(ctx, line.ProductID); err == nil {
		name = product.Name
	}
	return fmt.Sprintf("%s: %s × %s = %s",
		name, line.Quantity.String(), formatMoney(line.UnitPrice), formatMoney(line.Total()))
}

func (e *Engine) promptOrderMenuWithNote(ctx context.Context, sess *session.Session, note string) (*Prompt, error) {
	p, err := e.promptOrderMenu(ctx, sess)
	if err != nil {
		return nil, err
	}
	p.Text = note + " " + p.Text
	return p, nil
}

func lineConfirmOptions() []Option {
	return []Option{
		{Label: "Add another product", Token: tokenAddLine},
		{Label: "Finish", Token: tokenFinish},
	}
}

func confirmOptions() []Option {
	return []Option{
		{Label: "Confirm", Token: tokenConfirm},
		{Label: "Cancel", Token: tokenCancel},
	}
}

func draftSummary(lines []session.DraftLine, total decimal.Decimal, useCost bool) string {
	summary := ""
	for _, line := range lines {
		unit := line.UnitPrice
		lineTotal := line.PriceTotal()
		if useCost {
			unit = line.UnitCost
			lineTotal = line.CostTotal()
		}
		summary += fmt.Sprintf("%s: %s × %s = %s; ",
			line.ProductName, line.Quantity.String(), formatMoney(unit), formatMoney(lineTotal))
	}
	return summary + "total " + formatMoney(total)
}

package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/stockline-backend/internal/orders"
	"github.com/angelmondragon/stockline-backend/internal/session"
	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
)

func (e *Engine) handleOrderPick(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	orderID, ok := parseUUIDToken(event.Payload, tokenPrefixOrder)
	if !ok {
		return e.promptEditableOrders(ctx, sess)
	}

	order, err := e.orders.GetOrder(ctx, orderID)
	if pkgerrors.IsCode(err, pkgerrors.CodeStale) {
		p, perr := e.promptEditableOrders(ctx, sess)
		if perr != nil {
			return nil, perr
		}
		p.Text = "That order is no longer available. " + p.Text
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	sess.Draft.OrderID = order.ID
	return e.promptOrderMenu(ctx, sess)
}

func (e *Engine) handleOrderMenu(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	action, ok := tokenValue(event.Payload, tokenPrefixAction)
	if !ok {
		return e.promptOrderMenu(ctx, sess)
	}

	switch action {
	case actionChangeQty:
		sess.State = stateEditLinePick
		return e.promptOrderLines(ctx, sess, "Which line's quantity should change?")
	case actionDeleteLine:
		sess.State = stateDeleteLinePick
		return e.promptOrderLines(ctx, sess, "Which line should be removed?")
	case actionAddLine:
		sess.State = stateAddProductPick
		return e.promptProductList(ctx, sess, "Select the product to add.")
	case actionChangeDate:
		sess.State = stateEditDatePick
		return e.promptDeliveryDates(sess), nil
	case actionDelete:
		sess.State = stateDeleteConfirm
		return prompt(sess.ID, "Delete the whole order? This cannot be undone.", confirmOptions()...), nil
	}
	return e.promptOrderMenu(ctx, sess)
}

func (e *Engine) handleEditLinePick(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	lineID, ok := parseUUIDToken(event.Payload, tokenPrefixLine)
	if !ok {
		return e.promptOrderLines(ctx, sess, "Which line's quantity should change?")
	}

	sess.Draft.LineID = lineID
	sess.State = stateEditLineQty
	return prompt(sess.ID, "Enter the new quantity."), nil
}

func (e *Engine) handleEditLineQty(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	quantity, err := parseQuantity(event.Payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	order, err := e.orders.ChangeLineQuantity(ctx, sess.Draft.OrderID, sess.Draft.LineID, quantity)
	e.observeCommit(sess.Workflow, start, err)
	if pkgerrors.IsCode(err, pkgerrors.CodeStale) {
		sess.State = stateEditLinePick
		return e.promptOrderLines(ctx, sess, "That line is gone. Which line's quantity should change?")
	}
	if err != nil {
		return nil, err
	}

	return e.promptOrderMenuWithNote(ctx, sess,
		fmt.Sprintf("Quantity updated, order total is now %s.", formatMoney(order.TotalAmount)))
}

func (e *Engine) handleDeleteLinePick(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	lineID, ok := parseUUIDToken(event.Payload, tokenPrefixLine)
	if !ok {
		return e.promptOrderLines(ctx, sess, "Which line should be removed?")
	}

	start := time.Now()
	order, err := e.orders.RemoveLine(ctx, sess.Draft.OrderID, lineID)
	e.observeCommit(sess.Workflow, start, err)
	if pkgerrors.IsCode(err, pkgerrors.CodeStale) {
		return e.promptOrderLines(ctx, sess, "That line is gone. Which line should be removed?")
	}
	if err != nil {
		return nil, err
	}

	return e.promptOrderMenuWithNote(ctx, sess,
		fmt.Sprintf("Line removed, order total is now %s.", formatMoney(order.TotalAmount)))
}

func (e *Engine) handleAddProductPick(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	productID, ok := parseUUIDToken(event.Payload, tokenPrefixProduct)
	if !ok {
		return e.promptProductList(ctx, sess, "Select the product to add.")
	}

	product, err := e.catalogSvc.GetProduct(ctx, productID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		p, perr := e.promptProductList(ctx, sess, "Select the product to add.")
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
		UnitPrice:   product.Price,
	}
	sess.State = stateAddProductQty
	return prompt(sess.ID, fmt.Sprintf("How much %s? (price %s)", product.Name, formatMoney(product.Price))), nil
}

func (e *Engine) handleAddProductQty(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	quantity, err := parseQuantity(event.Payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	order, err := e.orders.AddLine(ctx, sess.Draft.OrderID, orders.LineInput{
		ProductID: sess.Draft.Pending.ProductID,
		Quantity:  quantity,
		UnitPrice: sess.Draft.Pending.UnitPrice,
	})
	e.observeCommit(sess.Workflow, start, err)
	if err != nil {
		return nil, err
	}

	sess.Draft.Pending = session.DraftLine{}
	return e.promptOrderMenuWithNote(ctx, sess,
		fmt.Sprintf("Product added, order total is now %s.", formatMoney(order.TotalAmount)))
}

func (e *Engine) handleEditDatePick(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	date, ok := parseDateToken(event.Payload)
	if !ok {
		return e.promptDeliveryDates(sess), nil
	}

	start := time.Now()
	_, err := e.orders.ChangeDeliveryDate(ctx, sess.Draft.OrderID, date)
	e.observeCommit(sess.Workflow, start, err)
	if err != nil {
		return nil, err
	}

	return e.promptOrderMenuWithNote(ctx, sess,
		fmt.Sprintf("Delivery moved to %s.", date.Format(dateTokenLayout)))
}

func (e *Engine) handleDeleteConfirm(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	if event.Payload != tokenConfirm {
		return e.promptOrderMenu(ctx, sess)
	}

	start := time.Now()
	err := e.orders.DeleteOrder(ctx, sess.Draft.OrderID)
	e.observeCommit(sess.Workflow, start, err)
	if err != nil {
		return nil, err
	}

	if e.logg != nil {
		e.logg.Info(ctx, fmt.Sprintf("order deleted: %s", sess.Draft.OrderID))
	}
	return e.reset(sess, "Order deleted. Stock and the movement ledger were not touched."), nil
}

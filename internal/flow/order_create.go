package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/stockline-backend/internal/orders"
	"github.com/angelmondragon/stockline-backend/internal/session"
	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
)

func (e *Engine) handleClientSearch(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	if event.Kind != EventKindText {
		return prompt(sess.ID, "Type part of the client's name to search."), nil
	}

	clients, err := e.catalogSvc.SearchClients(ctx, event.Payload)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return prompt(sess.ID, "No clients match. Try a different name."), nil
	}

	options := make([]Option, 0, len(clients))
	for _, client := range clients {
		options = append(options, Option{
			Label: client.Name,
			Token: tokenPrefixClient + client.ID.String(),
		})
	}
	sess.State = stateClientSelect
	return prompt(sess.ID, "Select the client.", options...), nil
}

func (e *Engine) handleClientSelect(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	clientID, ok := parseUUIDToken(event.Payload, tokenPrefixClient)
	if !ok {
		return prompt(sess.ID, "Select one of the listed clients, or type a new search."), nil
	}

	client, err := e.catalogSvc.GetClient(ctx, clientID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		sess.State = stateClientSearch
		return prompt(sess.ID, "That client is no longer available. Type a name to search again."), nil
	}
	if err != nil {
		return nil, err
	}

	sess.Draft.ClientID = client.ID
	sess.Draft.ClientName = client.Name
	sess.State = stateAddressSelect
	return e.promptAddressList(ctx, sess)
}

func (e *Engine) handleAddressSelect(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	if event.Payload == tokenNewAddr {
		sess.State = stateAddressEnter
		return prompt(sess.ID, "Type the new delivery address."), nil
	}

	addressID, ok := parseUUIDToken(event.Payload, tokenPrefixAddress)
	if !ok {
		return e.promptAddressList(ctx, sess)
	}

	address, err := e.catalogSvc.GetAddress(ctx, addressID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		p, perr := e.promptAddressList(ctx, sess)
		if perr != nil {
			return nil, perr
		}
		p.Text = "That address is no longer available. " + p.Text
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	if address.ClientID != sess.Draft.ClientID {
		return e.promptAddressList(ctx, sess)
	}

	id := address.ID
	sess.Draft.AddressID = &id
	sess.State = stateOrderProduct
	return e.promptProductList(ctx, sess, "Select a product.")
}

func (e *Engine) handleAddressEnter(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	if event.Kind != EventKindText || strings.TrimSpace(event.Payload) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "The address must not be empty.")
	}

	address, err := e.catalogSvc.AddClientAddress(ctx, sess.Draft.ClientID, event.Payload)
	if err != nil {
		return nil, err
	}

	id := address.ID
	sess.Draft.AddressID = &id
	sess.State = stateOrderProduct
	return e.promptProductList(ctx, sess, "Select a product.")
}

func (e *Engine) handleOrderProduct(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	productID, ok := parseUUIDToken(event.Payload, tokenPrefixProduct)
	if !ok {
		return e.promptProductList(ctx, sess, "Select a product.")
	}

	product, err := e.catalogSvc.GetProduct(ctx, productID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		p, perr := e.promptProductList(ctx, sess, "Select a product.")
		if perr != nil {
			return nil, perr
		}
		p.Text = "That product is no longer available. " + p.Text
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	// Price is captured from the catalog at selection time; the operator
	// only ever enters quantities.
	sess.Draft.Pending = session.DraftLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
	}
	sess.State = stateOrderQuantity
	return prompt(sess.ID, fmt.Sprintf("How much %s? (price %s)", product.Name, formatMoney(product.Price))), nil
}

func (e *Engine) handleOrderQuantity(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	quantity, err := parseQuantity(event.Payload)
	if err != nil {
		return nil, err
	}

	sess.Draft.Pending.Quantity = quantity
	line := sess.Draft.Pending
	sess.Draft.PromotePending()
	if sess.Draft.DeliveryDate.IsZero() {
		sess.Draft.DeliveryDate = time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	}

	sess.State = stateOrderLineDone
	text := fmt.Sprintf("Added %s: %s × %s = %s.",
		line.ProductName, line.Quantity.String(), formatMoney(line.UnitPrice), formatMoney(line.PriceTotal()))
	return prompt(sess.ID, text, lineConfirmOptions()...), nil
}

func (e *Engine) handleOrderLineDone(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	switch event.Payload {
	case tokenAddLine:
		sess.State = stateOrderProduct
		return e.promptProductList(ctx, sess, "Select a product.")
	case tokenFinish:
		if len(sess.Draft.Lines) == 0 {
			return prompt(sess.ID, "Nothing has been added yet. Add at least one product.", lineConfirmOptions()...), nil
		}
		sess.State = stateOrderConfirm
		text := fmt.Sprintf("Order for %s, delivery %s. %s. Commit?",
			sess.Draft.ClientName, sess.Draft.DeliveryDate.Format(dateTokenLayout),
			draftSummary(sess.Draft.Lines, sess.Draft.PriceTotal(), false))
		return prompt(sess.ID, text, confirmOptions()...), nil
	}
	return prompt(sess.ID, "Add another product or finish.", lineConfirmOptions()...), nil
}

func (e *Engine) handleOrderConfirm(ctx context.Context, sess *session.Session, event Event) (*Prompt, error) {
	if event.Payload != tokenConfirm {
		return prompt(sess.ID, "Commit the order?", confirmOptions()...), nil
	}

	input := orders.CommitInput{
		ClientID:     sess.Draft.ClientID,
		AddressID:    sess.Draft.AddressID,
		DeliveryDate: sess.Draft.DeliveryDate,
	}
	for _, line := range sess.Draft.Lines {
		input.Lines = append(input.Lines, orders.LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	start := time.Now()
	order, err := e.orders.Commit(ctx, input)
	e.observeCommit(sess.Workflow, start, err)
	if err != nil {
		return nil, err
	}

	if e.logg != nil {
		e.logg.Info(ctx, fmt.Sprintf("order committed: %s, %d lines", order.ID, len(order.Lines)))
	}
	text := fmt.Sprintf("Order committed for %s, total %s.", sess.Draft.ClientName, formatMoney(order.TotalAmount))
	return e.reset(sess, text), nil
}

package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftLine is one product line under construction. Line totals are always
// derived from quantity and the captured unit figures, never stored.
type DraftLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	UnitCost    decimal.Decimal
}

// PriceTotal is quantity × unit price (sales side).
func (l DraftLine) PriceTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// CostTotal is quantity × unit cost (purchasing side).
func (l DraftLine) CostTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// Draft is the accumulating, not-yet-committed transaction a session is
// building. One struct serves all workflows; each flow touches only the
// fields it needs.
type Draft struct {
	SupplierID    uuid.UUID
	SupplierName  string
	InvoiceNumber string
	InvoiceDate   time.Time

	ClientID     uuid.UUID
	ClientName   string
	AddressID    *uuid.UUID
	DeliveryDate time.Time

	// Order-edit context: the committed order and line being worked on.
	OrderID uuid.UUID
	LineID  uuid.UUID

	// Pending is the line currently being filled in, promoted into Lines
	// once complete.
	Pending DraftLine
	Lines   []DraftLine
}

// PriceTotal sums the confirmed lines at their captured unit prices.
func (d Draft) PriceTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.PriceTotal())
	}
	return total
}

// CostTotal sums the confirmed lines at their captured unit costs.
func (d Draft) CostTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.CostTotal())
	}
	return total
}

// PromotePending moves the line under construction into the confirmed lines.
func (d *Draft) PromotePending() {
	d.Lines = append(d.Lines, d.Pending)
	d.Pending = DraftLine{}
}

// Session is the unit of isolation: one conversation, one workflow, one
// draft. Events for the same session are processed strictly one at a time.
type Session struct {
	ID        string
	Workflow  string
	State     string
	Draft     Draft
	UpdatedAt time.Time
}

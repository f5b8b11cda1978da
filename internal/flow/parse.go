package flow

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateTokenLayout = "2006-01-02"

// parseQuantity accepts operator-entered amounts, tolerating a decimal comma.
func parseQuantity(raw string) (decimal.Decimal, error) {
	value, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a number")
	}
	if !value.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	return value, nil
}

// parseUnitCost accepts zero (free goods, samples) but not negatives.
func parseUnitCost(raw string) (decimal.Decimal, error) {
	value, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unit cost must be a number")
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unit cost must not be negative")
	}
	return value, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return decimal.NewFromString(normalized)
}

func parseUUIDToken(payload, prefix string) (uuid.UUID, bool) {
	value, ok := strings.CutPrefix(payload, prefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseDateToken(payload string) (time.Time, bool) {
	value, ok := strings.CutPrefix(payload, tokenPrefixDate)
	if !ok {
		return time.Time{}, false
	}
	date, err := time.Parse(dateTokenLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func tokenValue(payload, prefix string) (string, bool) {
	return strings.CutPrefix(payload, prefix)
}

package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// InvalidTradeTypeError reports a trade type outside the supported set.
type InvalidTradeTypeError struct {
	TradeType string
}

func (e *InvalidTradeTypeError) Error() string {
	return "invalid trade type: " + e.TradeType
}

// InvalidQuantityError reports a non-positive transaction quantity.
type InvalidQuantityError struct {
	Quantity decimal.Decimal
}

func (e *InvalidQuantityError) Error() string {
	return "quantity must be > 0, got " + e.Quantity.String()
}

// CashAssetRequiredError reports a DEPOSIT/WITHDRAW against a non-cash asset,
// or a BUY/SELL placed directly against a cash asset.
type CashAssetRequiredError struct {
	AssetID   string
	TradeType string
}

func (e *CashAssetRequiredError) Error() string {
	return fmt.Sprintf("trade type %s is not allowed for asset %s", e.TradeType, e.AssetID)
}

// CashAssetNotFoundError reports that no cash asset exists for a currency,
// so a mirror transaction cannot be placed.
type CashAssetNotFoundError struct {
	Currency string
}

func (e *CashAssetNotFoundError) Error() string {
	return "no cash asset found for currency " + e.Currency
}

// AmbiguousMirrorError reports more than one auto-cash mirror for one
// originating transaction. The service refuses to guess which to touch.
type AmbiguousMirrorError struct {
	TransactionID string
	Count         int
}

func (e *AmbiguousMirrorError) Error() string {
	return fmt.Sprintf("found %d auto-cash mirrors for transaction %s, expected exactly one", e.Count, e.TransactionID)
}

// InsufficientPositionError reports a SELL exceeding the held quantity.
type InsufficientPositionError struct {
	AccountID string
	AssetID   string
	Requested decimal.Decimal
	Held      decimal.Decimal
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("insufficient position for account %s asset %s: sell %s, held %s",
		e.AccountID, e.AssetID, e.Requested.String(), e.Held.String())
}

// NegativeCostBasisError reports a manual cost-basis batch that would drive a
// balance below zero. The write fails as a whole; nothing is clamped.
type NegativeCostBasisError struct {
	AccountID string
	AssetID   string
	Resulting decimal.Decimal
}

func (e *NegativeCostBasisError) Error() string {
	return fmt.Sprintf("cost basis for account %s asset %s would become negative (%s)",
		e.AccountID, e.AssetID, e.Resulting.String())
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
)

// TradeType enumerates the supported ledger entry kinds.
type TradeType string

const (
	TradeTypeBuy      TradeType = "BUY"
	TradeTypeSell     TradeType = "SELL"
	TradeTypeInit     TradeType = "INIT"
	TradeTypeDeposit  TradeType = "DEPOSIT"
	TradeTypeWithdraw TradeType = "WITHDRAW"
)

// Valid reports whether the trade type belongs to the supported set.
func (t TradeType) Valid() bool {
	switch t {
	case TradeTypeBuy, TradeTypeSell, TradeTypeInit, TradeTypeDeposit, TradeTypeWithdraw:
		return true
	}
	return false
}

// IsTrade reports whether the type is a priced security trade (BUY/SELL/INIT).
func (t TradeType) IsTrade() bool {
	return t == TradeTypeBuy || t == TradeTypeSell || t == TradeTypeInit
}

// IsCashFlow reports whether the type is a cash movement (DEPOSIT/WITHDRAW).
func (t TradeType) IsCashFlow() bool {
	return t == TradeTypeDeposit || t == TradeTypeWithdraw
}

// DateOnly truncates a timestamp to its UTC calendar day. Ledger dates and
// snapshot keys are day-granular.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Transaction represents a single ledger entry, immutable once settled except
// through explicit update/delete
type Transaction struct {
	ID        string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	AccountID string          `json:"account_id" gorm:"column:account_id;type:varchar(255);not null;index:idx_transactions_pair"`
	AssetID   string          `json:"asset_id" gorm:"column:asset_id;type:varchar(255);not null;index:idx_transactions_pair"`
	Date      time.Time       `json:"date" gorm:"column:date;type:date;not null;index"`
	TradeType TradeType       `json:"trade_type" gorm:"column:trade_type;type:varchar(20);not null;index"`
	Quantity  decimal.Decimal `json:"quantity" gorm:"column:quantity;type:decimal(30,18);not null"`
	Price     decimal.Decimal `json:"price" gorm:"column:price;type:decimal(30,18);not null"`
	Fee       decimal.Decimal `json:"fee" gorm:"column:fee;type:decimal(30,18);not null;default:0"`
	Tax       decimal.Decimal `json:"tax" gorm:"column:tax;type:decimal(30,18);not null;default:0"`
	Memo      *string         `json:"memo" gorm:"column:memo;type:text"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// GrossAmount is the cash a BUY consumes: quantity*price + fee + tax.
func (t *Transaction) GrossAmount() decimal.Decimal {
	return t.Quantity.Mul(t.Price).Add(t.Fee).Add(t.Tax)
}

// NetProceeds is the cash a SELL yields: quantity*price - fee - tax, floored at 0.
func (t *Transaction) NetProceeds() decimal.Decimal {
	proceeds := t.Quantity.Mul(t.Price).Sub(t.Fee).Sub(t.Tax)
	if proceeds.IsNegative() {
		return decimal.Zero
	}
	return proceeds
}

// Validate checks the shape of the transaction. Rules that need the asset
// (cash-only trade types) live in the transaction service.
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return &errors.ErrValidation{Field: "date", Message: "date is required"}
	}
	if t.AccountID == "" {
		return &errors.ErrValidation{Field: "account_id", Message: "account_id is required"}
	}
	if t.AssetID == "" {
		return &errors.ErrValidation{Field: "asset_id", Message: "asset_id is required"}
	}
	if !t.TradeType.Valid() {
		return &errors.InvalidTradeTypeError{TradeType: string(t.TradeType)}
	}
	if !t.Quantity.IsPositive() {
		return &errors.InvalidQuantityError{Quantity: t.Quantity}
	}
	if t.TradeType.IsTrade() && !t.Price.IsPositive() {
		return &errors.ErrValidation{Field: "price", Message: "price must be > 0 for BUY/SELL/INIT"}
	}
	if t.TradeType.IsCashFlow() && !t.Price.Equal(decimal.NewFromInt(1)) {
		return &errors.ErrValidation{Field: "price", Message: "price must be 1 for DEPOSIT/WITHDRAW"}
	}
	if t.Fee.IsNegative() {
		return &errors.ErrValidation{Field: "fee", Message: "fee must be non-negative"}
	}
	if t.Tax.IsNegative() {
		return &errors.ErrValidation{Field: "tax", Message: "tax must be non-negative"}
	}
	return nil
}

// PreSave assigns an ID when missing, day-truncates the date, and validates
func (t *Transaction) PreSave() error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Date = DateOnly(t.Date)
	return t.Validate()
}

// TransactionFilter represents filters for querying transactions
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Types     []TradeType
	Assets    []string
	Accounts  []string
	Limit     int
	Offset    int
}

// TradedPair is one (account, asset) combination present in the ledger,
// with the date of its earliest transaction.
type TradedPair struct {
	AccountID string    `gorm:"column:account_id"`
	AssetID   string    `gorm:"column:asset_id"`
	FirstDate time.Time `gorm:"column:first_date"`
}

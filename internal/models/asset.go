package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
)

// PriceSource describes how an asset is valued. The set is closed: every
// decision point (validation, mirroring, rebuild, price refresh) switches
// exhaustively over it.
type PriceSource string

const (
	// PriceSourceMarket assets are valued at quantity times the feed price.
	PriceSourceMarket PriceSource = "market"
	// PriceSourceManual assets are valued by hand; automatic jobs never touch them.
	PriceSourceManual PriceSource = "manual"
	// PriceSourceCash assets hold currency at a fixed price of 1.
	PriceSourceCash PriceSource = "cash"
)

// Valid reports whether the price source is one of the supported kinds.
func (p PriceSource) Valid() bool {
	switch p {
	case PriceSourceMarket, PriceSourceManual, PriceSourceCash:
		return true
	}
	return false
}

// Asset represents a tradable instrument or a cash bucket
type Asset struct {
	ID           string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	Ticker       string          `json:"ticker" gorm:"column:ticker;type:varchar(50);not null;index"`
	Name         string          `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Currency     string          `json:"currency" gorm:"column:currency;type:varchar(10);not null;index"`
	PriceSource  PriceSource     `json:"price_source" gorm:"column:price_source;type:varchar(20);not null;index"`
	CurrentPrice decimal.Decimal `json:"current_price" gorm:"column:current_price;type:decimal(30,18);not null;default:0"`
	CreatedAt    time.Time       `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

// TableName returns the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}

// Validate validates the asset data
func (a *Asset) Validate() error {
	if a.Ticker == "" {
		return &errors.ErrValidation{Field: "ticker", Message: "ticker is required"}
	}
	if len(a.Ticker) > 50 {
		return &errors.ErrValidation{Field: "ticker", Message: "ticker must be 50 characters or less"}
	}
	if a.Currency == "" {
		return &errors.ErrValidation{Field: "currency", Message: "currency is required"}
	}
	if !a.PriceSource.Valid() {
		return &errors.ErrValidation{Field: "price_source", Message: "price_source must be market, manual or cash"}
	}
	if a.CurrentPrice.IsNegative() {
		return &errors.ErrValidation{Field: "current_price", Message: "current_price must be non-negative"}
	}
	return nil
}

// PreSave assigns an ID when missing, pins cash prices to 1, and validates
func (a *Asset) PreSave() error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.PriceSource == PriceSourceCash {
		a.CurrentPrice = decimal.NewFromInt(1)
	}
	return a.Validate()
}

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
)

// AssetDailyPrice caches one dated close per asset, appended on each
// successful price refresh and read back as a benchmark close series.
type AssetDailyPrice struct {
	ID        uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	AssetID   string          `json:"asset_id" gorm:"column:asset_id;type:varchar(255);not null;uniqueIndex:idx_asset_daily_prices_key"`
	Date      time.Time       `json:"date" gorm:"column:date;type:date;not null;uniqueIndex:idx_asset_daily_prices_key"`
	Close     decimal.Decimal `json:"close" gorm:"column:close;type:decimal(30,18);not null"`
	Source    string          `json:"source" gorm:"column:source;type:varchar(100);not null;default:''"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the AssetDailyPrice model
func (AssetDailyPrice) TableName() string {
	return "asset_daily_prices"
}

// Validate checks the price row before persistence
func (p *AssetDailyPrice) Validate() error {
	if p.AssetID == "" {
		return &errors.ErrValidation{Field: "asset_id", Message: "asset_id is required"}
	}
	if p.Date.IsZero() {
		return &errors.ErrValidation{Field: "date", Message: "date is required"}
	}
	if !p.Close.IsPositive() {
		return &errors.ErrValidation{Field: "close", Message: "close must be positive"}
	}
	return nil
}

// PreSave normalizes the row before persistence
func (p *AssetDailyPrice) PreSave() error {
	p.Date = DateOnly(p.Date)
	return p.Validate()
}

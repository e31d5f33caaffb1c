package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySnapshot is one derived valuation row per (date, account, asset).
// Rows are recomputed idempotently; no row exists for a day on which the
// position quantity is zero.
type DailySnapshot struct {
	ID              uint            `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	Date            time.Time       `json:"date" gorm:"column:date;type:date;not null;uniqueIndex:idx_daily_snapshots_key"`
	AccountID       string          `json:"account_id" gorm:"column:account_id;type:varchar(255);not null;uniqueIndex:idx_daily_snapshots_key"`
	AssetID         string          `json:"asset_id" gorm:"column:asset_id;type:varchar(255);not null;uniqueIndex:idx_daily_snapshots_key"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"column:quantity;type:decimal(30,18);not null"`
	PurchasePrice   decimal.Decimal `json:"purchase_price" gorm:"column:purchase_price;type:decimal(30,18);not null"`
	PurchaseAmount  decimal.Decimal `json:"purchase_amount" gorm:"column:purchase_amount;type:decimal(30,18);not null"`
	ValuationPrice  decimal.Decimal `json:"valuation_price" gorm:"column:valuation_price;type:decimal(30,18);not null"`
	ValuationAmount decimal.Decimal `json:"valuation_amount" gorm:"column:valuation_amount;type:decimal(30,18);not null"`
	Currency        string          `json:"currency" gorm:"column:currency;type:varchar(10);not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

// TableName returns the table name for the DailySnapshot model
func (DailySnapshot) TableName() string {
	return "daily_snapshots"
}

// SnapshotFilter represents filters for querying snapshots.
// AccountID may be the AllAccounts token to drop the account constraint.
type SnapshotFilter struct {
	AccountID string
	AssetID   string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

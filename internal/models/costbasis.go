package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
)

// ManualCostBasisEvent is one append-only adjustment to a hand-valued
// position's cost basis. Deltas may be negative; the materialized balance
// never may.
type ManualCostBasisEvent struct {
	ID          string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	AccountID   string          `json:"account_id" gorm:"column:account_id;type:varchar(255);not null;index:idx_cost_basis_events_pair"`
	AssetID     string          `json:"asset_id" gorm:"column:asset_id;type:varchar(255);not null;index:idx_cost_basis_events_pair"`
	EventDate   time.Time       `json:"event_date" gorm:"column:event_date;type:date;not null"`
	DeltaAmount decimal.Decimal `json:"delta_amount" gorm:"column:delta_amount;type:decimal(30,18);not null"`
	Currency    string          `json:"currency" gorm:"column:currency;type:varchar(10);not null"`
	Reason      string          `json:"reason" gorm:"column:reason;type:varchar(255)"`
	Memo        *string         `json:"memo" gorm:"column:memo;type:text"`
	CreatedAt   time.Time       `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
}

// TableName returns the table name for the ManualCostBasisEvent model
func (ManualCostBasisEvent) TableName() string {
	return "manual_cost_basis_events"
}

// Validate validates the event data
func (e *ManualCostBasisEvent) Validate() error {
	if e.AccountID == "" {
		return &errors.ErrValidation{Field: "account_id", Message: "account_id is required"}
	}
	if e.AssetID == "" {
		return &errors.ErrValidation{Field: "asset_id", Message: "asset_id is required"}
	}
	if e.EventDate.IsZero() {
		return &errors.ErrValidation{Field: "event_date", Message: "event_date is required"}
	}
	if e.Currency == "" {
		return &errors.ErrValidation{Field: "currency", Message: "currency is required"}
	}
	if e.DeltaAmount.IsZero() {
		return &errors.ErrValidation{Field: "delta_amount", Message: "delta_amount must be non-zero"}
	}
	return nil
}

// PreSave assigns an ID when missing, day-truncates the date, and validates
func (e *ManualCostBasisEvent) PreSave() error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.EventDate = DateOnly(e.EventDate)
	return e.Validate()
}

// ManualCostBasisCurrent is the materialized running balance per
// (account, asset), recomputed from the prior balance plus each batch's deltas.
type ManualCostBasisCurrent struct {
	AccountID       string          `json:"account_id" gorm:"primaryKey;column:account_id;type:varchar(255)"`
	AssetID         string          `json:"asset_id" gorm:"primaryKey;column:asset_id;type:varchar(255)"`
	CostBasisAmount decimal.Decimal `json:"cost_basis_amount" gorm:"column:cost_basis_amount;type:decimal(30,18);not null"`
	Currency        string          `json:"currency" gorm:"column:currency;type:varchar(10);not null"`
	AsOfDate        time.Time       `json:"as_of_date" gorm:"column:as_of_date;type:date;not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

// TableName returns the table name for the ManualCostBasisCurrent model
func (ManualCostBasisCurrent) TableName() string {
	return "manual_cost_basis_current"
}

// CostBasisKey identifies one (account, asset) balance.
type CostBasisKey struct {
	AccountID string
	AssetID   string
}

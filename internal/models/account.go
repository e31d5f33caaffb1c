package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
)

// AllAccounts is the account-scope token meaning "across every account".
const AllAccounts = "__ALL__"

// Account represents a brokerage or bank account holding positions
type Account struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	Name      string    `json:"name" gorm:"column:name;type:varchar(100);not null"`
	Currency  string    `json:"currency" gorm:"column:currency;type:varchar(10);not null"`
	Owner     string    `json:"owner" gorm:"column:owner;type:varchar(100);index"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

// TableName returns the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// Validate validates the account data
func (a *Account) Validate() error {
	if a.Name == "" {
		return &errors.ErrValidation{Field: "name", Message: "name is required"}
	}
	if len(a.Name) > 100 {
		return &errors.ErrValidation{Field: "name", Message: "name must be 100 characters or less"}
	}
	if a.Currency == "" {
		return &errors.ErrValidation{Field: "currency", Message: "currency is required"}
	}
	return nil
}

// PreSave assigns an ID when missing and validates
func (a *Account) PreSave() error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return a.Validate()
}

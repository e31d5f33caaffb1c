package models

import (
	goerrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
)

func TestTransactionValidate(t *testing.T) {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		transaction   *Transaction
		expectError   bool
		expectedError string
	}{
		{
			name: "Valid BUY",
			transaction: &Transaction{
				AccountID: "acct-1",
				AssetID:   "asset-1",
				Date:      date,
				TradeType: TradeTypeBuy,
				Quantity:  decimal.NewFromInt(10),
				Price:     decimal.NewFromInt(100),
			},
			expectError: false,
		},
		{
			name: "Valid DEPOSIT at price 1",
			transaction: &Transaction{
				AccountID: "acct-1",
				AssetID:   "cash-krw",
				Date:      date,
				TradeType: TradeTypeDeposit,
				Quantity:  decimal.NewFromInt(500000),
				Price:     decimal.NewFromInt(1),
			},
			expectError: false,
		},
		{
			name: "Missing account",
			transaction: &Transaction{
				AssetID:   "asset-1",
				Date:      date,
				TradeType: TradeTypeBuy,
				Quantity:  decimal.NewFromInt(1),
				Price:     decimal.NewFromInt(1),
			},
			expectError:   true,
			expectedError: "account_id: account_id is required",
		},
		{
			name: "Unknown trade type",
			transaction: &Transaction{
				AccountID: "acct-1",
				AssetID:   "asset-1",
				Date:      date,
				TradeType: TradeType("SHORT"),
				Quantity:  decimal.NewFromInt(1),
				Price:     decimal.NewFromInt(1),
			},
			expectError:   true,
			expectedError: "invalid trade type: SHORT",
		},
		{
			name: "Zero quantity",
			transaction: &Transaction{
				AccountID: "acct-1",
				AssetID:   "asset-1",
				Date:      date,
				TradeType: TradeTypeSell,
				Quantity:  decimal.Zero,
				Price:     decimal.NewFromInt(100),
			},
			expectError:   true,
			expectedError: "quantity must be > 0, got 0",
		},
		{
			name: "BUY without price",
			transaction: &Transaction{
				AccountID: "acct-1",
				AssetID:   "asset-1",
				Date:      date,
				TradeType: TradeTypeBuy,
				Quantity:  decimal.NewFromInt(10),
				Price:     decimal.Zero,
			},
			expectError:   true,
			expectedError: "price: price must be > 0 for BUY/SELL/INIT",
		},
		{
			name: "WITHDRAW at price other than 1",
			transaction: &Transaction{
				AccountID: "acct-1",
				AssetID:   "cash-krw",
				Date:      date,
				TradeType: TradeTypeWithdraw,
				Quantity:  decimal.NewFromInt(1000),
				Price:     decimal.NewFromInt(2),
			},
			expectError:   true,
			expectedError: "price: price must be 1 for DEPOSIT/WITHDRAW",
		},
		{
			name: "Negative fee",
			transaction: &Transaction{
				AccountID: "acct-1",
				AssetID:   "asset-1",
				Date:      date,
				TradeType: TradeTypeBuy,
				Quantity:  decimal.NewFromInt(1),
				Price:     decimal.NewFromInt(10),
				Fee:       decimal.NewFromInt(-1),
			},
			expectError:   true,
			expectedError: "fee: fee must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transaction.Validate()

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
					return
				}
				if tt.expectedError != "" && err.Error() != tt.expectedError {
					t.Errorf("Expected error '%s' but got '%s'", tt.expectedError, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
			}
		})
	}
}

func TestTransactionValidateErrorTypes(t *testing.T) {
	tx := &Transaction{
		AccountID: "acct-1",
		AssetID:   "asset-1",
		Date:      time.Now(),
		TradeType: TradeType("bogus"),
		Quantity:  decimal.NewFromInt(1),
		Price:     decimal.NewFromInt(1),
	}

	var tradeTypeErr *errors.InvalidTradeTypeError
	if !goerrors.As(tx.Validate(), &tradeTypeErr) {
		t.Fatalf("expected InvalidTradeTypeError, got %v", tx.Validate())
	}

	tx.TradeType = TradeTypeBuy
	tx.Quantity = decimal.NewFromInt(-3)
	var qtyErr *errors.InvalidQuantityError
	if !goerrors.As(tx.Validate(), &qtyErr) {
		t.Fatalf("expected InvalidQuantityError, got %v", tx.Validate())
	}
}

func TestTransactionAmounts(t *testing.T) {
	tx := &Transaction{
		Quantity: decimal.NewFromInt(10),
		Price:    decimal.NewFromInt(100),
		Fee:      decimal.NewFromInt(5),
		Tax:      decimal.NewFromInt(2),
	}

	if got, want := tx.GrossAmount(), decimal.NewFromInt(1007); !got.Equal(want) {
		t.Errorf("GrossAmount = %s, want %s", got, want)
	}
	if got, want := tx.NetProceeds(), decimal.NewFromInt(993); !got.Equal(want) {
		t.Errorf("NetProceeds = %s, want %s", got, want)
	}

	// Fees above proceeds floor at zero rather than going negative
	tiny := &Transaction{
		Quantity: decimal.NewFromInt(1),
		Price:    decimal.NewFromInt(1),
		Fee:      decimal.NewFromInt(10),
	}
	if got := tiny.NetProceeds(); !got.IsZero() {
		t.Errorf("NetProceeds = %s, want 0", got)
	}
}

func TestTransactionPreSave(t *testing.T) {
	tx := &Transaction{
		AccountID: "acct-1",
		AssetID:   "asset-1",
		Date:      time.Date(2025, 3, 14, 15, 9, 26, 0, time.FixedZone("KST", 9*3600)),
		TradeType: TradeTypeBuy,
		Quantity:  decimal.NewFromInt(1),
		Price:     decimal.NewFromInt(50),
	}

	if err := tx.PreSave(); err != nil {
		t.Fatalf("PreSave failed: %v", err)
	}
	if tx.ID == "" {
		t.Error("PreSave should assign an ID")
	}
	if got, want := tx.Date, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("PreSave date = %v, want %v", got, want)
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	if got, want := DateOnly(in), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("DateOnly = %v, want %v", got, want)
	}
}

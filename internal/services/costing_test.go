package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

func tradeTx(t *testing.T, tradeType models.TradeType, date, qty, price string) *models.Transaction {
	t.Helper()

	return &models.Transaction{
		AccountID: "acc-1",
		AssetID:   "asset-1",
		Date:      mustDate(t, date),
		TradeType: tradeType,
		Quantity:  mustDecimal(t, qty),
		Price:     mustDecimal(t, price),
	}
}

func TestApplyBuyThenSell(t *testing.T) {
	pos, err := ApplyAll([]*models.Transaction{
		tradeTx(t, models.TradeTypeBuy, "2025-01-02", "10", "100"),
		tradeTx(t, models.TradeTypeSell, "2025-01-03", "4", "120"),
	})
	require.NoError(t, err)

	requireDecimal(t, "6", pos.Quantity)
	requireDecimal(t, "600", pos.Cost)
	requireDecimal(t, "100", pos.AveragePrice())
	requireDecimal(t, "80", pos.RealizedPnL)
}

func TestApplyWeightedAverage(t *testing.T) {
	pos, err := ApplyAll([]*models.Transaction{
		tradeTx(t, models.TradeTypeBuy, "2025-01-02", "10", "100"),
		tradeTx(t, models.TradeTypeBuy, "2025-01-03", "5", "120"),
	})
	require.NoError(t, err)

	requireDecimal(t, "15", pos.Quantity)
	requireDecimal(t, "1600", pos.Cost)
	requireDecimal(t, "106.67", pos.AveragePrice().Round(2))

	// Selling 5 at 150 books 5*(150-106.67) and leaves 10 at the same average.
	pos, err = pos.Apply(tradeTx(t, models.TradeTypeSell, "2025-01-04", "5", "150"))
	require.NoError(t, err)

	requireDecimal(t, "10", pos.Quantity)
	requireDecimal(t, "216.67", pos.RealizedPnL.Round(2))
	requireDecimal(t, "1066.67", pos.Cost.Round(2))
	requireDecimal(t, "106.67", pos.AveragePrice().Round(2))
}

func TestApplyFullLiquidation(t *testing.T) {
	pos, err := ApplyAll([]*models.Transaction{
		tradeTx(t, models.TradeTypeBuy, "2025-01-02", "3", "7"),
		tradeTx(t, models.TradeTypeSell, "2025-01-05", "3", "10"),
	})
	require.NoError(t, err)

	require.True(t, pos.Quantity.IsZero())
	require.True(t, pos.Cost.IsZero(), "cost after full liquidation: %s", pos.Cost)
	requireDecimal(t, "9", pos.RealizedPnL)
}

func TestApplySellRejections(t *testing.T) {
	tests := []struct {
		name  string
		txs   []*models.Transaction
		heldQ string
	}{
		{
			name: "sell into empty position",
			txs: []*models.Transaction{
				tradeTx(t, models.TradeTypeSell, "2025-01-02", "1", "10"),
			},
			heldQ: "0",
		},
		{
			name: "sell more than held",
			txs: []*models.Transaction{
				tradeTx(t, models.TradeTypeBuy, "2025-01-02", "5", "10"),
				tradeTx(t, models.TradeTypeSell, "2025-01-03", "10", "10"),
			},
			heldQ: "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := ApplyAll(tt.txs)
			require.Error(t, err)

			var insuff *apperrors.InsufficientPositionError
			require.True(t, errors.As(err, &insuff))
			requireDecimal(t, tt.heldQ, insuff.Held)

			// The failing sale must leave the position as it stood.
			requireDecimal(t, tt.heldQ, pos.Quantity)
			require.True(t, pos.RealizedPnL.IsZero())
		})
	}
}

func TestApplyCashFlows(t *testing.T) {
	pos, err := ApplyAll([]*models.Transaction{
		tradeTx(t, models.TradeTypeDeposit, "2025-01-02", "1000", "1"),
		tradeTx(t, models.TradeTypeWithdraw, "2025-01-03", "300", "1"),
	})
	require.NoError(t, err)

	requireDecimal(t, "700", pos.Quantity)
	requireDecimal(t, "700", pos.Cost)
	requireDecimal(t, "1", pos.AveragePrice())

	// Withdrawals are not guarded; an overdraft goes negative.
	pos, err = pos.Apply(tradeTx(t, models.TradeTypeWithdraw, "2025-01-04", "1000", "1"))
	require.NoError(t, err)
	requireDecimal(t, "-300", pos.Quantity)
	requireDecimal(t, "-300", pos.Cost)
}

func TestApplyUnknownTradeType(t *testing.T) {
	_, err := Position{}.Apply(tradeTx(t, models.TradeType("TRANSFER"), "2025-01-02", "1", "1"))
	require.Error(t, err)

	var invalid *apperrors.InvalidTradeTypeError
	require.True(t, errors.As(err, &invalid))
}

func TestDailyPositionsWindow(t *testing.T) {
	txs := []*models.Transaction{
		tradeTx(t, models.TradeTypeBuy, "2025-01-02", "10", "100"),
		tradeTx(t, models.TradeTypeSell, "2025-01-04", "4", "120"),
	}

	days, err := DailyPositions(txs, mustDate(t, "2025-01-01"), mustDate(t, "2025-01-05"))
	require.NoError(t, err)
	require.Len(t, days, 5)

	require.True(t, days[0].Position.Quantity.IsZero())
	requireDecimal(t, "10", days[1].Position.Quantity)
	requireDecimal(t, "10", days[2].Position.Quantity)
	requireDecimal(t, "6", days[3].Position.Quantity)
	requireDecimal(t, "600", days[3].Position.Cost)
	requireDecimal(t, "80", days[3].Position.RealizedPnL)
	requireDecimal(t, "6", days[4].Position.Quantity)

	for i, day := range days {
		require.Equal(t, mustDate(t, "2025-01-01").AddDate(0, 0, i), day.Date)
	}
}

func TestDailyPositionsOpeningBalance(t *testing.T) {
	txs := []*models.Transaction{
		tradeTx(t, models.TradeTypeBuy, "2024-12-20", "10", "100"),
		tradeTx(t, models.TradeTypeBuy, "2025-01-03", "5", "120"),
	}

	// The purchase before the window must still shape the opening position.
	days, err := DailyPositions(txs, mustDate(t, "2025-01-02"), mustDate(t, "2025-01-03"))
	require.NoError(t, err)
	require.Len(t, days, 2)

	requireDecimal(t, "10", days[0].Position.Quantity)
	requireDecimal(t, "15", days[1].Position.Quantity)
	requireDecimal(t, "1600", days[1].Position.Cost)
}

func TestDailyPositionsEmptyWindow(t *testing.T) {
	days, err := DailyPositions(nil, mustDate(t, "2025-01-05"), mustDate(t, "2025-01-01"))
	require.NoError(t, err)
	require.Nil(t, days)
}

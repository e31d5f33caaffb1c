package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

// Position is the running weighted-average cost state for one
// (account, asset) pair. The zero value is an empty position.
type Position struct {
	Quantity    decimal.Decimal `json:"quantity"`
	Cost        decimal.Decimal `json:"cost"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

// AveragePrice returns cost divided by quantity, zero when nothing is held.
func (p Position) AveragePrice() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}
	return p.Cost.Div(p.Quantity)
}

// Apply advances the position by one transaction.
//
// BUY and INIT add quantity at the stated price. SELL removes quantity at
// the pre-sale average cost and books quantity*(price-avg) as realized P&L;
// it fails when the sale exceeds the held quantity, leaving the position
// untouched. DEPOSIT and WITHDRAW move cash at a pinned price of 1;
// a WITHDRAW may overdraw.
func (p Position) Apply(tx *models.Transaction) (Position, error) {
	switch tx.TradeType {
	case models.TradeTypeBuy, models.TradeTypeInit:
		p.Cost = p.Cost.Add(tx.Quantity.Mul(tx.Price))
		p.Quantity = p.Quantity.Add(tx.Quantity)

	case models.TradeTypeSell:
		if !p.Quantity.IsPositive() || tx.Quantity.GreaterThan(p.Quantity) {
			return p, &errors.InsufficientPositionError{
				AccountID: tx.AccountID,
				AssetID:   tx.AssetID,
				Requested: tx.Quantity,
				Held:      p.Quantity,
			}
		}
		avg := p.Cost.Div(p.Quantity)
		p.RealizedPnL = p.RealizedPnL.Add(tx.Quantity.Mul(tx.Price.Sub(avg)))
		p.Cost = p.Cost.Sub(tx.Quantity.Mul(avg))
		p.Quantity = p.Quantity.Sub(tx.Quantity)
		if p.Quantity.IsZero() {
			// full liquidation leaves no residual cost
			p.Cost = decimal.Zero
		}

	case models.TradeTypeDeposit:
		p.Quantity = p.Quantity.Add(tx.Quantity)
		p.Cost = p.Cost.Add(tx.Quantity)

	case models.TradeTypeWithdraw:
		p.Quantity = p.Quantity.Sub(tx.Quantity)
		p.Cost = p.Cost.Sub(tx.Quantity)

	default:
		return p, &errors.InvalidTradeTypeError{TradeType: string(tx.TradeType)}
	}

	return p, nil
}

// ApplyAll replays an ordered transaction list from an empty position.
func ApplyAll(txs []*models.Transaction) (Position, error) {
	var pos Position
	for _, tx := range txs {
		var err error
		pos, err = pos.Apply(tx)
		if err != nil {
			return pos, err
		}
	}
	return pos, nil
}

// PositionDay is the end-of-day position for one calendar day.
type PositionDay struct {
	Date     time.Time
	Position Position
}

// DailyPositions walks each day in [start, end] and reports the end-of-day
// position. txs must be ordered by date then insertion; transactions dated
// before the window establish the opening position.
func DailyPositions(txs []*models.Transaction, start, end time.Time) ([]PositionDay, error) {
	start = models.DateOnly(start)
	end = models.DateOnly(end)
	if end.Before(start) {
		return nil, nil
	}

	var (
		pos   Position
		days  []PositionDay
		txIdx int
	)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for txIdx < len(txs) && !models.DateOnly(txs[txIdx].Date).After(day) {
			var err error
			pos, err = pos.Apply(txs[txIdx])
			if err != nil {
				return nil, err
			}
			txIdx++
		}
		days = append(days, PositionDay{Date: day, Position: pos})
	}

	return days, nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioValuationPoint is one date's portfolio-wide roll-up of snapshot
// totals, the input to return aggregation.
type PortfolioValuationPoint struct {
	Date            time.Time       `json:"date" gorm:"column:date"`
	PurchaseAmount  decimal.Decimal `json:"purchase_amount" gorm:"column:purchase_amount"`
	ValuationAmount decimal.Decimal `json:"valuation_amount" gorm:"column:valuation_amount"`
}

// PortfolioReturnPoint extends a valuation point with chained time-weighted
// returns.
type PortfolioReturnPoint struct {
	Date             time.Time       `json:"date"`
	PurchaseAmount   decimal.Decimal `json:"purchase_amount"`
	ValuationAmount  decimal.Decimal `json:"valuation_amount"`
	DailyReturn      decimal.Decimal `json:"daily_return"`
	CumulativeReturn decimal.Decimal `json:"cumulative_return"`
}

// BenchmarkPoint is one close price on the benchmark's trading calendar.
type BenchmarkPoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// BenchmarkReturnPoint is a benchmark close normalized against the series
// base: close/base - 1.
type BenchmarkReturnPoint struct {
	Date             time.Time       `json:"date"`
	CumulativeReturn decimal.Decimal `json:"cumulative_return"`
}

// AlignedReturnPoint joins portfolio and benchmark cumulative returns on one
// benchmark trading day.
type AlignedReturnPoint struct {
	Date            time.Time       `json:"date"`
	PortfolioReturn decimal.Decimal `json:"portfolio_return"`
	BenchmarkReturn decimal.Decimal `json:"benchmark_return"`
	PurchaseAmount  decimal.Decimal `json:"purchase_amount"`
	ValuationAmount decimal.Decimal `json:"valuation_amount"`
}

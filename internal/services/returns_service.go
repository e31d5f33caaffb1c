package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/repositories"
)

var one = decimal.NewFromInt(1)

type returnsService struct {
	snapRepo  repositories.SnapshotRepository
	assetRepo repositories.AssetRepository
	priceRepo repositories.PriceHistoryRepository
	logger    *zap.Logger
}

// NewReturnsService creates a new portfolio returns service
func NewReturnsService(snapRepo repositories.SnapshotRepository, assetRepo repositories.AssetRepository, priceRepo repositories.PriceHistoryRepository, logger *zap.Logger) ReturnsService {
	return &returnsService{
		snapRepo:  snapRepo,
		assetRepo: assetRepo,
		priceRepo: priceRepo,
		logger:    logger,
	}
}

func (s *returnsService) PortfolioSeries(ctx context.Context, accountID string, start, end *time.Time) ([]*models.PortfolioReturnPoint, error) {
	points, err := s.snapRepo.PortfolioTotals(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}
	return AggregateReturns(points), nil
}

func (s *returnsService) CompareWithBenchmark(ctx context.Context, accountID, benchmarkAssetID string, start, end *time.Time) ([]*models.AlignedReturnPoint, error) {
	portfolio, err := s.PortfolioSeries(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}
	if len(portfolio) == 0 {
		return nil, nil
	}

	benchAsset, err := s.assetRepo.GetByID(ctx, benchmarkAssetID)
	if err != nil {
		return nil, err
	}

	var benchmark []*models.BenchmarkReturnPoint
	if benchAsset.PriceSource == models.PriceSourceCash {
		// cash benchmark: a flat zero-return series on the portfolio's dates
		benchmark = make([]*models.BenchmarkReturnPoint, 0, len(portfolio))
		for _, p := range portfolio {
			benchmark = append(benchmark, &models.BenchmarkReturnPoint{Date: p.Date, CumulativeReturn: decimal.Zero})
		}
	} else {
		closes, err := s.priceRepo.ListRange(ctx, benchmarkAssetID, start, end)
		if err != nil {
			return nil, err
		}
		points := make([]*models.BenchmarkPoint, 0, len(closes))
		for _, c := range closes {
			points = append(points, &models.BenchmarkPoint{Date: c.Date, Close: c.Close})
		}
		benchmark = NormalizeBenchmark(points)
	}

	return AlignReturns(portfolio, benchmark), nil
}

// AggregateReturns chains per-date portfolio totals into a time-weighted
// return series: daily_return[0] = 0, daily_return[i] = v[i]/v[i-1] - 1,
// cumulative = prod(1+daily) - 1. Rows with a non-positive valuation are
// excluded before chaining.
func AggregateReturns(points []*models.PortfolioValuationPoint) []*models.PortfolioReturnPoint {
	filtered := make([]*models.PortfolioValuationPoint, 0, len(points))
	for _, p := range points {
		if p.ValuationAmount.IsPositive() {
			filtered = append(filtered, p)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })

	out := make([]*models.PortfolioReturnPoint, 0, len(filtered))
	growth := one
	for i, p := range filtered {
		daily := decimal.Zero
		if i > 0 {
			daily = p.ValuationAmount.Div(filtered[i-1].ValuationAmount).Sub(one)
		}
		growth = growth.Mul(one.Add(daily))
		out = append(out, &models.PortfolioReturnPoint{
			Date:             p.Date,
			PurchaseAmount:   p.PurchaseAmount,
			ValuationAmount:  p.ValuationAmount,
			DailyReturn:      daily,
			CumulativeReturn: growth.Sub(one),
		})
	}

	return out
}

// NormalizeBenchmark converts a close series into cumulative returns,
// close/base - 1 against the first positive close. Non-positive closes are
// dropped.
func NormalizeBenchmark(closes []*models.BenchmarkPoint) []*models.BenchmarkReturnPoint {
	filtered := make([]*models.BenchmarkPoint, 0, len(closes))
	for _, c := range closes {
		if c.Close.IsPositive() {
			filtered = append(filtered, c)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Date.Before(filtered[j].Date) })

	if len(filtered) == 0 {
		return nil
	}

	base := filtered[0].Close
	out := make([]*models.BenchmarkReturnPoint, 0, len(filtered))
	for _, c := range filtered {
		out = append(out, &models.BenchmarkReturnPoint{
			Date:             c.Date,
			CumulativeReturn: c.Close.Div(base).Sub(one),
		})
	}

	return out
}

// AlignReturns reindexes the portfolio series onto the benchmark's
// trading-day calendar: a benchmark day the portfolio is missing carries
// the last known portfolio value forward, never zero, and the result is
// the inner join on date. Benchmark days before the first portfolio point
// have nothing to carry forward and yield no row. Both inputs must be
// ordered by date ascending.
func AlignReturns(portfolio []*models.PortfolioReturnPoint, benchmark []*models.BenchmarkReturnPoint) []*models.AlignedReturnPoint {
	var (
		out  []*models.AlignedReturnPoint
		last *models.PortfolioReturnPoint
		pi   int
	)

	for _, b := range benchmark {
		for pi < len(portfolio) && !portfolio[pi].Date.After(b.Date) {
			last = portfolio[pi]
			pi++
		}
		if last == nil {
			continue
		}
		out = append(out, &models.AlignedReturnPoint{
			Date:            b.Date,
			PortfolioReturn: last.CumulativeReturn,
			BenchmarkReturn: b.CumulativeReturn,
			PurchaseAmount:  last.PurchaseAmount,
			ValuationAmount: last.ValuationAmount,
		})
	}

	return out
}

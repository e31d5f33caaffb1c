package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

func TestRefreshAllUpdatesAndRebuilds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account := env.seedAccount(t, "us-broker", "USD")
	stock := env.seedAsset(t, "AAPL", "USD", models.PriceSourceMarket, "100")
	env.seedAsset(t, "APT-101", "KRW", models.PriceSourceManual, "0")
	env.seedAsset(t, "USD", "USD", models.PriceSourceCash, "1")

	buyDate := daysAgo(5)
	tx := &models.Transaction{
		AccountID: account.ID,
		AssetID:   stock.ID,
		Date:      buyDate,
		TradeType: models.TradeTypeBuy,
		Quantity:  mustDecimal(t, "10"),
		Price:     mustDecimal(t, "100"),
	}
	require.NoError(t, tx.PreSave())
	require.NoError(t, env.txRepo.Create(ctx, tx))

	feed := &stubPriceFeed{prices: map[string]decimal.Decimal{"AAPL": mustDecimal(t, "120")}}
	svc := NewPriceService(env.assetRepo, env.txRepo, env.priceRepo, env.snapshots, feed, zap.NewNop())

	summary, err := svc.RefreshAll(ctx)
	require.NoError(t, err)

	require.Equal(t, 1, summary.Refreshed)
	require.Equal(t, 2, summary.Skipped)
	require.Zero(t, summary.Failed)
	require.Equal(t, 1, summary.PairsRebuilt)
	require.Equal(t, 1, summary.Accounts)
	require.Equal(t, 6, summary.RowsWritten)
	require.Len(t, summary.Results, 3)

	// The asset record carries the new price.
	refreshed, err := env.assetRepo.GetByID(ctx, stock.ID)
	require.NoError(t, err)
	requireDecimal(t, "120", refreshed.CurrentPrice)

	// Today's close landed in the price history.
	closes, err := env.priceRepo.ListRange(ctx, stock.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, closes, 1)
	requireDecimal(t, "120", closes[0].Close)
	require.Equal(t, "feed", closes[0].Source)
	require.True(t, closes[0].Date.Equal(models.DateOnly(time.Now())))

	// Snapshots were revalued at the fresh price from the first trade on.
	rows, err := env.snapshots.ListSnapshots(ctx, &models.SnapshotFilter{AccountID: account.ID, AssetID: stock.ID})
	require.NoError(t, err)
	require.Len(t, rows, 6)
	require.True(t, rows[0].Date.Equal(buyDate))
	requireDecimal(t, "120", rows[5].ValuationPrice)
	requireDecimal(t, "1200", rows[5].ValuationAmount)
}

func TestRefreshAllTriesKoreanListings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stock := env.seedAsset(t, "005930", "KRW", models.PriceSourceMarket, "50")

	// Only the KOSDAQ listing resolves; the KOSPI one must be tried first.
	feed := &stubPriceFeed{prices: map[string]decimal.Decimal{"005930.KQ": mustDecimal(t, "60")}}
	svc := NewPriceService(env.assetRepo, env.txRepo, env.priceRepo, env.snapshots, feed, zap.NewNop())

	summary, err := svc.RefreshAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Refreshed)
	require.Equal(t, []string{"005930.KS", "005930.KQ"}, feed.calls)

	refreshed, err := env.assetRepo.GetByID(ctx, stock.ID)
	require.NoError(t, err)
	requireDecimal(t, "60", refreshed.CurrentPrice)
}

func TestRefreshAllFailureKeepsOldPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stock := env.seedAsset(t, "GHOST", "USD", models.PriceSourceMarket, "55")

	feed := &stubPriceFeed{prices: map[string]decimal.Decimal{}}
	svc := NewPriceService(env.assetRepo, env.txRepo, env.priceRepo, env.snapshots, feed, zap.NewNop())

	summary, err := svc.RefreshAll(ctx)
	require.Error(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Zero(t, summary.Refreshed)
	require.Equal(t, PriceStatusFailed, summary.Results[0].Status)

	// The stale price survives a feed outage.
	stale, err := env.assetRepo.GetByID(ctx, stock.ID)
	require.NoError(t, err)
	requireDecimal(t, "55", stale.CurrentPrice)

	closes, err := env.priceRepo.ListRange(ctx, stock.ID, nil, nil)
	require.NoError(t, err)
	require.Empty(t, closes)
}

func TestTickerCandidates(t *testing.T) {
	tests := []struct {
		name     string
		ticker   string
		currency string
		want     []string
	}{
		{"krw without suffix", "005930", "KRW", []string{"005930.KS", "005930.KQ"}},
		{"krw with suffix", "005930.KS", "KRW", []string{"005930.KS"}},
		{"non-krw", "AAPL", "USD", []string{"AAPL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := &models.Asset{Ticker: tt.ticker, Currency: tt.currency}
			require.Equal(t, tt.want, tickerCandidates(asset))
		})
	}
}

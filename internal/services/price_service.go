package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/repositories"
)

type priceService struct {
	assetRepo repositories.AssetRepository
	txRepo    repositories.TransactionRepository
	priceRepo repositories.PriceHistoryRepository
	snapshots SnapshotService
	feed      PriceFeed
	logger    *zap.Logger
}

// NewPriceService creates a new price refresh service
func NewPriceService(assetRepo repositories.AssetRepository, txRepo repositories.TransactionRepository, priceRepo repositories.PriceHistoryRepository, snapshots SnapshotService, feed PriceFeed, logger *zap.Logger) PriceService {
	return &priceService{
		assetRepo: assetRepo,
		txRepo:    txRepo,
		priceRepo: priceRepo,
		snapshots: snapshots,
		feed:      feed,
		logger:    logger,
	}
}

// RefreshAll fetches a fresh quote for every market-priced asset, then
// rebuilds the snapshots of each (account, asset) pair holding one. Manual
// and cash assets are skipped; a failed lookup keeps the old price.
func (s *priceService) RefreshAll(ctx context.Context) (*PriceRefreshSummary, error) {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &PriceRefreshSummary{}
	var (
		refreshedIDs []string
		errs         error
	)

	for _, asset := range assets {
		result := s.refreshOne(ctx, asset)
		if result.Status == PriceStatusFailed {
			errs = multierr.Append(errs, fmt.Errorf("refresh %s: %s", asset.Ticker, result.Reason))
		}
		if result.Status == PriceStatusOK {
			refreshedIDs = append(refreshedIDs, asset.ID)
		}

		summary.Results = append(summary.Results, result)
		switch result.Status {
		case PriceStatusOK:
			summary.Refreshed++
		case PriceStatusSkipped:
			summary.Skipped++
		case PriceStatusFailed:
			summary.Failed++
		}
	}

	if len(refreshedIDs) > 0 {
		rebuildErr := s.rebuildHolders(ctx, refreshedIDs, summary)
		errs = multierr.Append(errs, rebuildErr)
	}

	s.logger.Info("price refresh finished",
		zap.Int("refreshed", summary.Refreshed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("pairs_rebuilt", summary.PairsRebuilt),
		zap.Int("rows_written", summary.RowsWritten))

	return summary, errs
}

// refreshOne decides and applies the outcome for a single asset,
// exhaustive over the price source enum.
func (s *priceService) refreshOne(ctx context.Context, asset *models.Asset) *PriceUpdateResult {
	result := &PriceUpdateResult{
		AssetID:  asset.ID,
		Ticker:   asset.Ticker,
		OldPrice: asset.CurrentPrice,
		NewPrice: asset.CurrentPrice,
	}

	switch asset.PriceSource {
	case models.PriceSourceManual:
		result.Status = PriceStatusSkipped
		result.Reason = "manual price source"
		return result
	case models.PriceSourceCash:
		result.Status = PriceStatusSkipped
		result.Reason = "cash is always 1"
		return result
	case models.PriceSourceMarket:
		// fall through to the feed lookup
	default:
		result.Status = PriceStatusSkipped
		result.Reason = fmt.Sprintf("unknown price source %q", asset.PriceSource)
		return result
	}

	price, err := s.fetchWithCandidates(ctx, asset)
	if err != nil {
		result.Status = PriceStatusFailed
		result.Reason = err.Error()
		return result
	}

	if err := s.assetRepo.UpdatePrice(ctx, asset.ID, price); err != nil {
		result.Status = PriceStatusFailed
		result.Reason = err.Error()
		return result
	}

	daily := &models.AssetDailyPrice{
		AssetID: asset.ID,
		Date:    time.Now(),
		Close:   price,
		Source:  "feed",
	}
	if err := daily.PreSave(); err == nil {
		if err := s.priceRepo.Upsert(ctx, daily); err != nil {
			s.logger.Warn("failed to record daily close",
				zap.String("asset_id", asset.ID),
				zap.Error(err))
		}
	}

	result.Status = PriceStatusOK
	result.NewPrice = price
	return result
}

// fetchWithCandidates tries each feed symbol for the asset in order,
// returning the first successful quote.
func (s *priceService) fetchWithCandidates(ctx context.Context, asset *models.Asset) (decimal.Decimal, error) {
	var errs error
	for _, candidate := range tickerCandidates(asset) {
		price, err := s.feed.LatestPrice(ctx, candidate)
		if err == nil {
			return price, nil
		}
		errs = multierr.Append(errs, err)
	}
	return decimal.Zero, errs
}

// rebuildHolders rebuilds every (account, asset) pair holding a refreshed
// asset from the pair's earliest transaction date through today. Per-pair
// failures are collected, not fatal.
func (s *priceService) rebuildHolders(ctx context.Context, assetIDs []string, summary *PriceRefreshSummary) error {
	pairs, err := s.txRepo.ListTradedPairs(ctx, "", assetIDs)
	if err != nil {
		return err
	}

	end := models.DateOnly(time.Now())
	accounts := make(map[string]bool)

	var errs error
	for _, pair := range pairs {
		rows, err := s.snapshots.Rebuild(ctx, pair.AccountID, pair.AssetID, pair.FirstDate, end, true)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rebuild %s/%s: %w", pair.AccountID, pair.AssetID, err))
			continue
		}
		summary.PairsRebuilt++
		summary.RowsWritten += rows
		accounts[pair.AccountID] = true
	}
	summary.Accounts = len(accounts)

	return errs
}

// tickerCandidates returns the feed symbols to try for an asset: a KRW
// ticker without an exchange suffix tries the KOSPI listing before the
// KOSDAQ one.
func tickerCandidates(asset *models.Asset) []string {
	ticker := asset.Ticker
	if strings.EqualFold(asset.Currency, "KRW") && !strings.Contains(ticker, ".") {
		return []string{ticker + ".KS", ticker + ".KQ"}
	}
	return []string{ticker}
}

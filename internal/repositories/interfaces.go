package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

// TransactionRepository defines the interface for ledger data operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	List(ctx context.Context, filter *models.TransactionFilter) ([]*models.Transaction, error)
	GetCount(ctx context.Context, filter *models.TransactionFilter) (int, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id string) error
	// ListForPair returns every transaction of one (account, asset) pair
	// ordered by date then insertion, paginating internally.
	ListForPair(ctx context.Context, accountID, assetID string) ([]*models.Transaction, error)
	// FindByMemo returns transactions whose memo contains the marker.
	FindByMemo(ctx context.Context, marker string) ([]*models.Transaction, error)
	// ListTradedPairs returns distinct (account, asset) pairs with their
	// earliest transaction date. accountID may be empty or the AllAccounts
	// token; assetIDs empty means every asset.
	ListTradedPairs(ctx context.Context, accountID string, assetIDs []string) ([]*models.TradedPair, error)
}

// AssetRepository defines the interface for asset master data operations
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	List(ctx context.Context) ([]*models.Asset, error)
	Update(ctx context.Context, asset *models.Asset) error
	Delete(ctx context.Context, id string) error
	// ListCashByCurrency returns cash assets in the given currency,
	// ordered stably for deterministic mirror targeting.
	ListCashByCurrency(ctx context.Context, currency string) ([]*models.Asset, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
}

// AccountRepository defines the interface for account master data operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
}

// SnapshotRepository defines the interface for derived snapshot rows
type SnapshotRepository interface {
	// ReplaceRange deletes the pair's rows within [start, end] (when
	// deleteFirst) and upserts the given rows in chunks, atomically.
	// Returns the number of rows written.
	ReplaceRange(ctx context.Context, accountID, assetID string, start, end time.Time, rows []*models.DailySnapshot, deleteFirst bool) (int, error)
	List(ctx context.Context, filter *models.SnapshotFilter) ([]*models.DailySnapshot, error)
	// LatestDate returns the most recent snapshot date in scope, zero when
	// no rows exist. accountID may be the AllAccounts token.
	LatestDate(ctx context.Context, accountID string) (time.Time, error)
	ListAtDate(ctx context.Context, accountID string, date time.Time) ([]*models.DailySnapshot, error)
	// PortfolioTotals sums purchase/valuation amounts per date across the
	// scope, ordered by date ascending.
	PortfolioTotals(ctx context.Context, accountID string, start, end *time.Time) ([]*models.PortfolioValuationPoint, error)
}

// PriceHistoryRepository defines the interface for the dated close cache
type PriceHistoryRepository interface {
	Upsert(ctx context.Context, price *models.AssetDailyPrice) error
	// ListRange returns the asset's closes within the optional bounds,
	// ordered by date ascending.
	ListRange(ctx context.Context, assetID string, start, end *time.Time) ([]*models.AssetDailyPrice, error)
}

// CostBasisRepository defines the interface for the manual cost-basis ledger
type CostBasisRepository interface {
	// RecordBatch appends the events and recomputes each touched balance as
	// previous + sum(deltas), all in one transaction. A balance that would
	// go negative fails the whole batch.
	RecordBatch(ctx context.Context, events []*models.ManualCostBasisEvent) ([]*models.ManualCostBasisCurrent, error)
	GetCurrent(ctx context.Context, accountIDs, assetIDs []string) ([]*models.ManualCostBasisCurrent, error)
}

package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

// TransactionResult reports a ledger write together with its side effects:
// the synthesized cash mirror, if any, and the snapshot rows rebuilt.
type TransactionResult struct {
	Transaction     *models.Transaction `json:"transaction"`
	CashTransaction *models.Transaction `json:"cash_transaction,omitempty"`
	RebuiltRowsMain int                 `json:"rebuilt_rows_main"`
	RebuiltRowsCash int                 `json:"rebuilt_rows_cash"`
	RebuildStart    time.Time           `json:"rebuilt_start_date"`
	RebuildEnd      time.Time           `json:"rebuilt_end_date"`
}

// DeleteResult reports a ledger delete together with its side effects.
type DeleteResult struct {
	DeletedID       string    `json:"deleted_id"`
	CashDeletedID   string    `json:"cash_deleted_id,omitempty"`
	RebuiltRowsMain int       `json:"rebuilt_rows_main"`
	RebuiltRowsCash int       `json:"rebuilt_rows_cash"`
	RebuildStart    time.Time `json:"rebuilt_start_date"`
	RebuildEnd      time.Time `json:"rebuilt_end_date"`
}

// TransactionUpdate carries the fields of a partial edit; nil means keep.
type TransactionUpdate struct {
	AccountID *string           `json:"account_id"`
	AssetID   *string           `json:"asset_id"`
	Date      *time.Time        `json:"date"`
	TradeType *models.TradeType `json:"trade_type"`
	Quantity  *decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal  `json:"price"`
	Fee       *decimal.Decimal  `json:"fee"`
	Tax       *decimal.Decimal  `json:"tax"`
	Memo      *string           `json:"memo"`
}

// AccountRebuildSummary reports an account-wide snapshot rebuild.
type AccountRebuildSummary struct {
	AccountID   string `json:"account_id"`
	Pairs       int    `json:"pairs"`
	RowsWritten int    `json:"rows_written"`
	Failures    int    `json:"failures"`
}

// PriceUpdateStatus is the per-asset outcome of a price refresh.
type PriceUpdateStatus string

const (
	PriceStatusOK      PriceUpdateStatus = "ok"
	PriceStatusSkipped PriceUpdateStatus = "skipped"
	PriceStatusFailed  PriceUpdateStatus = "failed"
)

// PriceUpdateResult is one asset's row in the refresh report.
type PriceUpdateResult struct {
	AssetID  string            `json:"asset_id"`
	Ticker   string            `json:"ticker"`
	Status   PriceUpdateStatus `json:"status"`
	Reason   string            `json:"reason,omitempty"`
	OldPrice decimal.Decimal   `json:"old_price"`
	NewPrice decimal.Decimal   `json:"new_price"`
}

// PriceRefreshSummary aggregates a full refresh run.
type PriceRefreshSummary struct {
	Results      []*PriceUpdateResult `json:"results"`
	Refreshed    int                  `json:"refreshed"`
	Skipped      int                  `json:"skipped"`
	Failed       int                  `json:"failed"`
	PairsRebuilt int                  `json:"pairs_rebuilt"`
	Accounts     int                  `json:"accounts"`
	RowsWritten  int                  `json:"rows_written"`
}

// PriceFeed fetches the latest quote for a ticker
type PriceFeed interface {
	LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// TransactionService defines the interface for ledger write operations
type TransactionService interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction, autoCash bool) (*TransactionResult, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, filter *models.TransactionFilter) ([]*models.Transaction, error)
	GetTransactionCount(ctx context.Context, filter *models.TransactionFilter) (int, error)
	UpdateTransaction(ctx context.Context, id string, update *TransactionUpdate, autoCash bool) (*TransactionResult, error)
	DeleteTransaction(ctx context.Context, id string) (*DeleteResult, error)
}

// SnapshotService defines the interface for snapshot rebuild and reads
type SnapshotService interface {
	Rebuild(ctx context.Context, accountID, assetID string, start, end time.Time, deleteFirst bool) (int, error)
	RebuildAccount(ctx context.Context, accountID string, start, end time.Time) (*AccountRebuildSummary, error)
	ListSnapshots(ctx context.Context, filter *models.SnapshotFilter) ([]*models.DailySnapshot, error)
	// LatestSnapshots returns the rows of the most recent snapshot date in
	// scope. accountID may be the AllAccounts token.
	LatestSnapshots(ctx context.Context, accountID string) ([]*models.DailySnapshot, error)
}

// CostBasisService defines the interface for the manual cost-basis ledger
type CostBasisService interface {
	RecordEvents(ctx context.Context, events []*models.ManualCostBasisEvent) ([]*models.ManualCostBasisCurrent, error)
	FetchCurrent(ctx context.Context, accountIDs, assetIDs []string) ([]*models.ManualCostBasisCurrent, error)
}

// ReturnsService defines the interface for portfolio return reporting
type ReturnsService interface {
	PortfolioSeries(ctx context.Context, accountID string, start, end *time.Time) ([]*models.PortfolioReturnPoint, error)
	CompareWithBenchmark(ctx context.Context, accountID, benchmarkAssetID string, start, end *time.Time) ([]*models.AlignedReturnPoint, error)
}

// PriceService defines the interface for market price refresh
type PriceService interface {
	RefreshAll(ctx context.Context) (*PriceRefreshSummary, error)
}

// AdminService defines the interface for master data operations
type AdminService interface {
	// Accounts
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	CreateAccount(ctx context.Context, account *models.Account) error
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// Assets
	ListAssets(ctx context.Context) ([]*models.Asset, error)
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	CreateAsset(ctx context.Context, asset *models.Asset) error
	UpdateAsset(ctx context.Context, asset *models.Asset) error
	DeleteAsset(ctx context.Context, id string) error
}

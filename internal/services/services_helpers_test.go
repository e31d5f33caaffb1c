package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/db"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/repositories"
)

// newTestDB opens a private in-memory database migrated with every table
// the services touch.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.Account{},
		&models.Asset{},
		&models.Transaction{},
		&models.DailySnapshot{},
		&models.ManualCostBasisEvent{},
		&models.ManualCostBasisCurrent{},
		&models.AssetDailyPrice{},
	))

	database := &db.DB{DB: gdb}
	t.Cleanup(func() { _ = database.Close() })

	return database
}

type testEnv struct {
	db          *db.DB
	txRepo      repositories.TransactionRepository
	assetRepo   repositories.AssetRepository
	accountRepo repositories.AccountRepository
	snapRepo    repositories.SnapshotRepository
	priceRepo   repositories.PriceHistoryRepository
	costRepo    repositories.CostBasisRepository
	snapshots   SnapshotService
	txService   TransactionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := newTestDB(t)
	logger := zap.NewNop()

	txRepo := repositories.NewTransactionRepository(database)
	assetRepo := repositories.NewAssetRepository(database)
	accountRepo := repositories.NewAccountRepository(database)
	snapRepo := repositories.NewSnapshotRepository(database)
	priceRepo := repositories.NewPriceHistoryRepository(database)
	costRepo := repositories.NewCostBasisRepository(database)

	snapshots := NewSnapshotService(txRepo, assetRepo, snapRepo, logger)

	return &testEnv{
		db:          database,
		txRepo:      txRepo,
		assetRepo:   assetRepo,
		accountRepo: accountRepo,
		snapRepo:    snapRepo,
		priceRepo:   priceRepo,
		costRepo:    costRepo,
		snapshots:   snapshots,
		txService:   NewTransactionService(txRepo, assetRepo, snapshots, logger),
	}
}

func (e *testEnv) seedAccount(t *testing.T, name, currency string) *models.Account {
	t.Helper()

	account := &models.Account{Name: name, Currency: currency, Owner: "tester"}
	require.NoError(t, account.PreSave())
	require.NoError(t, e.accountRepo.Create(context.Background(), account))

	return account
}

func (e *testEnv) seedAsset(t *testing.T, ticker, currency string, source models.PriceSource, price string) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		Ticker:       ticker,
		Name:         ticker,
		Currency:     currency,
		PriceSource:  source,
		CurrentPrice: mustDecimal(t, price),
	}
	require.NoError(t, asset.PreSave())
	require.NoError(t, e.assetRepo.Create(context.Background(), asset))

	return asset
}

func (e *testEnv) seedTransaction(t *testing.T, accountID, assetID, date string, tradeType models.TradeType, qty, price string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		AccountID: accountID,
		AssetID:   assetID,
		Date:      mustDate(t, date),
		TradeType: tradeType,
		Quantity:  mustDecimal(t, qty),
		Price:     mustDecimal(t, price),
	}
	require.NoError(t, tx.PreSave())
	require.NoError(t, e.txRepo.Create(context.Background(), tx))

	return tx
}

// stubPriceFeed serves canned quotes and records every ticker asked for.
type stubPriceFeed struct {
	prices map[string]decimal.Decimal
	calls  []string
}

func (f *stubPriceFeed) LatestPrice(_ context.Context, ticker string) (decimal.Decimal, error) {
	f.calls = append(f.calls, ticker)
	price, ok := f.prices[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("no data for %s", ticker)
	}
	return price, nil
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, mustDecimal(t, want).Equal(got), "want %s, got %s", want, got.String())
}

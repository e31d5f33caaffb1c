package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/db"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

// scanPageSize bounds per-query row counts when walking a pair's full history.
const scanPageSize = 1000

type transactionRepository struct {
	db *db.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(database *db.DB) TransactionRepository {
	return &transactionRepository{db: database}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction not found: %s", id)
	}

	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("transaction not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context, filter *models.TransactionFilter) ([]*models.Transaction, error) {
	query := applyTransactionFilter(r.db.WithContext(ctx).Model(&models.Transaction{}), filter)

	// Order by date descending, then created_at descending
	query = query.Order("date DESC, created_at DESC")

	// Apply pagination
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	var transactions []*models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func (r *transactionRepository) GetCount(ctx context.Context, filter *models.TransactionFilter) (int, error) {
	query := applyTransactionFilter(r.db.WithContext(ctx).Model(&models.Transaction{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get transaction count: %w", err)
	}

	return int(count), nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	if tx == nil || tx.ID == "" {
		return fmt.Errorf("transaction id is required")
	}

	// Select("*") writes zero-valued fields too, so clearing a fee or memo
	// on update actually sticks.
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", tx.ID).
		Select("*").Omit("id", "created_at").
		Updates(tx)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("transaction not found: %s", tx.ID)
	}

	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}

	return nil
}

func (r *transactionRepository) ListForPair(ctx context.Context, accountID, assetID string) ([]*models.Transaction, error) {
	var all []*models.Transaction

	// Walk the pair's history oldest-first in fixed-size pages so a long
	// ledger never loads in a single unbounded query.
	for offset := 0; ; offset += scanPageSize {
		var page []*models.Transaction
		err := r.db.WithContext(ctx).
			Where("account_id = ? AND asset_id = ?", accountID, assetID).
			Order("date ASC, created_at ASC").
			Limit(scanPageSize).Offset(offset).
			Find(&page).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions for pair: %w", err)
		}

		all = append(all, page...)
		if len(page) < scanPageSize {
			break
		}
	}

	return all, nil
}

func (r *transactionRepository) FindByMemo(ctx context.Context, marker string) ([]*models.Transaction, error) {
	if marker == "" {
		return nil, fmt.Errorf("memo marker is required")
	}

	var transactions []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("memo LIKE ?", "%"+marker+"%").
		Order("date ASC, created_at ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions by memo: %w", err)
	}

	return transactions, nil
}

func (r *transactionRepository) ListTradedPairs(ctx context.Context, accountID string, assetIDs []string) ([]*models.TradedPair, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("account_id, asset_id")

	if accountID != "" && accountID != models.AllAccounts {
		query = query.Where("account_id = ?", accountID)
	}
	if len(assetIDs) > 0 {
		query = query.Where("asset_id IN ?", assetIDs)
	}

	var pairs []*models.TradedPair
	err := query.Group("account_id").Group("asset_id").
		Order("account_id ASC, asset_id ASC").
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list traded pairs: %w", err)
	}

	// MIN(date) comes back untyped from the driver, so the first trade date
	// is a per-pair lookup rather than an aggregate.
	for _, pair := range pairs {
		var first models.Transaction
		err := r.db.WithContext(ctx).
			Select("date").
			Where("account_id = ? AND asset_id = ?", pair.AccountID, pair.AssetID).
			Order("date ASC, created_at ASC").
			Take(&first).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get first trade date for %s/%s: %w", pair.AccountID, pair.AssetID, err)
		}
		pair.FirstDate = models.DateOnly(first.Date)
	}

	return pairs, nil
}

func applyTransactionFilter(query *gorm.DB, filter *models.TransactionFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.StartDate != nil {
		query = query.Where("date >= ?", models.DateOnly(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", models.DateOnly(*filter.EndDate))
	}
	if len(filter.Types) > 0 {
		query = query.Where("trade_type IN ?", filter.Types)
	}
	if len(filter.Assets) > 0 {
		query = query.Where("asset_id IN ?", filter.Assets)
	}
	if len(filter.Accounts) > 0 {
		query = query.Where("account_id IN ?", filter.Accounts)
	}

	return query
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/db"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

// snapshotChunkSize caps rows per upsert statement when writing a rebuilt range.
const snapshotChunkSize = 500

// snapshotConflictKey is the natural key of a snapshot row.
var snapshotConflictKey = []clause.Column{
	{Name: "date"},
	{Name: "asset_id"},
	{Name: "account_id"},
}

type snapshotRepository struct {
	db *db.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(database *db.DB) SnapshotRepository {
	return &snapshotRepository{db: database}
}

func (r *snapshotRepository) ReplaceRange(ctx context.Context, accountID, assetID string, start, end time.Time, rows []*models.DailySnapshot, deleteFirst bool) (int, error) {
	start = models.DateOnly(start)
	end = models.DateOnly(end)

	written := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if deleteFirst {
			err := tx.Where("account_id = ? AND asset_id = ? AND date >= ? AND date <= ?",
				accountID, assetID, start, end).
				Delete(&models.DailySnapshot{}).Error
			if err != nil {
				return fmt.Errorf("failed to delete snapshot range: %w", err)
			}
		}

		for i := 0; i < len(rows); i += snapshotChunkSize {
			endIdx := i + snapshotChunkSize
			if endIdx > len(rows) {
				endIdx = len(rows)
			}
			chunk := rows[i:endIdx]

			err := tx.Clauses(clause.OnConflict{
				Columns: snapshotConflictKey,
				DoUpdates: clause.AssignmentColumns([]string{
					"quantity",
					"purchase_price",
					"purchase_amount",
					"valuation_price",
					"valuation_amount",
					"currency",
					"updated_at",
				}),
			}).Create(&chunk).Error
			if err != nil {
				return fmt.Errorf("failed to upsert snapshot chunk: %w", err)
			}
			written += len(chunk)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return written, nil
}

func (r *snapshotRepository) List(ctx context.Context, filter *models.SnapshotFilter) ([]*models.DailySnapshot, error) {
	query := r.db.WithContext(ctx).Model(&models.DailySnapshot{})

	if filter != nil {
		if filter.AccountID != "" && filter.AccountID != models.AllAccounts {
			query = query.Where("account_id = ?", filter.AccountID)
		}
		if filter.AssetID != "" {
			query = query.Where("asset_id = ?", filter.AssetID)
		}
		if filter.StartDate != nil {
			query = query.Where("date >= ?", models.DateOnly(*filter.StartDate))
		}
		if filter.EndDate != nil {
			query = query.Where("date <= ?", models.DateOnly(*filter.EndDate))
		}
	}

	query = query.Order("date ASC, account_id ASC, asset_id ASC")

	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	var snapshots []*models.DailySnapshot
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return snapshots, nil
}

func (r *snapshotRepository) LatestDate(ctx context.Context, accountID string) (time.Time, error) {
	query := r.db.WithContext(ctx).Model(&models.DailySnapshot{})
	if accountID != "" && accountID != models.AllAccounts {
		query = query.Where("account_id = ?", accountID)
	}

	var row models.DailySnapshot
	err := query.Select("date").Order("date DESC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest snapshot date: %w", err)
	}

	return models.DateOnly(row.Date), nil
}

func (r *snapshotRepository) ListAtDate(ctx context.Context, accountID string, date time.Time) ([]*models.DailySnapshot, error) {
	query := r.db.WithContext(ctx).Where("date = ?", models.DateOnly(date))
	if accountID != "" && accountID != models.AllAccounts {
		query = query.Where("account_id = ?", accountID)
	}

	var snapshots []*models.DailySnapshot
	if err := query.Order("account_id ASC, asset_id ASC").Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshots at date: %w", err)
	}

	return snapshots, nil
}

func (r *snapshotRepository) PortfolioTotals(ctx context.Context, accountID string, start, end *time.Time) ([]*models.PortfolioValuationPoint, error) {
	query := r.db.WithContext(ctx).Model(&models.DailySnapshot{}).
		Select("date, SUM(purchase_amount) AS purchase_amount, SUM(valuation_amount) AS valuation_amount")

	if accountID != "" && accountID != models.AllAccounts {
		query = query.Where("account_id = ?", accountID)
	}
	if start != nil {
		query = query.Where("date >= ?", models.DateOnly(*start))
	}
	if end != nil {
		query = query.Where("date <= ?", models.DateOnly(*end))
	}

	var points []*models.PortfolioValuationPoint
	if err := query.Group("date").Order("date ASC").Scan(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate portfolio totals: %w", err)
	}

	return points, nil
}

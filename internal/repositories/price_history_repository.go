package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/db"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

type priceHistoryRepository struct {
	db *db.DB
}

// NewPriceHistoryRepository creates a new price history repository
func NewPriceHistoryRepository(database *db.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: database}
}

func (r *priceHistoryRepository) Upsert(ctx context.Context, price *models.AssetDailyPrice) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"close", "source"}),
	}).Create(price).Error
	if err != nil {
		return fmt.Errorf("failed to upsert daily price: %w", err)
	}
	return nil
}

func (r *priceHistoryRepository) ListRange(ctx context.Context, assetID string, start, end *time.Time) ([]*models.AssetDailyPrice, error) {
	query := r.db.WithContext(ctx).Where("asset_id = ?", assetID)
	if start != nil {
		query = query.Where("date >= ?", models.DateOnly(*start))
	}
	if end != nil {
		query = query.Where("date <= ?", models.DateOnly(*end))
	}

	var prices []*models.AssetDailyPrice
	if err := query.Order("date ASC").Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("failed to list daily prices: %w", err)
	}

	return prices, nil
}

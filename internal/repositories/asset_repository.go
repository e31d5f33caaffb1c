package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/db"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

type assetRepository struct {
	db *db.DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(database *db.DB) AssetRepository {
	return &assetRepository{db: database}
}

func (r *assetRepository) Create(ctx context.Context, asset *models.Asset) error {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	if id == "" {
		return nil, fmt.Errorf("asset not found: %s", id)
	}

	var asset models.Asset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("asset not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context) ([]*models.Asset, error) {
	var assets []*models.Asset
	if err := r.db.WithContext(ctx).Order("ticker ASC").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

func (r *assetRepository) Update(ctx context.Context, asset *models.Asset) error {
	if asset == nil || asset.ID == "" {
		return fmt.Errorf("asset id is required")
	}

	result := r.db.WithContext(ctx).Model(&models.Asset{}).
		Where("id = ?", asset.ID).
		Select("*").Omit("id", "created_at").
		Updates(asset)
	if result.Error != nil {
		return fmt.Errorf("failed to update asset: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("asset not found: %s", asset.ID)
	}

	return nil
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Asset{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete asset: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("asset not found: %s", id)
	}

	return nil
}

func (r *assetRepository) ListCashByCurrency(ctx context.Context, currency string) ([]*models.Asset, error) {
	var assets []*models.Asset
	err := r.db.WithContext(ctx).
		Where("price_source = ? AND currency = ?", models.PriceSourceCash, currency).
		Order("created_at ASC, id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cash assets: %w", err)
	}
	return assets, nil
}

func (r *assetRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.Asset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_price": price,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update asset price: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("asset not found: %s", id)
	}

	return nil
}

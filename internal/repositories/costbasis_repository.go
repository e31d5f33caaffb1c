package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/db"
	apperrors "github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

type costBasisRepository struct {
	db *db.DB
}

// NewCostBasisRepository creates a new manual cost-basis repository
func NewCostBasisRepository(database *db.DB) CostBasisRepository {
	return &costBasisRepository{db: database}
}

func (r *costBasisRepository) RecordBatch(ctx context.Context, events []*models.ManualCostBasisEvent) ([]*models.ManualCostBasisCurrent, error) {
	if len(events) == 0 {
		return nil, nil
	}

	type pairDelta struct {
		delta    decimal.Decimal
		currency string
		asOf     time.Time
	}

	var updated []*models.ManualCostBasisCurrent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, event := range events {
			if err := tx.Create(event).Error; err != nil {
				return fmt.Errorf("failed to append cost basis event: %w", err)
			}
		}

		// Sum deltas per (account, asset) so one batch touches each balance once.
		order := make([]models.CostBasisKey, 0, len(events))
		batch := make(map[models.CostBasisKey]*pairDelta)
		for _, event := range events {
			key := models.CostBasisKey{AccountID: event.AccountID, AssetID: event.AssetID}
			agg, ok := batch[key]
			if !ok {
				agg = &pairDelta{delta: decimal.Zero, currency: event.Currency, asOf: event.EventDate}
				batch[key] = agg
				order = append(order, key)
			}
			agg.delta = agg.delta.Add(event.DeltaAmount)
			if event.EventDate.After(agg.asOf) {
				agg.asOf = event.EventDate
			}
		}

		for _, key := range order {
			agg := batch[key]

			previous := decimal.Zero
			var current models.ManualCostBasisCurrent
			err := tx.Where("account_id = ? AND asset_id = ?", key.AccountID, key.AssetID).
				First(&current).Error
			switch {
			case err == nil:
				previous = current.CostBasisAmount
			case errors.Is(err, gorm.ErrRecordNotFound):
				// first events for this pair start from zero
			default:
				return fmt.Errorf("failed to load current cost basis: %w", err)
			}

			next := previous.Add(agg.delta)
			if next.IsNegative() {
				return &apperrors.NegativeCostBasisError{
					AccountID: key.AccountID,
					AssetID:   key.AssetID,
					Resulting: next,
				}
			}

			row := &models.ManualCostBasisCurrent{
				AccountID:       key.AccountID,
				AssetID:         key.AssetID,
				CostBasisAmount: next,
				Currency:        agg.currency,
				AsOfDate:        models.DateOnly(agg.asOf),
			}
			err = tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "account_id"}, {Name: "asset_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"cost_basis_amount",
					"currency",
					"as_of_date",
					"updated_at",
				}),
			}).Create(row).Error
			if err != nil {
				return fmt.Errorf("failed to upsert current cost basis: %w", err)
			}

			updated = append(updated, row)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *costBasisRepository) GetCurrent(ctx context.Context, accountIDs, assetIDs []string) ([]*models.ManualCostBasisCurrent, error) {
	query := r.db.WithContext(ctx).Model(&models.ManualCostBasisCurrent{})

	if len(accountIDs) > 0 {
		query = query.Where("account_id IN ?", accountIDs)
	}
	if len(assetIDs) > 0 {
		query = query.Where("asset_id IN ?", assetIDs)
	}

	var rows []*models.ManualCostBasisCurrent
	if err := query.Order("account_id ASC, asset_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list current cost basis: %w", err)
	}

	return rows, nil
}

package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/repositories"
)

type costBasisService struct {
	repo   repositories.CostBasisRepository
	logger *zap.Logger
}

// NewCostBasisService creates a new manual cost-basis service
func NewCostBasisService(repo repositories.CostBasisRepository, logger *zap.Logger) CostBasisService {
	return &costBasisService{repo: repo, logger: logger}
}

// RecordEvents appends the batch and recomputes each touched balance.
// A delta that would drive a balance negative fails the whole batch and
// nothing is written.
func (s *costBasisService) RecordEvents(ctx context.Context, events []*models.ManualCostBasisEvent) ([]*models.ManualCostBasisCurrent, error) {
	if len(events) == 0 {
		return nil, &errors.ErrValidation{Field: "events", Message: "at least one event is required"}
	}
	for _, event := range events {
		if event == nil {
			return nil, &errors.ErrValidation{Field: "events", Message: "nil event in batch"}
		}
		if err := event.PreSave(); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.RecordBatch(ctx, events)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recorded manual cost basis events",
		zap.Int("events", len(events)),
		zap.Int("balances", len(updated)))

	return updated, nil
}

func (s *costBasisService) FetchCurrent(ctx context.Context, accountIDs, assetIDs []string) ([]*models.ManualCostBasisCurrent, error) {
	return s.repo.GetCurrent(ctx, accountIDs, assetIDs)
}

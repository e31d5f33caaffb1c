package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

func costEvent(t *testing.T, accountID, assetID, date, delta, reason string) *models.ManualCostBasisEvent {
	t.Helper()

	return &models.ManualCostBasisEvent{
		AccountID:   accountID,
		AssetID:     assetID,
		EventDate:   mustDate(t, date),
		DeltaAmount: mustDecimal(t, delta),
		Currency:    "KRW",
		Reason:      reason,
	}
}

func TestRecordEventsAccumulates(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCostBasisService(env.costRepo, zap.NewNop())
	ctx := context.Background()

	updated, err := svc.RecordEvents(ctx, []*models.ManualCostBasisEvent{
		costEvent(t, "acc-1", "apt-1", "2025-01-10", "500000000", "purchase"),
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	requireDecimal(t, "500000000", updated[0].CostBasisAmount)

	updated, err = svc.RecordEvents(ctx, []*models.ManualCostBasisEvent{
		costEvent(t, "acc-1", "apt-1", "2025-03-02", "30000000", "renovation"),
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	requireDecimal(t, "530000000", updated[0].CostBasisAmount)
	require.True(t, updated[0].AsOfDate.Equal(mustDate(t, "2025-03-02")))
}

func TestRecordEventsNetsWithinBatch(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCostBasisService(env.costRepo, zap.NewNop())
	ctx := context.Background()

	// A batch is applied as one net delta per pair, so offsetting entries
	// land on zero instead of dipping negative halfway through.
	updated, err := svc.RecordEvents(ctx, []*models.ManualCostBasisEvent{
		costEvent(t, "acc-1", "apt-1", "2025-01-10", "-1000", "correction"),
		costEvent(t, "acc-1", "apt-1", "2025-01-10", "1000", "correction"),
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.True(t, updated[0].CostBasisAmount.IsZero())
}

func TestRecordEventsRejectsNegativeBalance(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCostBasisService(env.costRepo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.RecordEvents(ctx, []*models.ManualCostBasisEvent{
		costEvent(t, "acc-1", "apt-1", "2025-01-10", "1000", "purchase"),
	})
	require.NoError(t, err)

	_, err = svc.RecordEvents(ctx, []*models.ManualCostBasisEvent{
		costEvent(t, "acc-1", "apt-1", "2025-02-01", "-2000", "bad correction"),
	})
	require.Error(t, err)

	var negative *apperrors.NegativeCostBasisError
	require.True(t, errors.As(err, &negative))
	requireDecimal(t, "-1000", negative.Resulting)

	// The failed batch rolls back whole: no event row, balance untouched.
	var eventCount int64
	require.NoError(t, env.db.WithContext(ctx).Model(&models.ManualCostBasisEvent{}).Count(&eventCount).Error)
	require.EqualValues(t, 1, eventCount)

	current, err := svc.FetchCurrent(ctx, []string{"acc-1"}, nil)
	require.NoError(t, err)
	require.Len(t, current, 1)
	requireDecimal(t, "1000", current[0].CostBasisAmount)
}

func TestRecordEventsValidatesBatch(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCostBasisService(env.costRepo, zap.NewNop())
	ctx := context.Background()

	var validation *apperrors.ErrValidation

	_, err := svc.RecordEvents(ctx, nil)
	require.True(t, errors.As(err, &validation))

	event := costEvent(t, "acc-1", "apt-1", "2025-01-10", "1000", "purchase")
	event.Currency = ""
	_, err = svc.RecordEvents(ctx, []*models.ManualCostBasisEvent{event})
	require.True(t, errors.As(err, &validation))
	require.Equal(t, "currency", validation.Field)
}

func TestFetchCurrentFilters(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCostBasisService(env.costRepo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.RecordEvents(ctx, []*models.ManualCostBasisEvent{
		costEvent(t, "acc-1", "apt-1", "2025-01-10", "1000", "purchase"),
		costEvent(t, "acc-2", "apt-2", "2025-01-10", "2000", "purchase"),
	})
	require.NoError(t, err)

	all, err := svc.FetchCurrent(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	only, err := svc.FetchCurrent(ctx, []string{"acc-2"}, nil)
	require.NoError(t, err)
	require.Len(t, only, 1)
	requireDecimal(t, "2000", only[0].CostBasisAmount)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/services"
)

type mockSnapshotService struct {
	rebuilt struct {
		accountID, assetID string
		start, end         time.Time
	}
	accountRebuilt  string
	latestAccountID string
	listFilter      *models.SnapshotFilter
}

func (m *mockSnapshotService) Rebuild(_ context.Context, accountID, assetID string, start, end time.Time, _ bool) (int, error) {
	m.rebuilt.accountID = accountID
	m.rebuilt.assetID = assetID
	m.rebuilt.start = start
	m.rebuilt.end = end
	return 7, nil
}

func (m *mockSnapshotService) RebuildAccount(_ context.Context, accountID string, _, _ time.Time) (*services.AccountRebuildSummary, error) {
	m.accountRebuilt = accountID
	return &services.AccountRebuildSummary{AccountID: accountID, Pairs: 2, RowsWritten: 9}, nil
}

func (m *mockSnapshotService) ListSnapshots(_ context.Context, filter *models.SnapshotFilter) ([]*models.DailySnapshot, error) {
	m.listFilter = filter
	return []*models.DailySnapshot{}, nil
}

func (m *mockSnapshotService) LatestSnapshots(_ context.Context, accountID string) ([]*models.DailySnapshot, error) {
	m.latestAccountID = accountID
	return []*models.DailySnapshot{}, nil
}

var _ services.SnapshotService = (*mockSnapshotService)(nil)

func TestRebuildSinglePair(t *testing.T) {
	ms := &mockSnapshotService{}
	h := NewSnapshotHandler(ms, zap.NewNop())

	body := []byte(`{"account_id":"acc-1","asset_id":"asset-1","start_date":"2025-01-01","end_date":"2025-01-31"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/snapshots/rebuild", bytes.NewReader(body))
	rw := httptest.NewRecorder()
	h.HandleRebuild(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	if ms.rebuilt.accountID != "acc-1" || ms.rebuilt.assetID != "asset-1" {
		t.Fatalf("unexpected rebuild scope: %+v", ms.rebuilt)
	}

	var resp rebuildResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.RowsWritten != 7 {
		t.Fatalf("expected 7 rows written, got %d", resp.RowsWritten)
	}
}

func TestRebuildWholeAccount(t *testing.T) {
	ms := &mockSnapshotService{}
	h := NewSnapshotHandler(ms, zap.NewNop())

	body := []byte(`{"account_id":"acc-1","start_date":"2025-01-01","end_date":"2025-01-31"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/snapshots/rebuild", bytes.NewReader(body))
	rw := httptest.NewRecorder()
	h.HandleRebuild(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	if ms.accountRebuilt != "acc-1" {
		t.Fatalf("expected account rebuild for acc-1, got %q", ms.accountRebuilt)
	}

	var summary services.AccountRebuildSummary
	if err := json.Unmarshal(rw.Body.Bytes(), &summary); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if summary.Pairs != 2 || summary.RowsWritten != 9 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRebuildRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing account", `{"start_date":"2025-01-01","end_date":"2025-01-31"}`},
		{"bad start date", `{"account_id":"acc-1","start_date":"January 1","end_date":"2025-01-31"}`},
		{"bad end date", `{"account_id":"acc-1","start_date":"2025-01-01","end_date":""}`},
		{"not json", `rebuild please`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSnapshotHandler(&mockSnapshotService{}, zap.NewNop())
			req := httptest.NewRequest(http.MethodPost, "/api/snapshots/rebuild", bytes.NewReader([]byte(tt.body)))
			rw := httptest.NewRecorder()
			h.HandleRebuild(rw, req)

			if rw.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rw.Code, rw.Body.String())
			}
		})
	}
}

func TestLatestSnapshotsDefaultsToAllAccounts(t *testing.T) {
	ms := &mockSnapshotService{}
	h := NewSnapshotHandler(ms, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/latest", nil)
	rw := httptest.NewRecorder()
	h.HandleLatestSnapshots(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if ms.latestAccountID != models.AllAccounts {
		t.Fatalf("expected %s scope, got %q", models.AllAccounts, ms.latestAccountID)
	}
}

func TestListSnapshotsPassesFilter(t *testing.T) {
	ms := &mockSnapshotService{}
	h := NewSnapshotHandler(ms, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots?account_id=acc-1&asset_id=asset-1&start_date=2025-01-01&limit=20", nil)
	rw := httptest.NewRecorder()
	h.HandleSnapshots(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	f := ms.listFilter
	if f == nil || f.AccountID != "acc-1" || f.AssetID != "asset-1" || f.Limit != 20 {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if f.StartDate == nil {
		t.Fatal("expected start date to be parsed")
	}
}

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/errors"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/repositories"
)

// autoCashPrefix opens the memo marker that ties a synthesized cash
// transaction to its originating trade.
const autoCashPrefix = "[auto-cash:"

// mirrorMarker returns the memo marker for a given origin transaction id.
func mirrorMarker(originID string) string {
	return autoCashPrefix + originID + "]"
}

func isMirrorMemo(memo *string) bool {
	return memo != nil && strings.Contains(*memo, autoCashPrefix)
}

// transactionService implements the TransactionService interface
type transactionService struct {
	txRepo    repositories.TransactionRepository
	assetRepo repositories.AssetRepository
	snapshots SnapshotService
	logger    *zap.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(txRepo repositories.TransactionRepository, assetRepo repositories.AssetRepository, snapshots SnapshotService, logger *zap.Logger) TransactionService {
	return &transactionService{
		txRepo:    txRepo,
		assetRepo: assetRepo,
		snapshots: snapshots,
		logger:    logger,
	}
}

// CreateTransaction validates and persists a ledger entry, synthesizes its
// cash mirror when requested, and rebuilds the touched snapshot ranges.
func (s *transactionService) CreateTransaction(ctx context.Context, tx *models.Transaction, autoCash bool) (*TransactionResult, error) {
	if tx == nil {
		return nil, &errors.ErrValidation{Field: "transaction", Message: "transaction is required"}
	}
	if err := tx.PreSave(); err != nil {
		return nil, err
	}
	if isMirrorMemo(tx.Memo) {
		return nil, &errors.ErrValidation{Field: "memo", Message: "the auto-cash marker is reserved for synthesized mirrors"}
	}

	asset, err := s.assetRepo.GetByID(ctx, tx.AssetID)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstAsset(tx, asset); err != nil {
		return nil, err
	}
	if err := s.validateLedgerChange(ctx, tx.AccountID, tx.AssetID, tx, ""); err != nil {
		return nil, err
	}

	// Resolve the mirror target before persisting anything so a missing
	// cash asset rejects the whole request.
	var cashAsset *models.Asset
	if autoCash && needsMirror(tx.TradeType) {
		cashAsset, err = s.cashAssetFor(ctx, asset.Currency)
		if err != nil {
			return nil, err
		}
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	result := &TransactionResult{
		Transaction:  tx,
		RebuildStart: tx.Date,
		RebuildEnd:   rebuildEnd(tx.Date),
	}

	if cashAsset != nil {
		mirror, err := s.createMirror(ctx, tx, cashAsset)
		if err != nil {
			return nil, err
		}
		result.CashTransaction = mirror
	}

	rowsMain, err := s.snapshots.Rebuild(ctx, tx.AccountID, tx.AssetID, result.RebuildStart, result.RebuildEnd, true)
	if err != nil {
		return nil, fmt.Errorf("transaction %s persisted but rebuild failed for %s/%s: %w", tx.ID, tx.AccountID, tx.AssetID, err)
	}
	result.RebuiltRowsMain = rowsMain

	if result.CashTransaction != nil {
		rowsCash, err := s.snapshots.Rebuild(ctx, tx.AccountID, cashAsset.ID, result.RebuildStart, result.RebuildEnd, true)
		if err != nil {
			return nil, fmt.Errorf("transaction %s persisted but cash rebuild failed for %s/%s: %w", tx.ID, tx.AccountID, cashAsset.ID, err)
		}
		result.RebuiltRowsCash = rowsCash
	}

	s.logger.Info("transaction created",
		zap.String("id", tx.ID),
		zap.String("account_id", tx.AccountID),
		zap.String("asset_id", tx.AssetID),
		zap.String("trade_type", string(tx.TradeType)),
		zap.Bool("mirrored", result.CashTransaction != nil))

	return result, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.txRepo.GetByID(ctx, id)
}

func (s *transactionService) ListTransactions(ctx context.Context, filter *models.TransactionFilter) ([]*models.Transaction, error) {
	return s.txRepo.List(ctx, filter)
}

func (s *transactionService) GetTransactionCount(ctx context.Context, filter *models.TransactionFilter) (int, error) {
	return s.txRepo.GetCount(ctx, filter)
}

// UpdateTransaction merges the partial edit onto the stored entry,
// relocates the cash mirror, and rebuilds every pair the edit touched over
// [min(old date, new date), today].
func (s *transactionService) UpdateTransaction(ctx context.Context, id string, update *TransactionUpdate, autoCash bool) (*TransactionResult, error) {
	if update == nil {
		return nil, &errors.ErrValidation{Field: "update", Message: "update is required"}
	}

	original, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if isMirrorMemo(original.Memo) {
		return nil, &errors.ErrValidation{Field: "id", Message: "auto-cash mirrors are managed through their originating transaction"}
	}

	merged := *original
	applyUpdate(&merged, update)
	if err := merged.PreSave(); err != nil {
		return nil, err
	}
	if isMirrorMemo(merged.Memo) {
		return nil, &errors.ErrValidation{Field: "memo", Message: "the auto-cash marker is reserved for synthesized mirrors"}
	}

	asset, err := s.assetRepo.GetByID(ctx, merged.AssetID)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstAsset(&merged, asset); err != nil {
		return nil, err
	}

	if merged.AccountID == original.AccountID && merged.AssetID == original.AssetID {
		err = s.validateLedgerChange(ctx, merged.AccountID, merged.AssetID, &merged, original.ID)
	} else {
		// The edit moved the entry: the old pair loses it, the new pair
		// gains it, and both resulting ledgers must stay replayable.
		if err := s.validateLedgerChange(ctx, original.AccountID, original.AssetID, nil, original.ID); err != nil {
			return nil, err
		}
		err = s.validateLedgerChange(ctx, merged.AccountID, merged.AssetID, &merged, "")
	}
	if err != nil {
		return nil, err
	}

	// Locate the existing mirror before touching anything; more than one
	// match is reported, never guessed at.
	oldMirror, err := s.findMirror(ctx, id)
	if err != nil {
		return nil, err
	}

	var cashAsset *models.Asset
	if autoCash && needsMirror(merged.TradeType) {
		cashAsset, err = s.cashAssetFor(ctx, asset.Currency)
		if err != nil {
			return nil, err
		}
	}

	if err := s.txRepo.Update(ctx, &merged); err != nil {
		return nil, err
	}

	if oldMirror != nil {
		if err := s.txRepo.Delete(ctx, oldMirror.ID); err != nil {
			return nil, fmt.Errorf("failed to remove stale mirror %s: %w", oldMirror.ID, err)
		}
	}

	result := &TransactionResult{
		Transaction:  &merged,
		RebuildStart: minDate(original.Date, merged.Date),
		RebuildEnd:   rebuildEnd(original.Date, merged.Date),
	}

	if cashAsset != nil {
		mirror, err := s.createMirror(ctx, &merged, cashAsset)
		if err != nil {
			return nil, err
		}
		result.CashTransaction = mirror
	}

	// The original pair always rebuilds; the new pair too when the edit
	// moved the transaction.
	rowsMain, err := s.rebuildPairs(ctx, result.RebuildStart, result.RebuildEnd,
		pairKey{original.AccountID, original.AssetID},
		pairKey{merged.AccountID, merged.AssetID})
	if err != nil {
		return nil, fmt.Errorf("transaction %s updated but rebuild failed: %w", id, err)
	}
	result.RebuiltRowsMain = rowsMain

	cashPairs := make([]pairKey, 0, 2)
	if oldMirror != nil {
		cashPairs = append(cashPairs, pairKey{oldMirror.AccountID, oldMirror.AssetID})
	}
	if result.CashTransaction != nil {
		cashPairs = append(cashPairs, pairKey{result.CashTransaction.AccountID, result.CashTransaction.AssetID})
	}
	if len(cashPairs) > 0 {
		rowsCash, err := s.rebuildPairs(ctx, result.RebuildStart, result.RebuildEnd, cashPairs...)
		if err != nil {
			return nil, fmt.Errorf("transaction %s updated but cash rebuild failed: %w", id, err)
		}
		result.RebuiltRowsCash = rowsCash
	}

	s.logger.Info("transaction updated",
		zap.String("id", id),
		zap.Time("rebuild_start", result.RebuildStart),
		zap.Time("rebuild_end", result.RebuildEnd))

	return result, nil
}

// DeleteTransaction removes the entry and its mirror, then rebuilds both
// pairs over [entry date, today].
func (s *transactionService) DeleteTransaction(ctx context.Context, id string) (*DeleteResult, error) {
	original, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if isMirrorMemo(original.Memo) {
		return nil, &errors.ErrValidation{Field: "id", Message: "auto-cash mirrors are managed through their originating transaction"}
	}

	mirror, err := s.findMirror(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validateLedgerChange(ctx, original.AccountID, original.AssetID, nil, id); err != nil {
		return nil, err
	}

	if err := s.txRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	if mirror != nil {
		if err := s.txRepo.Delete(ctx, mirror.ID); err != nil {
			return nil, fmt.Errorf("failed to delete mirror %s: %w", mirror.ID, err)
		}
	}

	result := &DeleteResult{
		DeletedID:    id,
		RebuildStart: original.Date,
		RebuildEnd:   rebuildEnd(original.Date),
	}

	rowsMain, err := s.snapshots.Rebuild(ctx, original.AccountID, original.AssetID, result.RebuildStart, result.RebuildEnd, true)
	if err != nil {
		return nil, fmt.Errorf("transaction %s deleted but rebuild failed for %s/%s: %w", id, original.AccountID, original.AssetID, err)
	}
	result.RebuiltRowsMain = rowsMain

	if mirror != nil {
		result.CashDeletedID = mirror.ID
		rowsCash, err := s.snapshots.Rebuild(ctx, mirror.AccountID, mirror.AssetID, result.RebuildStart, result.RebuildEnd, true)
		if err != nil {
			return nil, fmt.Errorf("transaction %s deleted but cash rebuild failed for %s/%s: %w", id, mirror.AccountID, mirror.AssetID, err)
		}
		result.RebuiltRowsCash = rowsCash
	}

	s.logger.Info("transaction deleted",
		zap.String("id", id),
		zap.Bool("mirror_deleted", mirror != nil))

	return result, nil
}

// createMirror synthesizes and persists the offsetting cash transaction:
// a BUY withdraws its gross amount, a SELL deposits its net proceeds.
// A SELL whose costs consume the proceeds leaves nothing to deposit and
// creates no mirror.
func (s *transactionService) createMirror(ctx context.Context, origin *models.Transaction, cashAsset *models.Asset) (*models.Transaction, error) {
	var (
		mirrorType models.TradeType
		amount     decimal.Decimal
	)
	switch origin.TradeType {
	case models.TradeTypeBuy:
		mirrorType = models.TradeTypeWithdraw
		amount = origin.GrossAmount()
	case models.TradeTypeSell:
		mirrorType = models.TradeTypeDeposit
		amount = origin.NetProceeds()
	default:
		return nil, nil
	}

	if !amount.IsPositive() {
		s.logger.Debug("skipping zero-amount cash mirror", zap.String("origin_id", origin.ID))
		return nil, nil
	}

	memo := mirrorMarker(origin.ID)
	mirror := &models.Transaction{
		AccountID: origin.AccountID,
		AssetID:   cashAsset.ID,
		Date:      origin.Date,
		TradeType: mirrorType,
		Quantity:  amount,
		Price:     decimal.NewFromInt(1),
		Memo:      &memo,
	}
	if err := mirror.PreSave(); err != nil {
		return nil, err
	}
	if err := s.txRepo.Create(ctx, mirror); err != nil {
		return nil, fmt.Errorf("failed to create cash mirror: %w", err)
	}

	return mirror, nil
}

// findMirror locates the auto-cash transaction tied to the origin id.
// Zero matches is fine; more than one is an AmbiguousMirror error.
func (s *transactionService) findMirror(ctx context.Context, originID string) (*models.Transaction, error) {
	mirrors, err := s.txRepo.FindByMemo(ctx, mirrorMarker(originID))
	if err != nil {
		return nil, err
	}
	switch len(mirrors) {
	case 0:
		return nil, nil
	case 1:
		return mirrors[0], nil
	default:
		return nil, &errors.AmbiguousMirrorError{TransactionID: originID, Count: len(mirrors)}
	}
}

func (s *transactionService) cashAssetFor(ctx context.Context, currency string) (*models.Asset, error) {
	assets, err := s.assetRepo.ListCashByCurrency(ctx, currency)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, &errors.CashAssetNotFoundError{Currency: currency}
	}
	return assets[0], nil
}

// validateLedgerChange replays the pair's ledger with the proposed change in
// place. An edit that would leave any sale exceeding the held quantity is
// rejected before anything is persisted, so the stored ledger always replays
// cleanly. add is the candidate entry (nil for pure removals), removeID the
// entry leaving the pair ("" for pure inserts).
func (s *transactionService) validateLedgerChange(ctx context.Context, accountID, assetID string, add *models.Transaction, removeID string) error {
	txs, err := s.txRepo.ListForPair(ctx, accountID, assetID)
	if err != nil {
		return err
	}

	ledger := make([]*models.Transaction, 0, len(txs)+1)
	for _, t := range txs {
		if removeID != "" && t.ID == removeID {
			continue
		}
		ledger = append(ledger, t)
	}
	if add != nil {
		ledger = append(ledger, add)
		// Stable by day: the candidate slots in after existing entries of
		// the same date, matching how it would replay once stored.
		sort.SliceStable(ledger, func(i, j int) bool {
			return models.DateOnly(ledger[i].Date).Before(models.DateOnly(ledger[j].Date))
		})
	}

	_, err = ApplyAll(ledger)
	return err
}

type pairKey struct {
	accountID string
	assetID   string
}

// rebuildPairs rebuilds each distinct pair once, summing rows written.
func (s *transactionService) rebuildPairs(ctx context.Context, start, end time.Time, pairs ...pairKey) (int, error) {
	seen := make(map[pairKey]bool, len(pairs))
	total := 0
	for _, pair := range pairs {
		if seen[pair] {
			continue
		}
		seen[pair] = true

		rows, err := s.snapshots.Rebuild(ctx, pair.accountID, pair.assetID, start, end, true)
		if err != nil {
			return total, fmt.Errorf("rebuild %s/%s: %w", pair.accountID, pair.assetID, err)
		}
		total += rows
	}
	return total, nil
}

// validateAgainstAsset enforces the trade-type/price-source pairing rules:
// cash flows need a cash asset, trades must not target one.
func validateAgainstAsset(tx *models.Transaction, asset *models.Asset) error {
	switch tx.TradeType {
	case models.TradeTypeDeposit, models.TradeTypeWithdraw:
		if asset.PriceSource != models.PriceSourceCash {
			return &errors.CashAssetRequiredError{AssetID: tx.AssetID, TradeType: string(tx.TradeType)}
		}
	case models.TradeTypeBuy, models.TradeTypeSell:
		if asset.PriceSource == models.PriceSourceCash {
			return &errors.ErrValidation{Field: "asset_id", Message: "cash assets accept only DEPOSIT and WITHDRAW"}
		}
	case models.TradeTypeInit:
		// opening balances are allowed for any price source
	default:
		return &errors.InvalidTradeTypeError{TradeType: string(tx.TradeType)}
	}
	return nil
}

func needsMirror(tradeType models.TradeType) bool {
	return tradeType == models.TradeTypeBuy || tradeType == models.TradeTypeSell
}

func applyUpdate(tx *models.Transaction, update *TransactionUpdate) {
	if update.AccountID != nil {
		tx.AccountID = *update.AccountID
	}
	if update.AssetID != nil {
		tx.AssetID = *update.AssetID
	}
	if update.Date != nil {
		tx.Date = *update.Date
	}
	if update.TradeType != nil {
		tx.TradeType = *update.TradeType
	}
	if update.Quantity != nil {
		tx.Quantity = *update.Quantity
	}
	if update.Price != nil {
		tx.Price = *update.Price
	}
	if update.Fee != nil {
		tx.Fee = *update.Fee
	}
	if update.Tax != nil {
		tx.Tax = *update.Tax
	}
	if update.Memo != nil {
		tx.Memo = update.Memo
	}
}

// rebuildEnd returns today or the latest given date, whichever is later,
// so future-dated entries still cover their own day.
func rebuildEnd(dates ...time.Time) time.Time {
	end := models.DateOnly(time.Now())
	for _, d := range dates {
		d = models.DateOnly(d)
		if d.After(end) {
			end = d
		}
	}
	return end
}

func minDate(a, b time.Time) time.Time {
	a = models.DateOnly(a)
	b = models.DateOnly(b)
	if b.Before(a) {
		return b
	}
	return a
}

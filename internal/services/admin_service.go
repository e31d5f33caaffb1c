package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/repositories"
)

// adminService implements the AdminService interface
type adminService struct {
	accountRepo repositories.AccountRepository
	assetRepo   repositories.AssetRepository
	logger      *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(accountRepo repositories.AccountRepository, assetRepo repositories.AssetRepository, logger *zap.Logger) AdminService {
	return &adminService{
		accountRepo: accountRepo,
		assetRepo:   assetRepo,
		logger:      logger,
	}
}

// Account methods

func (s *adminService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.accountRepo.List(ctx)
}

func (s *adminService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

func (s *adminService) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := account.PreSave(); err != nil {
		return err
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return err
	}

	s.logger.Info("account created", zap.String("id", account.ID), zap.String("name", account.Name))
	return nil
}

func (s *adminService) UpdateAccount(ctx context.Context, account *models.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	return s.accountRepo.Update(ctx, account)
}

func (s *adminService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("account deleted", zap.String("id", id))
	return nil
}

// Asset methods

func (s *adminService) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	return s.assetRepo.List(ctx)
}

func (s *adminService) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	return s.assetRepo.GetByID(ctx, id)
}

func (s *adminService) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if err := asset.PreSave(); err != nil {
		return err
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return err
	}

	s.logger.Info("asset created",
		zap.String("id", asset.ID),
		zap.String("ticker", asset.Ticker),
		zap.String("price_source", string(asset.PriceSource)))
	return nil
}

func (s *adminService) UpdateAsset(ctx context.Context, asset *models.Asset) error {
	if err := asset.PreSave(); err != nil {
		return err
	}
	return s.assetRepo.Update(ctx, asset)
}

func (s *adminService) DeleteAsset(ctx context.Context, id string) error {
	if err := s.assetRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("asset deleted", zap.String("id", id))
	return nil
}

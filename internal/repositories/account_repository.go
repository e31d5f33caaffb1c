package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/db"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
)

type accountRepository struct {
	db *db.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(database *db.DB) AccountRepository {
	return &accountRepository{db: database}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if id == "" {
		return nil, fmt.Errorf("account not found: %s", id)
	}

	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

func (r *accountRepository) List(ctx context.Context) ([]*models.Account, error) {
	var accounts []*models.Account
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	if account == nil || account.ID == "" {
		return fmt.Errorf("account id is required")
	}

	result := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", account.ID).
		Select("*").Omit("id", "created_at").
		Updates(account)
	if result.Error != nil {
		return fmt.Errorf("failed to update account: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("account not found: %s", account.ID)
	}

	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Account{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("account not found: %s", id)
	}

	return nil
}

package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"arcade/backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("account not found")

// Repository is the account store.
type Repository interface {
	Get(ctx context.Context, email string) (models.Account, error)
	Set(ctx context.Context, account models.Account) error
	Has(ctx context.Context, email string) (bool, error)
}

// MemoryRepository keeps accounts in a map keyed by email.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]models.Account)}
}

func (r *MemoryRepository) Get(_ context.Context, email string) (models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[email]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	return account, nil
}

func (r *MemoryRepository) Set(_ context.Context, account models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.Email] = account
	return nil
}

func (r *MemoryRepository) Has(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.accounts[email]
	return ok, nil
}

// GormRepository stores accounts in the accounts table.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Get(ctx context.Context, email string) (models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (r *GormRepository) Set(ctx context.Context, account models.Account) error {
	db := r.db.WithContext(ctx)

	var existing models.Account
	err := db.Where("email = ?", account.Email).First(&existing).Error
	switch {
	case err == nil:
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("set account: %w", err)
	}

	if err := db.Save(&account).Error; err != nil {
		return fmt.Errorf("set account: %w", err)
	}
	return nil
}

func (r *GormRepository) Has(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("has account: %w", err)
	}
	return count > 0, nil
}

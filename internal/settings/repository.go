package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbostore/storefront-backend/pkg/db/models"
)

// Repository wires payment settings persistence. The table holds at most one
// row.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Transact runs fn against a transaction-bound copy of the repository.
func (r *Repository) Transact(ctx context.Context, fn func(*Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// Get loads the settings row.
func (r *Repository) Get(ctx context.Context) (*models.PaymentSettings, error) {
	var row models.PaymentSettings
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Save upserts the single settings row.
func (r *Repository) Save(ctx context.Context, row *models.PaymentSettings) (*models.PaymentSettings, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbostore/storefront-backend/pkg/db/models"
	"github.com/tbostore/storefront-backend/pkg/enums"
)

// Repository wires order persistence.
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

// Create persists an order, assigning the order number when the caller left
// it blank.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.OrderNumber == "" {
		order.OrderNumber = r.GenerateOrderNumber(ctx)
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateFromSession records the order for a hosted checkout session unless
// one was already recorded. The lookup and insert share a transaction so a
// replayed webhook cannot insert a second order for the session.
func (r *Repository) CreateFromSession(ctx context.Context, order *models.Order) (created *models.Order, existed bool, err error) {
	if order.StripeSessionID == nil || *order.StripeSessionID == "" {
		return nil, false, fmt.Errorf("stripe session id required")
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := r.WithTx(tx)
		found, findErr := repo.FindByStripeSessionID(ctx, *order.StripeSessionID)
		if findErr == nil {
			created, existed = found, true
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		var createErr error
		created, createErr = repo.Create(ctx, order)
		return createErr
	})
	if err != nil {
		return nil, false, err
	}
	return created, existed, nil
}

// GenerateOrderNumber asks the database sequence for the next human-readable
// order number. When the function is unavailable it falls back to a
// timestamp-based number so a submission is never blocked on numbering.
func (r *Repository) GenerateOrderNumber(ctx context.Context) string {
	var number string
	err := r.db.WithContext(ctx).Raw("SELECT generate_order_number()").Scan(&number).Error
	if err != nil || number == "" {
		return fmt.Sprintf("TBO-%d", time.Now().UnixMilli())
	}
	return number
}

// FindByID loads a single order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber loads the order for a shopper-facing number.
func (r *Repository) FindByOrderNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "order_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByStripeSessionID loads the order recorded for a hosted checkout
// session, if one exists yet.
func (r *Repository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		First(&order, "stripe_session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status *enums.OrderStatus) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var found []models.Order
	if err := query.Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// UpdateStatus moves the order to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

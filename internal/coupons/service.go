package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tbostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
)

// Discount is a validated percent-off applied to a cart subtotal.
type Discount struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
}

// Apply reduces a canonical minor-unit subtotal by the discount percent,
// truncating toward zero so the shopper is never overcharged by rounding.
func (d Discount) Apply(subtotalHalalas int64) int64 {
	if d.Percent <= 0 {
		return subtotalHalalas
	}
	return subtotalHalalas - subtotalHalalas*int64(d.Percent)/100
}

// CouponDTO is the admin-facing coupon payload.
type CouponDTO struct {
	ID              uuid.UUID  `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent int        `json:"discount_percent"`
	IsActive        bool       `json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateCouponInput holds the validated payload to create a coupon.
type CreateCouponInput struct {
	Code            string
	DiscountPercent int
	IsActive        bool
	ExpiresAt       *time.Time
}

// UpdateCouponInput holds optional mutation values for a coupon.
type UpdateCouponInput struct {
	DiscountPercent *int
	IsActive        *bool
	ExpiresAt       *time.Time
	ClearExpiry     bool
}

// Service validates shopper-entered codes and manages coupons for admins.
type Service interface {
	// Validate resolves a code into a usable discount, rejecting unknown,
	// inactive, and expired coupons.
	Validate(ctx context.Context, code string) (*Discount, error)
	List(ctx context.Context) ([]CouponDTO, error)
	Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*CouponDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a coupon service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Validate(ctx context.Context, code string) (*Discount, error) {
	if NormalizeCode(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "coupon code is required")
	}
	found, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}
	if !found.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	}
	if found.ExpiresAt != nil && !found.ExpiresAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	return &Discount{Code: found.Code, Percent: found.DiscountPercent}, nil
}

func (s *service) List(ctx context.Context) ([]CouponDTO, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing coupons")
	}
	dtos := make([]CouponDTO, 0, len(coupons))
	for i := range coupons {
		dtos = append(dtos, newCouponDTO(&coupons[i]))
	}
	return dtos, nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error) {
	if NormalizeCode(input.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if err := validatePercent(input.DiscountPercent); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &models.Coupon{
		ID:              uuid.New(),
		Code:            input.Code,
		DiscountPercent: input.DiscountPercent,
		IsActive:        input.IsActive,
		ExpiresAt:       input.ExpiresAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating coupon")
	}
	dto := newCouponDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*CouponDTO, error) {
	var dto CouponDTO
	// Load and save share a transaction so concurrent admin edits cannot
	// interleave.
	err := s.repo.Transact(ctx, func(repo *Repository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
		}

		if input.DiscountPercent != nil {
			if err := validatePercent(*input.DiscountPercent); err != nil {
				return err
			}
			existing.DiscountPercent = *input.DiscountPercent
		}
		if input.IsActive != nil {
			existing.IsActive = *input.IsActive
		}
		if input.ClearExpiry {
			existing.ExpiresAt = nil
		} else if input.ExpiresAt != nil {
			existing.ExpiresAt = input.ExpiresAt
		}

		updated, err := repo.Update(ctx, existing)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating coupon")
		}
		dto = newCouponDTO(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting coupon")
	}
	return nil
}

func newCouponDTO(coupon *models.Coupon) CouponDTO {
	return CouponDTO{
		ID:              coupon.ID,
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
		IsActive:        coupon.IsActive,
		ExpiresAt:       coupon.ExpiresAt,
		CreatedAt:       coupon.CreatedAt,
		UpdatedAt:       coupon.UpdatedAt,
	}
}

func validatePercent(percent int) error {
	if percent < 1 || percent > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be between 1 and 100")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tbostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  discount_percent INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func newCouponService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(setupCouponsTestDB(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func seedCoupon(t *testing.T, repo *Repository, code string, percent int, active bool, expiresAt *time.Time) *models.Coupon {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.Coupon{
		ID:              uuid.New(),
		Code:            code,
		DiscountPercent: percent,
		IsActive:        active,
		ExpiresAt:       expiresAt,
	})
	require.NoError(t, err)
	return created
}

func TestValidate_ActiveCoupon(t *testing.T) {
	svc, repo := newCouponService(t)
	seedCoupon(t, repo, "SAVE20", 20, true, nil)

	discount, err := svc.Validate(context.Background(), "save20")
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", discount.Code)
	assert.Equal(t, 20, discount.Percent)
}

func TestValidate_RejectsBadCoupons(t *testing.T) {
	svc, repo := newCouponService(t)
	past := time.Now().Add(-time.Hour)
	seedCoupon(t, repo, "EXPIRED", 10, true, &past)
	seedCoupon(t, repo, "DISABLED", 10, false, nil)

	cases := []struct {
		name string
		code string
		want pkgerrors.Code
	}{
		{name: "unknown", code: "GHOST", want: pkgerrors.CodeNotFound},
		{name: "expired", code: "EXPIRED", want: pkgerrors.CodeValidation},
		{name: "inactive", code: "DISABLED", want: pkgerrors.CodeValidation},
		{name: "blank", code: "   ", want: pkgerrors.CodeInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tc.code)
			assert.Equal(t, tc.want, pkgerrors.CodeOf(err))
		})
	}
}

func TestCreate_InactiveCouponStaysInactive(t *testing.T) {
	svc, repo := newCouponService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCouponInput{
		Code:            "LAUNCH",
		DiscountPercent: 15,
		IsActive:        false,
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	stored, err := repo.FindByCode(ctx, "LAUNCH")
	require.NoError(t, err)
	assert.False(t, stored.IsActive, "staged coupon must not be stored active")

	_, err = svc.Validate(ctx, "LAUNCH")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestDiscount_Apply(t *testing.T) {
	cases := []struct {
		name     string
		percent  int
		subtotal int64
		want     int64
	}{
		{name: "twenty percent off130", percent: 20, subtotal: 13000, want: 10400},
		{name: "truncates toward zero", percent: 33, subtotal: 100, want: 67},
		{name: "zero percent", percent: 0, subtotal: 5000, want: 5000},
		{name: "full discount", percent: 100, subtotal: 5000, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Discount{Code: "X", Percent: tc.percent}.Apply(tc.subtotal)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCreate_RejectsDuplicateCode(t *testing.T) {
	svc, repo := newCouponService(t)
	seedCoupon(t, repo, "ONCE", 15, true, nil)

	_, err := svc.Create(context.Background(), CreateCouponInput{
		Code:            "once",
		DiscountPercent: 15,
		IsActive:        true,
	})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestCreate_RejectsOutOfRangePercent(t *testing.T) {
	svc, _ := newCouponService(t)

	for _, percent := range []int{0, 101, -5} {
		_, err := svc.Create(context.Background(), CreateCouponInput{
			Code:            "PCT",
			DiscountPercent: percent,
		})
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	}
}

func TestUpdate_TogglesAndClearsExpiry(t *testing.T) {
	svc, repo := newCouponService(t)
	future := time.Now().Add(24 * time.Hour)
	created := seedCoupon(t, repo, "TOGGLE", 25, true, &future)

	inactive := false
	updated, err := svc.Update(context.Background(), created.ID, UpdateCouponInput{
		IsActive:    &inactive,
		ClearExpiry: true,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Nil(t, updated.ExpiresAt)
}

func TestDelete_MissingCoupon(t *testing.T) {
	svc, _ := newCouponService(t)

	err := svc.Delete(context.Background(), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

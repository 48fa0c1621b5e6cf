package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

func newOrderService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(setupOrdersTestDB(t))
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc, repo
}

func TestGetByNumber(t *testing.T) {
	svc, repo := newOrderService(t)
	ctx := context.Background()

	order := testOrder(enums.PaymentMethodChatHandoff)
	order.OrderNumber = "TBO-000321"
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	dto, err := svc.GetByNumber(ctx, " TBO-000321 ")
	require.NoError(t, err)
	assert.Equal(t, "TBO-000321", dto.OrderNumber)

	_, err = svc.GetByNumber(ctx, "TBO-999999")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.GetByNumber(ctx, "   ")
	assert.Equal(t, pkgerrors.CodeInvalidInput, pkgerrors.CodeOf(err))
}

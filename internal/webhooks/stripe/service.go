package stripewebhook

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/tbostore/storefront-backend/pkg/db/models"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
	"github.com/tbostore/storefront-backend/pkg/types"
)

type orderStore interface {
	// CreateFromSession inserts the order unless one already exists for its
	// stripe session, reporting which of the two happened.
	CreateFromSession(ctx context.Context, order *models.Order) (*models.Order, bool, error)
}

// LineItemLister fetches the line items of a completed checkout session.
type LineItemLister interface {
	ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
}

type lineItemListerWrapper struct{}

// NewLineItemLister wraps the package-level Stripe API so the webhook service
// can be tested.
func NewLineItemLister() LineItemLister {
	return &lineItemListerWrapper{}
}

func (lineItemListerWrapper) ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{Session: stripe.String(sessionID)}
	params.Context = ctx
	var items []*stripe.LineItem
	iter := session.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	return items, iter.Err()
}

// ServiceParams bundles the webhook service dependencies.
type ServiceParams struct {
	Orders    orderStore
	LineItems LineItemLister
	Logger    *logger.Logger
}

// Service turns completed hosted checkout sessions into durable paid orders.
// Event replay is guarded at the HTTP edge; the service additionally dedupes
// on the session id so a replay never inserts twice.
type Service struct {
	orders    orderStore
	lineItems LineItemLister
	logger    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order store required")
	}
	if params.LineItems == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "line item lister required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		orders:    params.Orders,
		lineItems: params.LineItems,
		logger:    params.Logger,
	}, nil
}

// HandleEvent processes a verified Stripe event. Unrelated event types are
// acknowledged without side effects.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil
	}

	var checkoutSession stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}
	return s.recordPaidOrder(ctx, &checkoutSession)
}

func (s *Service) recordPaidOrder(ctx context.Context, checkoutSession *stripe.CheckoutSession) error {
	if checkoutSession.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}
	ctx = s.logger.WithField(ctx, "stripe_session_id", checkoutSession.ID)

	lineItems, err := s.lineItems.ListLineItems(ctx, checkoutSession.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing session line items")
	}

	items := make(types.OrderItems, 0, len(lineItems))
	var subtotal int64
	for _, item := range lineItems {
		quantity := int(item.Quantity)
		if quantity <= 0 {
			quantity = 1
		}
		unitPrice := item.AmountTotal / int64(quantity)
		if item.Price != nil && item.Price.UnitAmount > 0 {
			unitPrice = item.Price.UnitAmount
		}
		items = append(items, types.OrderItem{
			Name:             item.Description,
			UnitPriceHalalas: unitPrice,
			Quantity:         quantity,
			LineTotalHalalas: item.AmountTotal,
		})
		subtotal += unitPrice * int64(quantity)
	}

	order := &models.Order{
		ID:              uuid.New(),
		CustomerName:    metadataOr(checkoutSession.Metadata, "customer_name", "Unknown"),
		CustomerPhone:   customerPhone(checkoutSession),
		CustomerAddress: metadataOr(checkoutSession.Metadata, "customer_address", ""),
		Items:           items,
		PaymentMethod:   enums.PaymentMethodHostedCheckout,
		Currency:        enums.CurrencySAR,
		SubtotalHalalas: subtotal,
		DiscountPercent: discountPercent(checkoutSession.Metadata),
		TotalHalalas:    checkoutSession.AmountTotal,
		CouponCode:      couponCode(checkoutSession.Metadata),
		Status:          enums.OrderStatusPaid,
		Notes:           notes(checkoutSession.Metadata),
		StripeSessionID: &checkoutSession.ID,
	}

	created, existed, err := s.orders.CreateFromSession(ctx, order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording paid order")
	}
	if existed {
		s.logger.Info(ctx, "order already recorded for session")
		return nil
	}
	s.logger.Info(s.logger.WithOrderNumber(ctx, created.OrderNumber), "paid order recorded")
	return nil
}

func metadataOr(metadata map[string]string, key, fallback string) string {
	if value, ok := metadata[key]; ok && value != "" {
		return value
	}
	return fallback
}

func customerPhone(checkoutSession *stripe.CheckoutSession) string {
	if phone := metadataOr(checkoutSession.Metadata, "customer_phone", ""); phone != "" {
		return phone
	}
	if checkoutSession.CustomerDetails != nil {
		return checkoutSession.CustomerDetails.Phone
	}
	return ""
}

func discountPercent(metadata map[string]string) int {
	raw := metadataOr(metadata, "coupon_discount", "")
	if raw == "" {
		return 0
	}
	percent, err := strconv.Atoi(raw)
	if err != nil || percent < 0 {
		return 0
	}
	return percent
}

func couponCode(metadata map[string]string) *string {
	if code := metadataOr(metadata, "coupon_code", ""); code != "" {
		return &code
	}
	return nil
}

func notes(metadata map[string]string) *string {
	if value := metadataOr(metadata, "notes", ""); value != "" {
		return &value
	}
	return nil
}

package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/tbostore/storefront-backend/pkg/db/models"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type stubOrders struct {
	created []*models.Order
	bySess  map[string]*models.Order
	err     error
}

func (s *stubOrders) CreateFromSession(_ context.Context, order *models.Order) (*models.Order, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if existing, ok := s.bySess[*order.StripeSessionID]; ok {
		return existing, true, nil
	}
	order.OrderNumber = "TBO-000123"
	s.created = append(s.created, order)
	if s.bySess == nil {
		s.bySess = map[string]*models.Order{}
	}
	s.bySess[*order.StripeSessionID] = order
	return order, false, nil
}

type stubLineItems struct {
	items []*stripe.LineItem
	err   error
}

func (s *stubLineItems) ListLineItems(context.Context, string) ([]*stripe.LineItem, error) {
	return s.items, s.err
}

func newWebhookService(t *testing.T, orders *stubOrders, lineItems *stubLineItems) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Orders:    orders,
		LineItems: lineItems,
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func completedEvent(t *testing.T, sessionID string, metadata map[string]string, amountTotal int64) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":           sessionID,
		"amount_total": amountTotal,
		"metadata":     metadata,
	})
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_" + sessionID,
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEvent_RecordsPaidOrder(t *testing.T) {
	orders := &stubOrders{bySess: map[string]*models.Order{}}
	lineItems := &stubLineItems{items: []*stripe.LineItem{{
		Description: "oud blend",
		Quantity:    2,
		AmountTotal: 20800,
		Price:       &stripe.Price{UnitAmount: 13000},
	}}}
	svc := newWebhookService(t, orders, lineItems)

	event := completedEvent(t, "cs_test_1", map[string]string{
		"customer_name":    "Test Customer",
		"customer_phone":   "+966500000001",
		"customer_address": "Riyadh",
		"coupon_code":      "SAVE20",
		"coupon_discount":  "20",
	}, 20800)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(orders.created) != 1 {
		t.Fatalf("expected one order, got %d", len(orders.created))
	}
	created := orders.created[0]
	if created.Status != enums.OrderStatusPaid {
		t.Fatalf("expected paid status, got %s", created.Status)
	}
	if created.PaymentMethod != enums.PaymentMethodHostedCheckout {
		t.Fatalf("expected hosted checkout method, got %s", created.PaymentMethod)
	}
	if created.TotalHalalas != 20800 || created.SubtotalHalalas != 26000 {
		t.Fatalf("unexpected totals: %+v", created)
	}
	if created.CouponCode == nil || *created.CouponCode != "SAVE20" || created.DiscountPercent != 20 {
		t.Fatalf("coupon metadata not carried: %+v", created)
	}
	if created.StripeSessionID == nil || *created.StripeSessionID != "cs_test_1" {
		t.Fatal("expected the session id on the order")
	}
}

func TestHandleEvent_ExistingSessionOrderIsIdempotent(t *testing.T) {
	existing := &models.Order{OrderNumber: "TBO-000001"}
	orders := &stubOrders{bySess: map[string]*models.Order{"cs_test_3": existing}}
	svc := newWebhookService(t, orders, &stubLineItems{})

	event := completedEvent(t, "cs_test_3", nil, 100)
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(orders.created) != 0 {
		t.Fatal("an already recorded session must not insert again")
	}
}

func TestHandleEvent_LineItemFetchFailure(t *testing.T) {
	orders := &stubOrders{bySess: map[string]*models.Order{}}
	svc := newWebhookService(t, orders, &stubLineItems{err: errors.New("api unavailable")})

	event := completedEvent(t, "cs_test_4", nil, 100)
	err := svc.HandleEvent(context.Background(), event)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	if len(orders.created) != 0 {
		t.Fatal("no order may be recorded when line items cannot be fetched")
	}
}

func TestHandleEvent_IgnoresUnrelatedEvents(t *testing.T) {
	orders := &stubOrders{bySess: map[string]*models.Order{}}
	svc := newWebhookService(t, orders, &stubLineItems{})

	event := &stripe.Event{
		ID:   "evt_other",
		Type: stripe.EventTypePaymentIntentCreated,
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(orders.created) != 0 {
		t.Fatal("unrelated events must not create orders")
	}
}

func TestHandleEvent_MissingData(t *testing.T) {
	svc := newWebhookService(t, &stubOrders{}, &stubLineItems{})

	err := svc.HandleEvent(context.Background(), &stripe.Event{ID: "evt"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

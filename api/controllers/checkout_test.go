package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tbostore/storefront-backend/api/middleware"
	checkoutsvc "github.com/tbostore/storefront-backend/internal/checkout"
	"github.com/tbostore/storefront-backend/internal/orders"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	result    *checkoutsvc.SubmitResult
	submitErr error

	gotSessionID string
	gotInput     checkoutsvc.SubmitInput
}

func (s *stubCheckoutService) Submit(ctx context.Context, sessionID string, input checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error) {
	s.gotSessionID = sessionID
	s.gotInput = input
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.result, nil
}

func (s *stubCheckoutService) Confirm(ctx context.Context, sessionID, stripeSessionID string) (*orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not recorded yet")
}

func checkoutPayload() map[string]any {
	return map[string]any{
		"customer_name":    "Sara Alqahtani",
		"customer_phone":   "+966501234567",
		"customer_address": "123 King Fahd Rd, Riyadh",
		"payment_method":   "chat_handoff",
		"language":         "ar",
	}
}

func postCheckout(t *testing.T, svc checkoutsvc.Service, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	rec := httptest.NewRecorder()
	Checkout(svc, testLogger()).ServeHTTP(rec, req)
	return rec
}

func TestCheckout_Success(t *testing.T) {
	stub := &stubCheckoutService{result: &checkoutsvc.SubmitResult{
		State:         enums.CheckoutStateSucceeded,
		PaymentMethod: enums.PaymentMethodChatHandoff,
		OrderNumber:   "TBO-1001",
		RedirectURL:   "https://wa.me/966500000000?text=order",
		TotalHalalas:  10400,
	}}

	rec := postCheckout(t, stub, checkoutPayload())

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.gotSessionID != "sess-1" {
		t.Fatalf("expected session id forwarded, got %q", stub.gotSessionID)
	}
	if stub.gotInput.Language != enums.LanguageArabic {
		t.Fatalf("expected arabic language, got %q", stub.gotInput.Language)
	}
	if stub.gotInput.PaymentMethod != enums.PaymentMethodChatHandoff {
		t.Fatalf("unexpected payment method %q", stub.gotInput.PaymentMethod)
	}
}

func TestCheckout_RejectsUnknownPaymentMethod(t *testing.T) {
	payload := checkoutPayload()
	payload["payment_method"] = "cash_on_delivery"

	stub := &stubCheckoutService{}
	rec := postCheckout(t, stub, payload)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if stub.gotSessionID != "" {
		t.Fatal("service should not be called on validation failure")
	}
}

func TestCheckout_RejectsMissingFields(t *testing.T) {
	payload := checkoutPayload()
	delete(payload, "customer_name")

	rec := postCheckout(t, &stubCheckoutService{}, payload)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCheckout_EmptyCartMapsTo422(t *testing.T) {
	stub := &stubCheckoutService{submitErr: pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")}

	rec := postCheckout(t, stub, checkoutPayload())

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCheckoutConfirm_RequiresSessionParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/confirm", nil)
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	rec := httptest.NewRecorder()

	CheckoutConfirm(&stubCheckoutService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCheckoutConfirm_NotRecordedYet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/confirm?session_id=cs_test_123", nil)
	req = req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
	rec := httptest.NewRecorder()

	CheckoutConfirm(&stubCheckoutService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before the webhook lands, got %d", rec.Code)
	}
}

package checkout

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/tbostore/storefront-backend/internal/cart"
	coupon "github.com/tbostore/storefront-backend/internal/coupons"
	"github.com/tbostore/storefront-backend/internal/orders"
	"github.com/tbostore/storefront-backend/internal/settings"
	"github.com/tbostore/storefront-backend/pkg/config"
	"github.com/tbostore/storefront-backend/pkg/db/models"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
	"github.com/tbostore/storefront-backend/pkg/metrics"
	"github.com/tbostore/storefront-backend/pkg/types"
)

type couponValidator interface {
	Validate(ctx context.Context, code string) (*coupon.Discount, error)
}

type orderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
}

type orderReader interface {
	GetByStripeSession(ctx context.Context, sessionID string) (*orders.OrderDTO, error)
}

type settingsReader interface {
	Get(ctx context.Context) (*settings.SettingsDTO, error)
	MethodEnabled(ctx context.Context, method enums.PaymentMethod) (bool, error)
}

// Service orchestrates order submission. A submission walks
// draft -> validating -> submitting and ends succeeded or failed; the cart is
// cleared only after the submission produced a durable outcome, so a failed
// attempt always leaves the cart intact for retry.
type Service interface {
	Submit(ctx context.Context, sessionID string, input SubmitInput) (*SubmitResult, error)
	// Confirm resolves a hosted checkout return: once the payment webhook has
	// recorded the order, the session's cart is cleared and the order returned.
	Confirm(ctx context.Context, sessionID, stripeSessionID string) (*orders.OrderDTO, error)
}

// ServiceParams bundles the checkout service dependencies.
type ServiceParams struct {
	Carts       *cart.Manager
	Coupons     couponValidator
	Orders      orderStore
	OrderReader orderReader
	Settings    settingsReader
	Stripe      StripeCheckoutClient
	Config      config.CheckoutConfig
	Metrics     *metrics.CheckoutMetrics
	Logger      *logger.Logger
}

type service struct {
	carts    *cart.Manager
	coupons  couponValidator
	orders   orderStore
	reader   orderReader
	settings settingsReader
	stripe   StripeCheckoutClient
	cfg      config.CheckoutConfig
	metrics  *metrics.CheckoutMetrics
	logger   *logger.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService builds the checkout service. The Stripe client may be nil when
// hosted checkout is not configured; the path then fails validation.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart manager required")
	}
	if params.Coupons == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "coupon validator required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order store required")
	}
	if params.OrderReader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order reader required")
	}
	if params.Settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settings reader required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if params.Config.SubmitTimeout <= 0 {
		params.Config.SubmitTimeout = 20 * time.Second
	}
	return &service{
		carts:    params.Carts,
		coupons:  params.Coupons,
		orders:   params.Orders,
		reader:   params.OrderReader,
		settings: params.Settings,
		stripe:   params.Stripe,
		cfg:      params.Config,
		metrics:  params.Metrics,
		logger:   params.Logger,
		inflight: make(map[string]struct{}),
	}, nil
}

func (s *service) Submit(ctx context.Context, sessionID string, input SubmitInput) (result *SubmitResult, err error) {
	start := time.Now()
	path := input.PaymentMethod.String()
	defer func() {
		s.metrics.ObserveDuration(path, time.Since(start))
		if err != nil {
			s.metrics.IncFailure(path, string(pkgerrors.CodeOf(err)))
		} else {
			s.metrics.IncSuccess(path)
		}
	}()

	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "session id is required")
	}
	if !s.acquire(sessionID) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a submission is already in flight for this session")
	}
	defer s.release(sessionID)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()
	ctx = s.logger.WithSessionID(ctx, sessionID)

	// validating
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	store := s.carts.GetOrCreate(sessionID)
	snapshot := store.Snapshot()
	if len(snapshot.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot submit an empty cart")
	}

	enabled, err := s.settings.MethodEnabled(ctx, input.PaymentMethod)
	if err != nil {
		return nil, submitErr(err, "checking payment method availability")
	}
	if !enabled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is not available").
			WithDetails(map[string]string{"payment_method": path})
	}

	var discount coupon.Discount
	var couponCode *string
	if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
		validated, err := s.coupons.Validate(ctx, *input.CouponCode)
		if err != nil {
			return nil, submitErr(err, "validating coupon")
		}
		discount = *validated
		couponCode = &validated.Code
	}

	items := orderItemsFromSnapshot(snapshot)
	subtotal := snapshot.SubtotalHalalas()
	total := discount.Apply(subtotal)

	// submitting
	switch input.PaymentMethod {
	case enums.PaymentMethodChatHandoff:
		return s.submitChatHandoff(ctx, store, input, items, subtotal, discount, total, couponCode)
	case enums.PaymentMethodDirectTransfer:
		return s.submitDirectTransfer(ctx, store, input, items, subtotal, discount, total, couponCode)
	case enums.PaymentMethodHostedCheckout:
		return s.submitHostedCheckout(ctx, input, items, discount, subtotal, total, couponCode)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "unknown payment method")
	}
}

func (s *service) submitChatHandoff(
	ctx context.Context,
	store *cart.Store,
	input SubmitInput,
	items types.OrderItems,
	subtotal int64,
	discount coupon.Discount,
	total int64,
	couponCode *string,
) (*SubmitResult, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, submitErr(err, "loading payment settings")
	}

	created, err := s.orders.Create(ctx, buildOrder(input, items, subtotal, discount, total, couponCode, nil))
	if err != nil {
		return nil, submitErr(err, "recording chat handoff order")
	}

	link := BuildWhatsAppLink(current.WhatsAppNumber, created.Items, created.TotalHalalas, input.Language)

	// The order is durable; only now may the cart be emptied.
	store.Clear()
	s.logger.Info(s.logger.WithOrderNumber(ctx, created.OrderNumber), "chat handoff order submitted")

	return &SubmitResult{
		State:           enums.CheckoutStateSucceeded,
		PaymentMethod:   enums.PaymentMethodChatHandoff,
		OrderNumber:     created.OrderNumber,
		RedirectURL:     link,
		SubtotalHalalas: subtotal,
		DiscountPercent: discount.Percent,
		TotalHalalas:    total,
	}, nil
}

func (s *service) submitDirectTransfer(
	ctx context.Context,
	store *cart.Store,
	input SubmitInput,
	items types.OrderItems,
	subtotal int64,
	discount coupon.Discount,
	total int64,
	couponCode *string,
) (*SubmitResult, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, submitErr(err, "loading payment settings")
	}

	created, err := s.orders.Create(ctx, buildOrder(input, items, subtotal, discount, total, couponCode, nil))
	if err != nil {
		return nil, submitErr(err, "recording direct transfer order")
	}

	store.Clear()
	s.logger.Info(s.logger.WithOrderNumber(ctx, created.OrderNumber), "direct transfer order submitted")

	return &SubmitResult{
		State:           enums.CheckoutStateSucceeded,
		PaymentMethod:   enums.PaymentMethodDirectTransfer,
		OrderNumber:     created.OrderNumber,
		SubtotalHalalas: subtotal,
		DiscountPercent: discount.Percent,
		TotalHalalas:    total,
		BankDetails: &BankDetails{
			BankName:        current.BankName,
			BankAccountName: current.BankAccountName,
			BankIBAN:        current.BankIBAN,
		},
	}, nil
}

func (s *service) submitHostedCheckout(
	ctx context.Context,
	input SubmitInput,
	items types.OrderItems,
	discount coupon.Discount,
	subtotal int64,
	total int64,
	couponCode *string,
) (*SubmitResult, error) {
	if s.stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hosted checkout is not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		SuccessURL:               stripe.String(s.cfg.SuccessURL),
		CancelURL:                stripe.String(s.cfg.CancelURL),
		BillingAddressCollection: stripe.String("auto"),
	}
	for _, item := range items {
		lineItem := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("sar"),
				UnitAmount: stripe.Int64(item.UnitPriceHalalas),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(item.Name),
					Description: stripe.String(item.NameAR),
				},
			},
		}
		if item.ImageURL != "" {
			lineItem.PriceData.ProductData.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		params.LineItems = append(params.LineItems, lineItem)
	}
	params.AddMetadata("customer_name", input.CustomerName)
	params.AddMetadata("customer_phone", input.CustomerPhone)
	params.AddMetadata("customer_address", input.CustomerAddress)
	if couponCode != nil {
		params.AddMetadata("coupon_code", *couponCode)
		params.AddMetadata("coupon_discount", strconv.Itoa(discount.Percent))
	}
	if input.Notes != nil {
		params.AddMetadata("notes", *input.Notes)
	}

	if discount.Percent > 0 {
		created, err := s.stripe.CreateCoupon(ctx, &stripe.CouponParams{
			PercentOff: stripe.Float64(float64(discount.Percent)),
			Duration:   stripe.String(string(stripe.CouponDurationOnce)),
			Name:       stripe.String(discount.Code),
		})
		if err != nil {
			return nil, submitErr(err, "creating hosted checkout discount")
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(created.ID)}}
	}

	created, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, submitErr(err, "creating hosted checkout session")
	}

	// The cart stays intact until the payment webhook records the order, so
	// the submission is still in flight when the shopper is redirected.
	s.logger.Info(s.logger.WithField(ctx, "stripe_session_id", created.ID), "hosted checkout session created")

	return &SubmitResult{
		State:           enums.CheckoutStateSubmitting,
		PaymentMethod:   enums.PaymentMethodHostedCheckout,
		RedirectURL:     created.URL,
		StripeSessionID: created.ID,
		SubtotalHalalas: subtotal,
		DiscountPercent: discount.Percent,
		TotalHalalas:    total,
	}, nil
}

func (s *service) Confirm(ctx context.Context, sessionID, stripeSessionID string) (*orders.OrderDTO, error) {
	if stripeSessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "stripe session id is required")
	}
	found, err := s.reader.GetByStripeSession(ctx, stripeSessionID)
	if err != nil {
		return nil, submitErr(err, "loading hosted checkout order")
	}

	if sessionID != "" {
		// The session has checked out; empty the cart and release its store.
		s.carts.GetOrCreate(sessionID).Clear()
		s.carts.Drop(sessionID)
	}
	return found, nil
}

func (s *service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}

func validateInput(input *SubmitInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.CustomerName) == "" {
		details["customer_name"] = "required"
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		details["customer_phone"] = "required"
	}
	if strings.TrimSpace(input.CustomerAddress) == "" {
		details["customer_address"] = "required"
	}
	if !input.PaymentMethod.IsValid() {
		details["payment_method"] = "unknown"
	}
	if input.Language == "" {
		input.Language = enums.LanguageEnglish
	} else if !input.Language.IsValid() {
		details["language"] = "unknown"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid submission").WithDetails(details)
	}
	return nil
}

func buildOrder(
	input SubmitInput,
	items types.OrderItems,
	subtotal int64,
	discount coupon.Discount,
	total int64,
	couponCode *string,
	stripeSessionID *string,
) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		CustomerAddress: strings.TrimSpace(input.CustomerAddress),
		Items:           items,
		PaymentMethod:   input.PaymentMethod,
		Currency:        enums.CurrencySAR,
		SubtotalHalalas: subtotal,
		DiscountPercent: discount.Percent,
		TotalHalalas:    total,
		CouponCode:      couponCode,
		Status:          enums.OrderStatusPending,
		Notes:           input.Notes,
		StripeSessionID: stripeSessionID,
	}
}

func orderItemsFromSnapshot(snapshot cart.Snapshot) types.OrderItems {
	items := make(types.OrderItems, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		items = append(items, types.OrderItem{
			ProductID:        line.ProductID,
			Name:             line.Name,
			NameAR:           line.NameAR,
			UnitPriceHalalas: line.UnitPriceHalalas,
			Quantity:         line.Quantity,
			LineTotalHalalas: line.UnitPriceHalalas * int64(line.Quantity),
			ImageURL:         line.ImageURL,
		})
	}
	return items
}

// submitErr maps infrastructure failures onto the submission taxonomy. A
// deadline hit becomes a retryable timeout; anything else foreign becomes a
// dependency failure.
func submitErr(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, msg)
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

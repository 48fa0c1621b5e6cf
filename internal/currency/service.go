package currency

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
	"github.com/tbostore/storefront-backend/pkg/redis"
)

const (
	preferenceName = "display_currency"
	preferenceTTL  = 30 * 24 * time.Hour
)

// Service resolves and persists the per-session display currency and quotes
// canonical amounts in that currency.
type Service interface {
	// DisplayCurrency resolves the session's preferred display currency,
	// falling back to the canonical currency when no preference is stored or
	// the preference store is unreachable.
	DisplayCurrency(ctx context.Context, sessionID string) enums.Currency
	// SetDisplayCurrency persists the session's preference.
	SetDisplayCurrency(ctx context.Context, sessionID string, cur enums.Currency) error
	// Quote converts a canonical minor-unit amount into the session's display
	// currency.
	Quote(ctx context.Context, sessionID string, amountHalalas int64) (Amount, error)
	// Converter exposes the underlying fixed-rate converter.
	Converter() *Converter
}

// Amount is a display-facing monetary value.
type Amount struct {
	Currency  enums.Currency  `json:"currency"`
	Value     decimal.Decimal `json:"value"`
	Formatted string          `json:"formatted"`
}

type service struct {
	converter *Converter
	prefs     redis.PreferenceStore
	logger    *logger.Logger
}

// NewService wires the converter and the preference store.
func NewService(converter *Converter, prefs redis.PreferenceStore, logg *logger.Logger) (Service, error) {
	if converter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "currency service requires a converter")
	}
	if prefs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "currency service requires a preference store")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "currency service requires a logger")
	}
	return &service{converter: converter, prefs: prefs, logger: logg}, nil
}

func (s *service) DisplayCurrency(ctx context.Context, sessionID string) enums.Currency {
	if sessionID == "" {
		return enums.CurrencySAR
	}
	raw, err := s.prefs.Get(ctx, s.prefs.PreferenceKey(sessionID, preferenceName))
	if err != nil {
		// A missing key and an unreachable store both degrade to the
		// canonical currency rather than failing the request.
		return enums.CurrencySAR
	}
	cur, err := enums.ParseCurrency(raw)
	if err != nil {
		s.logger.Warn(ctx, "ignoring malformed display currency preference")
		return enums.CurrencySAR
	}
	return cur
}

func (s *service) SetDisplayCurrency(ctx context.Context, sessionID string, cur enums.Currency) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "session id is required")
	}
	if !cur.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported display currency").
			WithDetails(map[string]string{"currency": cur.String()})
	}
	key := s.prefs.PreferenceKey(sessionID, preferenceName)
	if err := s.prefs.Set(ctx, key, cur.String(), preferenceTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting display currency preference")
	}
	return nil
}

func (s *service) Quote(ctx context.Context, sessionID string, amountHalalas int64) (Amount, error) {
	cur := s.DisplayCurrency(ctx, sessionID)
	value, err := s.converter.ToDisplay(amountHalalas, cur)
	if err != nil {
		return Amount{}, err
	}
	formatted, err := s.converter.Format(amountHalalas, cur)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Currency: cur, Value: value, Formatted: formatted}, nil
}

func (s *service) Converter() *Converter {
	return s.converter
}

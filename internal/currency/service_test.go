package currency

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tbostore/storefront-backend/pkg/config"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
	"github.com/tbostore/storefront-backend/pkg/logger"
)

type stubPrefs struct {
	values map[string]string
	err    error
}

func (s *stubPrefs) Get(_ context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	value, ok := s.values[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return value, nil
}

func (s *stubPrefs) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value.(string)
	return nil
}

func (s *stubPrefs) PreferenceKey(sessionID, name string) string {
	return strings.Join([]string{"tbo", "preference", sessionID, name}, ":")
}

func newTestService(t *testing.T, prefs *stubPrefs) Service {
	t.Helper()
	converter, err := NewConverter(config.CurrencyConfig{ExchangeRate: 3.75})
	if err != nil {
		t.Fatalf("building converter: %v", err)
	}
	svc, err := NewService(converter, prefs, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestConverter_ToDisplay(t *testing.T) {
	converter, err := NewConverter(config.CurrencyConfig{ExchangeRate: 3.75})
	if err != nil {
		t.Fatalf("building converter: %v", err)
	}

	cases := []struct {
		name    string
		halalas int64
		cur     enums.Currency
		want    string
	}{
		{name: "canonical passthrough", halalas: 13000, cur: enums.CurrencySAR, want: "130.00"},
		{name: "usd at fixed rate", halalas: 13000, cur: enums.CurrencyUSD, want: "34.67"},
		{name: "usd rounding", halalas: 100, cur: enums.CurrencyUSD, want: "0.27"},
		{name: "zero", halalas: 0, cur: enums.CurrencyUSD, want: "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := converter.ToDisplay(tc.halalas, tc.cur)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.StringFixed(2) != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.StringFixed(2))
			}
		})
	}
}

func TestConverter_RejectsUnknownCurrency(t *testing.T) {
	converter, err := NewConverter(config.CurrencyConfig{ExchangeRate: 3.75})
	if err != nil {
		t.Fatalf("building converter: %v", err)
	}

	if _, err := converter.ToDisplay(100, enums.Currency("EUR")); err == nil {
		t.Fatal("expected an error for an unsupported currency")
	}
}

func TestConverter_Format(t *testing.T) {
	converter, err := NewConverter(config.CurrencyConfig{ExchangeRate: 3.75})
	if err != nil {
		t.Fatalf("building converter: %v", err)
	}

	sar, err := converter.Format(13000, enums.CurrencySAR)
	if err != nil {
		t.Fatalf("format sar: %v", err)
	}
	if sar != "130.00 SAR" {
		t.Fatalf("expected \"130.00 SAR\", got %q", sar)
	}

	usd, err := converter.Format(13000, enums.CurrencyUSD)
	if err != nil {
		t.Fatalf("format usd: %v", err)
	}
	if usd != "$34.67" {
		t.Fatalf("expected \"$34.67\", got %q", usd)
	}
}

func TestNewConverter_RejectsNonPositiveRate(t *testing.T) {
	if _, err := NewConverter(config.CurrencyConfig{ExchangeRate: 0}); err == nil {
		t.Fatal("expected an error for a zero rate")
	}
}

func TestDisplayCurrency_FallsBackToCanonical(t *testing.T) {
	cases := []struct {
		name  string
		prefs *stubPrefs
	}{
		{name: "no stored preference", prefs: &stubPrefs{}},
		{name: "store unreachable", prefs: &stubPrefs{err: errors.New("connection refused")}},
		{name: "malformed preference", prefs: &stubPrefs{values: map[string]string{
			"tbo:preference:sess-1:display_currency": "DOUBLOONS",
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, tc.prefs)
			if got := svc.DisplayCurrency(context.Background(), "sess-1"); got != enums.CurrencySAR {
				t.Fatalf("expected SAR fallback, got %s", got)
			}
		})
	}
}

func TestSetDisplayCurrency_RoundTrip(t *testing.T) {
	prefs := &stubPrefs{}
	svc := newTestService(t, prefs)
	ctx := context.Background()

	if err := svc.SetDisplayCurrency(ctx, "sess-1", enums.CurrencyUSD); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	if got := svc.DisplayCurrency(ctx, "sess-1"); got != enums.CurrencyUSD {
		t.Fatalf("expected USD, got %s", got)
	}
	if got := svc.DisplayCurrency(ctx, "sess-2"); got != enums.CurrencySAR {
		t.Fatalf("preferences must be per-session, got %s", got)
	}
}

func TestSetDisplayCurrency_RejectsInvalid(t *testing.T) {
	svc := newTestService(t, &stubPrefs{})

	err := svc.SetDisplayCurrency(context.Background(), "sess-1", enums.Currency("EUR"))
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSetDisplayCurrency_WrapsStoreFailure(t *testing.T) {
	svc := newTestService(t, &stubPrefs{err: errors.New("connection refused")})

	err := svc.SetDisplayCurrency(context.Background(), "sess-1", enums.CurrencyUSD)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestQuote_UsesSessionPreference(t *testing.T) {
	prefs := &stubPrefs{values: map[string]string{
		"tbo:preference:sess-1:display_currency": "USD",
	}}
	svc := newTestService(t, prefs)

	amount, err := svc.Quote(context.Background(), "sess-1", 13000)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if amount.Currency != enums.CurrencyUSD {
		t.Fatalf("expected USD, got %s", amount.Currency)
	}
	if amount.Formatted != "$34.67" {
		t.Fatalf("expected $34.67, got %q", amount.Formatted)
	}
}

package currency

import (
	"github.com/shopspring/decimal"

	"github.com/tbostore/storefront-backend/pkg/config"
	"github.com/tbostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

// Converter turns canonical minor-unit amounts into display-currency values.
// Conversion is presentation only; every stored or computed amount stays in
// the canonical currency's minor unit.
type Converter struct {
	rate decimal.Decimal
}

// NewConverter validates the fixed exchange rate (canonical units per one
// display unit) and builds a converter.
func NewConverter(cfg config.CurrencyConfig) (*Converter, error) {
	rate := decimal.NewFromFloat(cfg.ExchangeRate)
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "exchange rate must be positive")
	}
	return &Converter{rate: rate}, nil
}

// ToDisplay converts a canonical minor-unit amount into the requested display
// currency's major unit, rounded to two decimal places.
func (c *Converter) ToDisplay(amountHalalas int64, cur enums.Currency) (decimal.Decimal, error) {
	major := decimal.NewFromInt(amountHalalas).Div(minorUnitsPerMajor)
	switch cur {
	case enums.CurrencySAR:
		return major.Round(2), nil
	case enums.CurrencyUSD:
		return major.Div(c.rate).Round(2), nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidInput, "unsupported display currency").
			WithDetails(map[string]string{"currency": cur.String()})
	}
}

// Format renders a canonical minor-unit amount for display, e.g. "130.00 SAR"
// or "$34.67".
func (c *Converter) Format(amountHalalas int64, cur enums.Currency) (string, error) {
	value, err := c.ToDisplay(amountHalalas, cur)
	if err != nil {
		return "", err
	}
	if cur == enums.CurrencyUSD {
		return "$" + value.StringFixed(2), nil
	}
	return value.StringFixed(2) + " SAR", nil
}

package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tbostore/storefront-backend/pkg/enums"
	"github.com/tbostore/storefront-backend/pkg/types"
)

// BuildWhatsAppLink renders the chat handoff deep link: a wa.me URL carrying
// the order summary as a prefilled message in the shopper's language.
func BuildWhatsAppLink(number string, items types.OrderItems, totalHalalas int64, lang enums.Language) string {
	message := buildHandoffMessage(items, totalHalalas, lang)
	return fmt.Sprintf("https://wa.me/%s?text=%s", sanitizeNumber(number), url.QueryEscape(message))
}

func buildHandoffMessage(items types.OrderItems, totalHalalas int64, lang enums.Language) string {
	var lines []string
	for _, item := range items {
		name := item.Name
		if lang == enums.LanguageArabic && item.NameAR != "" {
			name = item.NameAR
		}
		lines = append(lines, fmt.Sprintf("• %s x%d - %s ر.س", name, item.Quantity, majorUnits(item.LineTotalHalalas)))
	}
	itemsList := strings.Join(lines, "\n")

	if lang == enums.LanguageArabic {
		return fmt.Sprintf("مرحباً! أود شراء المنتجات التالية:\n\n%s\n\nالإجمالي: %s ر.س", itemsList, majorUnits(totalHalalas))
	}
	return fmt.Sprintf("Hello! I would like to purchase the following items:\n\n%s\n\nTotal: %s SAR", itemsList, majorUnits(totalHalalas))
}

func majorUnits(halalas int64) string {
	return decimal.NewFromInt(halalas).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// sanitizeNumber strips formatting so the wa.me path is digits only.
func sanitizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

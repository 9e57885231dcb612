// Package checkout prices a selected print and validates the payment form.
package checkout

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

var (
	// WeekendDiscountRate applies on Saturdays and Sundays only.
	WeekendDiscountRate = decimal.RequireFromString("0.20")
	// ShippingCost is a flat fee per order.
	ShippingCost = decimal.RequireFromString("5.00")
	// TaxRate is charged on the discounted subtotal, never on shipping.
	TaxRate = decimal.RequireFromString("0.07")
)

const moneyPlaces = 2

// Breakdown is the derived price summary shown on the checkout page.
type Breakdown struct {
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
}

// Price computes the breakdown for an original price. Every amount is rounded
// half-up to cents before it is summed, so Total is always exactly
// DiscountedPrice + ShippingCost + Tax.
func Price(original decimal.Decimal, isWeekend bool) Breakdown {
	original = roundMoney(original)

	discount := decimal.Zero
	if isWeekend {
		discount = roundMoney(original.Mul(WeekendDiscountRate))
	}
	discounted := original.Sub(discount)
	tax := roundMoney(discounted.Mul(TaxRate))

	return Breakdown{
		OriginalPrice:   original,
		DiscountAmount:  discount,
		DiscountedPrice: discounted,
		ShippingCost:    ShippingCost,
		Tax:             tax,
		Total:           discounted.Add(ShippingCost).Add(tax),
	}
}

// roundMoney rounds half away from zero, which is half-up for prices.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// IsWeekend reports whether t falls on a Saturday or Sunday in t's location.
func IsWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// ParsePrice turns a catalog price string such as "$1,234.50" into a decimal.
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := nonPriceChars.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero, apperrors.NewValidationError("price", "The selected price could not be read.")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero, apperrors.NewValidationError("price", "The selected price could not be read.")
	}
	return d, nil
}

// FormatCurrency renders an amount as US dollars with thousands separators,
// e.g. "$1,234.50".
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(moneyPlaces)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + cents
}

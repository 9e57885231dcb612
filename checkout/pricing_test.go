package checkout_test

import (
	"testing"
	"time"

	"github.com/shanebasham/artstore/checkout"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.StringFixed(2))
}

func TestPriceExamples(t *testing.T) {
	t.Run("weekend", func(t *testing.T) {
		b := checkout.Price(dec("100.00"), true)
		requireMoney(t, "20.00", b.DiscountAmount)
		requireMoney(t, "80.00", b.DiscountedPrice)
		requireMoney(t, "5.00", b.ShippingCost)
		requireMoney(t, "5.60", b.Tax)
		requireMoney(t, "90.60", b.Total)
	})

	t.Run("weekday", func(t *testing.T) {
		b := checkout.Price(dec("100.00"), false)
		requireMoney(t, "0.00", b.DiscountAmount)
		requireMoney(t, "100.00", b.DiscountedPrice)
		requireMoney(t, "7.00", b.Tax)
		requireMoney(t, "112.00", b.Total)
	})

	t.Run("tax rounds half up", func(t *testing.T) {
		// 0.07 * 12.50 = 0.875
		b := checkout.Price(dec("12.50"), false)
		requireMoney(t, "0.88", b.Tax)
		requireMoney(t, "18.38", b.Total)
	})
}

func TestPriceInvariants(t *testing.T) {
	prices := []string{"0.01", "0.99", "19.99", "45.00", "123.45", "999.99", "1234.56", "2500.00"}
	for _, p := range prices {
		for _, weekend := range []bool{true, false} {
			original := dec(p)
			b := checkout.Price(original, weekend)

			require.True(t, b.Total.Equal(b.DiscountedPrice.Add(b.ShippingCost).Add(b.Tax)), "total for %s", p)

			want := original
			if weekend {
				want = original.Mul(dec("0.80")).Round(2)
			}
			requireMoney(t, want.StringFixed(2), b.DiscountedPrice)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	saturday := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)
	require.True(t, checkout.IsWeekend(saturday))
	require.True(t, checkout.IsWeekend(saturday.AddDate(0, 0, 1)))
	require.False(t, checkout.IsWeekend(saturday.AddDate(0, 0, 2)))

	// Friday 23:30 in New York is already Saturday in UTC.
	ny, err := time.LoadLocation("America/New_York")
	if err == nil {
		friday := time.Date(2025, 6, 6, 23, 30, 0, 0, ny)
		require.False(t, checkout.IsWeekend(friday))
		require.True(t, checkout.IsWeekend(friday.UTC()))
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"$123.45", "123.45", false},
		{"$1,234.50", "1234.50", false},
		{"45", "45", false},
		{"", "", true},
		{"$", "", true},
		{"1.2.3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := checkout.ParsePrice(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			requireMoney(t, tt.want, got)
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	require.Equal(t, "$0.00", checkout.FormatCurrency(decimal.Zero))
	require.Equal(t, "$90.60", checkout.FormatCurrency(dec("90.6")))
	require.Equal(t, "$1,234.50", checkout.FormatCurrency(dec("1234.5")))
	require.Equal(t, "$1,000,000.00", checkout.FormatCurrency(dec("1000000")))
	require.Equal(t, "-$5.00", checkout.FormatCurrency(dec("-5")))
}

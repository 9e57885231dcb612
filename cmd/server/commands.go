package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/shanebasham/artstore/checkout"
	apperrors "github.com/shanebasham/artstore/internal/errors"
)

func newQuoteCmd() *cobra.Command {
	var (
		weekend bool
		date    string
	)
	cmd := &cobra.Command{
		Use:   "quote PRICE",
		Short: "Print the checkout breakdown for a price such as \"$1,250.00\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isWeekend := weekend
			if date != "" {
				day, err := time.ParseInLocation(time.DateOnly, date, time.Local)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
				isWeekend = checkout.IsWeekend(day)
			}
			return printQuote(cmd.OutOrStdout(), args[0], isWeekend)
		},
	}
	cmd.Flags().BoolVar(&weekend, "weekend", false, "apply the weekend discount")
	cmd.Flags().StringVar(&date, "date", "", "price as of this day (YYYY-MM-DD) instead of --weekend")
	return cmd
}

func printQuote(w io.Writer, price string, isWeekend bool) error {
	original, err := checkout.ParsePrice(price)
	if err != nil {
		return err
	}
	b := checkout.Price(original, isWeekend)
	fmt.Fprintf(w, "Original:  %s\n", checkout.FormatCurrency(b.OriginalPrice))
	if isWeekend {
		fmt.Fprintf(w, "Discount:  - %s\n", checkout.FormatCurrency(b.DiscountAmount))
	}
	fmt.Fprintf(w, "Subtotal:  %s\n", checkout.FormatCurrency(b.DiscountedPrice))
	fmt.Fprintf(w, "Shipping:  %s\n", checkout.FormatCurrency(b.ShippingCost))
	fmt.Fprintf(w, "Tax:       %s\n", checkout.FormatCurrency(b.Tax))
	fmt.Fprintf(w, "Total:     %s\n", checkout.FormatCurrency(b.Total))
	return nil
}

func newValidateCardCmd() *cobra.Command {
	var form checkout.PaymentForm
	cmd := &cobra.Command{
		Use:   "validate-card",
		Short: "Check payment fields the way the checkout form does",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkout.ValidatePayment(form, time.Now()); err != nil {
				return fmt.Errorf("%s: %s", apperrors.FieldOf(err), apperrors.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Payment details are valid.")
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Zip, "zip", "", "ZIP code")
	cmd.Flags().StringVar(&form.CardNumber, "card", "", "card number")
	cmd.Flags().StringVar(&form.Expiration, "exp", "", "expiration, MM/YY")
	cmd.Flags().StringVar(&form.Code, "cvv", "", "security code")
	return cmd
}

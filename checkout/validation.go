package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// Payment form field names, in validation order.
const (
	FieldZip        = "zip"
	FieldCardNumber = "cardNumber"
	FieldExpiration = "expiration"
	FieldCode       = "code"
)

// PaymentForm is the submitted checkout form. Card data is only validated;
// it is never stored or sent anywhere.
type PaymentForm struct {
	FirstName  string
	LastName   string
	Zip        string
	CardNumber string
	Expiration string
	Code       string
}

var (
	zipPattern        = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	cardPattern       = regexp.MustCompile(`^\d{13,19}$`)
	expirationPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/?([0-9]{2}|[0-9]{4})$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	whitespace        = regexp.MustCompile(`\s+`)
)

// ValidatePayment checks ZIP, card number, expiration and CVV in that order and
// returns a *ValidationError for the first field that fails.
func ValidatePayment(form PaymentForm, now time.Time) error {
	if err := ValidateZip(form.Zip); err != nil {
		return err
	}
	if err := ValidateCardNumber(form.CardNumber); err != nil {
		return err
	}
	if err := ValidateExpiration(form.Expiration, now); err != nil {
		return err
	}
	return ValidateCode(form.Code)
}

func ValidateZip(zip string) error {
	if !zipPattern.MatchString(strings.TrimSpace(zip)) {
		return apperrors.NewValidationError(FieldZip, "Please enter a valid ZIP code.")
	}
	return nil
}

func ValidateCardNumber(number string) error {
	digits := whitespace.ReplaceAllString(strings.TrimSpace(number), "")
	if !cardPattern.MatchString(digits) {
		return apperrors.NewValidationError(FieldCardNumber, "Please enter a valid card number.")
	}
	return nil
}

// ValidateExpiration accepts MM/YY, MM/YYYY, MMYY and MMYYYY. A card stays
// valid through the last day of its expiration month.
func ValidateExpiration(expiration string, now time.Time) error {
	match := expirationPattern.FindStringSubmatch(strings.TrimSpace(expiration))
	if match == nil {
		return apperrors.NewValidationError(FieldExpiration, "Please enter a valid expiration date (MM/YY).")
	}

	month, _ := strconv.Atoi(match[1])
	year, _ := strconv.Atoi(match[2])
	if len(match[2]) == 2 {
		year += 2000
	}

	// Day 0 of the following month is the last day of the expiration month.
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if lastDay.Before(today) {
		return apperrors.NewValidationError(FieldExpiration, "Your card is expired.")
	}
	return nil
}

func ValidateCode(code string) error {
	if !cvvPattern.MatchString(strings.TrimSpace(code)) {
		return apperrors.NewValidationError(FieldCode, "Please enter a valid security code.")
	}
	return nil
}

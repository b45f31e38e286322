package cse

import (
	"errors"
	"strings"
	"time"
)

// Card holds the fields of a payment card as entered by the user.
type Card struct {
	Number     string `json:"number"`
	Year       string `json:"year"`
	Month      string `json:"month"`
	Cvc        string `json:"cvc"`
	Cardholder string `json:"cardholder"`

	// Brand selects the number and CVC rules. Unknown means predict it from Number.
	Brand Brand `json:"brand,omitempty"`
}

// Field names reported by Card.Validate.
const (
	FieldNumber     = "number"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldCvc        = "cvc"
	FieldCardholder = "cardholder"
)

// ResolvedBrand returns Brand, or the brand predicted from Number when Brand is Unknown.
func (c Card) ResolvedBrand() Brand {
	if c.Brand != Unknown {
		return c.Brand
	}
	return PredictBrand(c.Number)
}

// Validate runs every field check against the card, using now as the
// current year. The result joins one *FieldError per invalid field and
// matches ErrInvalidCard; nil means all fields are valid.
func (c Card) Validate(now time.Time) error {
	brand := c.ResolvedBrand()

	var errs []error
	if !ValidateCardNumber(c.Number, brand) {
		errs = append(errs, &FieldError{Field: FieldNumber})
	}
	if !validateYearAt(c.Year, now) {
		errs = append(errs, &FieldError{Field: FieldYear})
	}
	if !ValidateMonth(c.Month) {
		errs = append(errs, &FieldError{Field: FieldMonth})
	}
	if !ValidateCvc(c.Cvc, brand) {
		errs = append(errs, &FieldError{Field: FieldCvc})
	}
	if !ValidateCardholderName(c.Cardholder) {
		errs = append(errs, &FieldError{Field: FieldCardholder})
	}
	return errors.Join(errs...)
}

// plaintext joins the fields in gateway order. Commas inside fields are not escaped.
func (c Card) plaintext() string {
	return strings.Join([]string{c.Number, c.Year, c.Month, c.Cvc, c.Cardholder}, fieldSeparator)
}

// NormalizeCardNumber removes spaces and dashes from a card number as typed.
func NormalizeCardNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
}

// MaskCardNumber keeps the first six and last four digits of a card number
// and replaces the rest with asterisks. Numbers of ten digits or fewer are
// masked entirely.
func MaskCardNumber(number string) string {
	if len(number) <= 10 {
		return strings.Repeat("*", len(number))
	}
	return number[:6] + strings.Repeat("*", len(number)-10) + number[len(number)-4:]
}

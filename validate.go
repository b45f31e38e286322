package cse

import (
	"strconv"
	"strings"
	"time"
)

// Card number length bounds accepted before the brand check.
const (
	minCardNumberLength = 10
	maxCardNumberLength = 19

	// maxYearsAhead bounds how far in the future an expiry year may lie.
	maxYearsAhead = 50
)

// ValidateCardNumber reports whether number is a digits-only card number of
// 10 to 19 digits that passes the Luhn checksum and fits the prefix and
// length rule of brand. Unknown never validates.
func ValidateCardNumber(number string, brand Brand) bool {
	if number == "" || !isDigits(number) {
		return false
	}
	if len(number) < minCardNumberLength || len(number) > maxCardNumberLength {
		return false
	}
	if !luhnValid(number) {
		return false
	}
	return matchesBrand(number, brand)
}

// luhnValid computes the Luhn checksum left to right. Digits whose index has
// the same parity as the length are doubled, which selects every second
// digit counted from the rightmost one.
func luhnValid(digits string) bool {
	parity := len(digits) % 2
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		if i%2 == parity {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}

// ValidateCardholderName reports whether name contains anything other than whitespace.
func ValidateCardholderName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// ValidateMonth reports whether month is one or two digits between 1 and 12.
func ValidateMonth(month string) bool {
	if len(month) < 1 || len(month) > 2 || !isDigits(month) {
		return false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return false
	}
	return m >= 1 && m <= 12
}

// ValidateYear reports whether year is exactly two or four digits whose
// literal value lies between the current year and fifty years ahead.
// Two-digit input is not expanded to a century.
func ValidateYear(year string) bool {
	return validateYearAt(year, time.Now())
}

func validateYearAt(year string, now time.Time) bool {
	if (len(year) != 2 && len(year) != 4) || !isDigits(year) {
		return false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	current := now.Year()
	return y >= current && y <= current+maxYearsAhead
}

// ValidateCvc reports whether cvc has the length brand expects and contains only digits.
//   - Unknown: empty, 3 or 4 digits
//   - Bancontact and Maestro: empty, these cards carry no CVC
//   - Amex: 4 digits
//   - any other brand: 3 digits
func ValidateCvc(cvc string, brand Brand) bool {
	switch brand {
	case Unknown:
		if len(cvc) == 0 {
			return true
		}
		if len(cvc) != 3 && len(cvc) != 4 {
			return false
		}
	case Bancontact, Maestro:
		return len(cvc) == 0
	case Amex:
		if len(cvc) != 4 {
			return false
		}
	default:
		if len(cvc) != 3 {
			return false
		}
	}
	return isDigits(cvc)
}

// isDigits reports whether s consists of ASCII digits only. Empty input is vacuously true.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

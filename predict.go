package cse

import (
	"strings"
	"unicode/utf8"
)

// minPredictLength is the number of characters needed before any brand other
// than Amex is guessed.
const minPredictLength = 4

// PredictBrand guesses the brand of a partially entered card number.
// A leading 3 is taken as Amex straight away; for everything else at least
// four characters are needed, below that Unknown is returned.
func PredictBrand(prefix string) Brand {
	if strings.HasPrefix(prefix, "3") {
		return Amex
	}
	if utf8.RuneCountInString(prefix) < minPredictLength {
		return Unknown
	}
	if brandRules[Maestro].hasPrefix(prefix) {
		return Maestro
	}
	if brandRules[Bancontact].hasPrefix(prefix) {
		return Bancontact
	}
	if strings.HasPrefix(prefix, "4") {
		return Visa
	}
	if strings.HasPrefix(prefix, "5") {
		return Mastercard
	}
	return Unknown
}

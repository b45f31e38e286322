package cse

import (
	"fmt"
	"strings"
)

// Brand is the issuing network of a payment card.
type Brand int

// Supported brands. Unknown is the zero value.
const (
	Unknown Brand = iota
	Visa
	Mastercard
	Amex
	Maestro
	Bancontact
)

var brandNames = [...]string{
	Unknown:    "unknown",
	Visa:       "visa",
	Mastercard: "mastercard",
	Amex:       "amex",
	Maestro:    "maestro",
	Bancontact: "bancontact",
}

// String returns the lower-case brand name.
func (b Brand) String() string {
	if b < 0 || int(b) >= len(brandNames) {
		return fmt.Sprintf("Brand(%d)", int(b))
	}
	return brandNames[b]
}

// ParseBrand returns the brand with the given name, ignoring case.
func ParseBrand(s string) (Brand, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for b, n := range brandNames {
		if n == name {
			return Brand(b), nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrInvalidBrand, s)
}

// MarshalText implements encoding.TextMarshaler.
func (b Brand) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(brandNames) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBrand, int(b))
	}
	return []byte(brandNames[b]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Brand) UnmarshalText(text []byte) error {
	parsed, err := ParseBrand(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// brandRule describes the numbers a brand issues: one of the prefixes
// followed by digits up to one of the allowed total lengths.
type brandRule struct {
	prefixes []string
	lengths  []int
}

func (r brandRule) matches(number string) bool {
	if !r.hasLength(len(number)) {
		return false
	}
	return r.hasPrefix(number)
}

func (r brandRule) hasPrefix(s string) bool {
	for _, p := range r.prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func (r brandRule) hasLength(n int) bool {
	for _, l := range r.lengths {
		if l == n {
			return true
		}
	}
	return false
}

func lengthRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, n)
	}
	return out
}

// brandRules maps each known brand to its prefix and total length rule.
// Unknown has no entry and never matches.
var brandRules = map[Brand]brandRule{
	Bancontact: {
		prefixes: []string{"4796", "6060", "6703", "5613", "5614"},
		lengths:  lengthRange(16, 19),
	},
	Maestro: {
		prefixes: []string{"5018", "5020", "5038", "6304", "6759", "6761", "6763"},
		lengths:  lengthRange(12, 19),
	},
	Amex: {
		prefixes: []string{"34", "37"},
		lengths:  []int{15},
	},
	Visa: {
		prefixes: []string{"4"},
		lengths:  []int{13, 16},
	},
	Mastercard: {
		prefixes: []string{"51", "52", "53", "54", "55", "22", "23", "24", "25", "26", "27"},
		lengths:  []int{16},
	},
}

// matchesBrand reports whether number fits the prefix and length rule of brand.
func matchesBrand(number string, brand Brand) bool {
	rule, ok := brandRules[brand]
	if !ok {
		return false
	}
	return rule.matches(number)
}

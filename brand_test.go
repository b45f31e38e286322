package cse

import (
	"encoding/json"
	"testing"
)

func TestBrandString(t *testing.T) {
	tests := map[Brand]string{
		Unknown:    "unknown",
		Visa:       "visa",
		Mastercard: "mastercard",
		Amex:       "amex",
		Maestro:    "maestro",
		Bancontact: "bancontact",
		Brand(99):  "Brand(99)",
	}
	for b, want := range tests {
		if got := b.String(); got != want {
			t.Errorf("Brand(%d).String(): got %q, want %q", int(b), got, want)
		}
	}
}

func TestParseBrand(t *testing.T) {
	b, err := ParseBrand(" MasterCard ")
	if err != nil {
		t.Fatalf("ParseBrand: %v", err)
	}
	if b != Mastercard {
		t.Errorf("ParseBrand: got %v, want %v", b, Mastercard)
	}

	if _, err := ParseBrand("discover"); !IsInvalidBrand(err) {
		t.Errorf("expected ErrInvalidBrand, got %v", err)
	}
}

func TestBrandJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Brand{"brand": Amex})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"brand":"amex"}` {
		t.Errorf("Marshal: got %s", data)
	}

	var got struct{ Brand Brand }
	if err := json.Unmarshal([]byte(`{"Brand":"bancontact"}`), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Brand != Bancontact {
		t.Errorf("Unmarshal: got %v, want %v", got.Brand, Bancontact)
	}

	if _, err := json.Marshal(Brand(-1)); err == nil {
		t.Error("expected error marshalling an out of range brand")
	}
}

func TestBrandRules(t *testing.T) {
	tests := []struct {
		brand   Brand
		lengths []int
	}{
		{Bancontact, []int{16, 17, 18, 19}},
		{Maestro, []int{12, 13, 14, 15, 16, 17, 18, 19}},
		{Amex, []int{15}},
		{Visa, []int{13, 16}},
		{Mastercard, []int{16}},
	}
	for _, tt := range tests {
		rule := brandRules[tt.brand]
		for n := 0; n <= 20; n++ {
			want := false
			for _, l := range tt.lengths {
				if l == n {
					want = true
				}
			}
			if got := rule.hasLength(n); got != want {
				t.Errorf("%v.hasLength(%d): got %v, want %v", tt.brand, n, got, want)
			}
		}
	}

	if _, ok := brandRules[Unknown]; ok {
		t.Error("Unknown must not have a rule")
	}
	if matchesBrand("4111111111111111", Unknown) {
		t.Error("Unknown must never match")
	}
}

func TestMastercardPrefixes(t *testing.T) {
	rule := brandRules[Mastercard]
	for p := 10; p <= 99; p++ {
		prefix := string(rune('0'+p/10)) + string(rune('0'+p%10))
		want := (p >= 51 && p <= 55) || (p >= 22 && p <= 27)
		if got := rule.hasPrefix(prefix + "00000000000000"); got != want {
			t.Errorf("Mastercard prefix %s: got %v, want %v", prefix, got, want)
		}
	}
}

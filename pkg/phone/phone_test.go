package phone_test

import (
	"testing"

	"github.com/agriconnect-ug/agriconnect/pkg/phone"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"0712345678", "256712345678"},         // local format → country code
		{"+256712345678", "256712345678"},      // already international
		{"256712345678", "256712345678"},       // bare international
		{"0712 345 678", "256712345678"},       // spaces stripped before the length check
		{"(071) 234-5678", "256712345678"},     // punctuation stripped
		{"07123456", "07123456"},               // 8 digits: no substitution
		{"07123456789", "07123456789"},         // 11 digits: no substitution
		{"712345678", "712345678"},             // 9 digits, no leading zero
		{"", ""},                                // empty stays empty
		{"call me: 0789101112", "256789101112"}, // digits extracted from text
	}

	for _, c := range cases {
		if got := phone.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTelLink(t *testing.T) {
	if got := phone.TelLink("0712345678"); got != "tel:256712345678" {
		t.Errorf("TelLink = %q", got)
	}
}

func TestWhatsAppLink(t *testing.T) {
	if got := phone.WhatsAppLink("+256 712 345 678"); got != "https://wa.me/256712345678" {
		t.Errorf("WhatsAppLink = %q", got)
	}
}

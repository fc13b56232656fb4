// Package phone normalizes Ugandan phone numbers and builds the contact
// deep links shown next to a listing.
package phone

import "strings"

// countryCode replaces the leading zero of a local Ugandan number.
const countryCode = "256"

// Normalize strips everything but digits and substitutes the leading zero
// with the Uganda country code. The substitution only applies to numbers
// that are exactly 10 digits long and start with 0 (the local mobile
// format, e.g. "0712345678"); anything else is returned digits-only as-is.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) == 10 && strings.HasPrefix(digits, "0") {
		return countryCode + digits[1:]
	}
	return digits
}

// TelLink builds a tel: URI from a stored phone number.
func TelLink(raw string) string {
	return "tel:" + Normalize(raw)
}

// WhatsAppLink builds a WhatsApp chat link from a stored phone number.
func WhatsAppLink(raw string) string {
	return "https://wa.me/" + Normalize(raw)
}

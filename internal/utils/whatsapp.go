package utils

import (
	"net/url"
	"strings"
)

// WhatsAppLink builds a wa.me deep link for a staff contact number. The
// number is normalized to international form: a leading 0 becomes 62
// (Indonesia), a leading + is stripped.
func WhatsAppLink(phone string, message string) string {
	number := normalizeWhatsAppNumber(phone)
	if number == "" {
		return ""
	}
	link := "https://wa.me/" + number
	if strings.TrimSpace(message) != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

func normalizeWhatsAppNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	if number == "" {
		return ""
	}
	if strings.HasPrefix(number, "0") {
		number = "62" + number[1:]
	}
	return number
}

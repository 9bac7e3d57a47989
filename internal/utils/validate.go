package utils

import (
	"strings"
	"time"
)

// IsGmailAddress reports whether the address looks valid and belongs to the
// only mail domain customer accounts accept.
func IsGmailAddress(email string) bool {
	email = strings.TrimSpace(strings.ToLower(email))
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	local := email[:at]
	if strings.ContainsAny(local, " \t") {
		return false
	}
	return email[at:] == "@gmail.com"
}

// IsIndonesianMobile accepts local-format mobile numbers: a leading 08
// followed by 8 to 11 more digits.
func IsIndonesianMobile(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !strings.HasPrefix(phone, "08") {
		return false
	}
	rest := phone[2:]
	if len(rest) < 8 || len(rest) > 11 {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseClockMinutes parses an HH:MM wall-clock value into minutes since
// midnight.
func ParseClockMinutes(value string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// WithinOpeningHours reports whether an HH:MM time falls inside the
// [open, close] service window.
func WithinOpeningHours(value, open, close string) bool {
	v, ok := ParseClockMinutes(value)
	if !ok {
		return false
	}
	lo, ok := ParseClockMinutes(open)
	if !ok {
		return false
	}
	hi, ok := ParseClockMinutes(close)
	if !ok {
		return false
	}
	return v >= lo && v <= hi
}

// IsCalendarDate validates a YYYY-MM-DD value.
func IsCalendarDate(value string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	return err == nil
}

// IsDigits reports whether the value is non-empty and all ASCII digits.
func IsDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

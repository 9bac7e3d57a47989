package utils

import "testing"

func TestIsGmailAddress(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		expected bool
	}{
		{name: "plain gmail", email: "budi@gmail.com", expected: true},
		{name: "uppercase normalized", email: "Budi@Gmail.COM", expected: true},
		{name: "surrounding spaces", email: "  budi@gmail.com  ", expected: true},
		{name: "other domain", email: "budi@yahoo.com", expected: false},
		{name: "gmail as subdomain", email: "budi@gmail.com.evil.id", expected: false},
		{name: "missing local part", email: "@gmail.com", expected: false},
		{name: "empty", email: "", expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsGmailAddress(tc.email); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestIsIndonesianMobile(t *testing.T) {
	cases := []struct {
		name     string
		phone    string
		expected bool
	}{
		{name: "shortest valid", phone: "0812345678", expected: true},
		{name: "longest valid", phone: "0812345678901", expected: true},
		{name: "too short", phone: "081234567", expected: false},
		{name: "too long", phone: "08123456789012", expected: false},
		{name: "international prefix", phone: "62812345678", expected: false},
		{name: "letters", phone: "08123abc678", expected: false},
		{name: "empty", phone: "", expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsIndonesianMobile(tc.phone); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestParseClockMinutes(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		minutes int
		ok      bool
	}{
		{name: "midnight", value: "00:00", minutes: 0, ok: true},
		{name: "mid afternoon", value: "15:30", minutes: 930, ok: true},
		{name: "last minute", value: "23:59", minutes: 1439, ok: true},
		{name: "out of range hour", value: "24:00", ok: false},
		{name: "missing minutes", value: "15", ok: false},
		{name: "empty", value: "", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			minutes, ok := ParseClockMinutes(tc.value)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && minutes != tc.minutes {
				t.Fatalf("expected %d minutes, got %d", tc.minutes, minutes)
			}
		})
	}
}

func TestWithinOpeningHours(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		expected bool
	}{
		{name: "at open", value: "10:00", expected: true},
		{name: "mid service", value: "18:45", expected: true},
		{name: "at close", value: "21:00", expected: true},
		{name: "before open", value: "09:59", expected: false},
		{name: "after close", value: "21:01", expected: false},
		{name: "invalid value", value: "noon", expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WithinOpeningHours(tc.value, "10:00", "21:00"); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestIsCalendarDate(t *testing.T) {
	if !IsCalendarDate("2025-12-31") {
		t.Fatalf("expected valid date to pass")
	}
	if IsCalendarDate("2025-13-01") {
		t.Fatalf("expected month 13 to fail")
	}
	if IsCalendarDate("31-12-2025") {
		t.Fatalf("expected reversed format to fail")
	}
	if IsCalendarDate("") {
		t.Fatalf("expected empty value to fail")
	}
}

func TestIsDigits(t *testing.T) {
	if !IsDigits("0123456789") {
		t.Fatalf("expected digit string to pass")
	}
	if IsDigits("123-456") {
		t.Fatalf("expected dash to fail")
	}
	if IsDigits("") {
		t.Fatalf("expected empty value to fail")
	}
}

package utils

import "testing"

func TestWhatsAppLink(t *testing.T) {
	cases := []struct {
		name     string
		phone    string
		message  string
		expected string
	}{
		{
			name:     "local number normalized to 62",
			phone:    "081234567890",
			message:  "",
			expected: "https://wa.me/6281234567890",
		},
		{
			name:     "plus prefix stripped",
			phone:    "+6281234567890",
			message:  "",
			expected: "https://wa.me/6281234567890",
		},
		{
			name:     "message escaped",
			phone:    "081234567890",
			message:  "Halo, meja untuk 2?",
			expected: "https://wa.me/6281234567890?text=Halo%2C+meja+untuk+2%3F",
		},
		{
			name:     "formatting characters dropped",
			phone:    "0812-3456-7890",
			message:  "",
			expected: "https://wa.me/6281234567890",
		},
		{
			name:     "no digits yields empty link",
			phone:    "call me",
			message:  "hi",
			expected: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WhatsAppLink(tc.phone, tc.message); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

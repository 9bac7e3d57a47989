package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckCSRF(t *testing.T) {
	newRequest := func(method, cookie, header string) *http.Request {
		r := httptest.NewRequest(method, "/api/carts", nil)
		if cookie != "" {
			r.AddCookie(&http.Cookie{Name: CSRFCookie, Value: cookie})
		}
		if header != "" {
			r.Header.Set(CSRFHeader, header)
		}
		return r
	}

	cases := []struct {
		name     string
		method   string
		cookie   string
		header   string
		expected bool
	}{
		{name: "get exempt", method: http.MethodGet, expected: true},
		{name: "head exempt", method: http.MethodHead, expected: true},
		{name: "post with matching pair", method: http.MethodPost, cookie: "tok", header: "tok", expected: true},
		{name: "delete with matching pair", method: http.MethodDelete, cookie: "tok", header: "tok", expected: true},
		{name: "post without header", method: http.MethodPost, cookie: "tok", expected: false},
		{name: "post without cookie", method: http.MethodPost, header: "tok", expected: false},
		{name: "post with mismatch", method: http.MethodPut, cookie: "tok", header: "other", expected: false},
		{name: "post with neither", method: http.MethodPost, expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := checkCSRF(newRequest(tc.method, tc.cookie, tc.header)); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestReadGuardToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.AddCookie(&http.Cookie{Name: CustomerCookie, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")

	token, fromCookie := readGuardToken(r, CustomerCookie)
	if token != "cookie-token" || !fromCookie {
		t.Fatalf("expected cookie to win, got %q fromCookie=%v", token, fromCookie)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	token, fromCookie = readGuardToken(r, CustomerCookie)
	if token != "header-token" || fromCookie {
		t.Fatalf("expected bearer fallback, got %q fromCookie=%v", token, fromCookie)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	token, fromCookie = readGuardToken(r, CustomerCookie)
	if token != "" || fromCookie {
		t.Fatalf("expected empty token, got %q fromCookie=%v", token, fromCookie)
	}
}

func TestIsStateChanging(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		if !isStateChanging(method) {
			t.Fatalf("expected %s to be state changing", method)
		}
	}
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		if isStateChanging(method) {
			t.Fatalf("expected %s to be safe", method)
		}
	}
}

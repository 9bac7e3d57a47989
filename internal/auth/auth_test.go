package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := SignAccessToken(42, 7, RoleCustomer, "budi@gmail.com", secret, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := VerifyAccessToken(token, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.ActorID != 42 {
		t.Fatalf("expected actor 42, got %d", claims.ActorID)
	}
	if claims.SessionID != 7 {
		t.Fatalf("expected session 7, got %d", claims.SessionID)
	}
	if claims.Role != RoleCustomer {
		t.Fatalf("expected role %s, got %s", RoleCustomer, claims.Role)
	}
	if claims.Email != "budi@gmail.com" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
}

func TestVerifyAccessTokenRejections(t *testing.T) {
	secret := "test-secret"
	token, err := SignAccessToken(1, 1, RoleAdmin, "admin@salwa.id", secret, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := VerifyAccessToken(token, "wrong-secret"); err == nil {
		t.Fatalf("expected wrong secret to fail")
	}
	if _, err := VerifyAccessToken("", secret); err == nil {
		t.Fatalf("expected empty token to fail")
	}

	expired, err := SignAccessToken(1, 1, RoleAdmin, "admin@salwa.id", secret, -time.Minute)
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}
	if _, err := VerifyAccessToken(expired, secret); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestSignAccessTokenRequiresSecret(t *testing.T) {
	if _, err := SignAccessToken(1, 1, RoleCustomer, "a@gmail.com", "", time.Minute); err == nil {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestParseBearerToken(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "standard", header: "Bearer abc.def.ghi", expected: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", expected: "abc"},
		{name: "missing scheme", header: "abc.def.ghi", expected: ""},
		{name: "wrong scheme", header: "Basic abc", expected: ""},
		{name: "empty", header: "", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseBearerToken(tc.header); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestCapabilitiesFor(t *testing.T) {
	adminCaps := CapabilitiesFor(RoleAdmin)
	superCaps := CapabilitiesFor(RoleSuperAdmin)

	if len(CapabilitiesFor(RoleCustomer)) != 0 {
		t.Fatalf("expected customers to hold no capabilities")
	}

	for _, cap := range adminCaps {
		if !HasCapability(superCaps, cap) {
			t.Fatalf("expected superadmin to hold admin capability %s", cap)
		}
	}

	for _, cap := range []Capability{CapCustomerDelete, CapWhatsAppNumbers, CapAdmins} {
		if HasCapability(adminCaps, cap) {
			t.Fatalf("expected %s to be superadmin-only", cap)
		}
		if !HasCapability(superCaps, cap) {
			t.Fatalf("expected superadmin to hold %s", cap)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatalf("expected hash to differ from the plain password")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatalf("expected wrong password to fail")
	}
}

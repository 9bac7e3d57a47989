package handlers

import (
	"testing"
	"time"

	"github.com/brosora6/sora-sub000/internal/config"
)

func TestCanCancelReservation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		start    time.Time
		expected bool
	}{
		{name: "two days ahead", start: now.Add(48 * time.Hour), expected: true},
		{name: "just over the window", start: now.Add(24*time.Hour + time.Minute), expected: true},
		{name: "exactly 24 hours", start: now.Add(24 * time.Hour), expected: false},
		{name: "tonight", start: now.Add(6 * time.Hour), expected: false},
		{name: "already started", start: now.Add(-time.Hour), expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := canCancelReservation(tc.start, now); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestReservationStart(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)

	start, ok := reservationStart("2025-06-01", "18:30", loc)
	if !ok {
		t.Fatalf("expected valid inputs to parse")
	}
	expected := time.Date(2025, 6, 1, 18, 30, 0, 0, loc)
	if !start.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, start)
	}

	if _, ok := reservationStart("2025-06-01", "25:00", loc); ok {
		t.Fatalf("expected invalid time to fail")
	}
	if _, ok := reservationStart("01-06-2025", "18:30", loc); ok {
		t.Fatalf("expected invalid date to fail")
	}
}

func TestValidateReservation(t *testing.T) {
	h := &Handler{Config: config.Config{
		OpeningTime: "10:00",
		ClosingTime: "21:00",
		Timezone:    "Asia/Jakarta",
	}}
	futureDate := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	valid := reservationPayload{
		ReservationDate: futureDate,
		ReservationTime: "18:30",
		PartySize:       4,
	}
	if fields := h.validateReservation(valid); !fields.Empty() {
		t.Fatalf("expected valid payload, got %v", fields)
	}

	cases := []struct {
		name    string
		payload reservationPayload
		field   string
	}{
		{
			name:    "bad date format",
			payload: reservationPayload{ReservationDate: "tomorrow", ReservationTime: "18:30", PartySize: 4},
			field:   "reservationDate",
		},
		{
			name:    "past date",
			payload: reservationPayload{ReservationDate: "2020-01-01", ReservationTime: "18:30", PartySize: 4},
			field:   "reservationDate",
		},
		{
			name:    "bad time format",
			payload: reservationPayload{ReservationDate: futureDate, ReservationTime: "evening", PartySize: 4},
			field:   "reservationTime",
		},
		{
			name:    "outside opening hours",
			payload: reservationPayload{ReservationDate: futureDate, ReservationTime: "23:00", PartySize: 4},
			field:   "reservationTime",
		},
		{
			name:    "party too small",
			payload: reservationPayload{ReservationDate: futureDate, ReservationTime: "18:30", PartySize: 0},
			field:   "partySize",
		},
		{
			name:    "party too large",
			payload: reservationPayload{ReservationDate: futureDate, ReservationTime: "18:30", PartySize: 21},
			field:   "partySize",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := h.validateReservation(tc.payload)
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("expected error for %s, got %v", tc.field, fields)
			}
		})
	}
}

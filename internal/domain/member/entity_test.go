package member

import (
	"strings"
	"testing"
	"time"
)

func TestGuestPlaceholderEmailPattern(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	got := GuestPlaceholderEmail(now)

	if !strings.HasPrefix(got, "temp-") {
		t.Fatalf("placeholder %q missing temp- prefix", got)
	}
	if !strings.HasSuffix(got, "@"+GuestDomain) {
		t.Fatalf("placeholder %q not on the sentinel domain", got)
	}
}

func TestNewGuestNeverCarriesARealAddress(t *testing.T) {
	now := time.Now()
	g := NewGuest("Aoi", "Tanaka", "admin", now)

	if g.Status != StatusGuest {
		t.Fatalf("status = %q, want guest", g.Status)
	}
	if !strings.HasSuffix(g.Email, "@"+GuestDomain) {
		t.Fatalf("guest email %q left the sentinel domain", g.Email)
	}
}

func TestIsGuest(t *testing.T) {
	tests := []struct {
		name string
		m    Member
		want bool
	}{
		{
			name: "guest status",
			m:    Member{Status: StatusGuest, Email: "temp-1@" + GuestDomain},
			want: true,
		},
		{
			name: "sentinel domain without guest status",
			m:    Member{Status: StatusActive, Email: "temp-1@" + GuestDomain},
			want: true,
		},
		{
			name: "active member with real address",
			m:    Member{Status: StatusActive, Email: "runner@example.com"},
			want: false,
		},
		{
			name: "pending verification with real address",
			m:    Member{Status: StatusPendingVerification, Email: "new@example.com"},
			want: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.IsGuest(); got != tc.want {
				t.Fatalf("IsGuest() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsActiveExcludesGuests(t *testing.T) {
	g := Member{Status: StatusActive, Email: "temp-9@" + GuestDomain}
	if g.IsActive() {
		t.Fatal("sentinel-domain row must never count as an active member")
	}
	m := Member{Status: StatusActive, Email: "runner@example.com"}
	if !m.IsActive() {
		t.Fatal("real active member not recognized")
	}
}

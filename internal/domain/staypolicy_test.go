package domain_test

import (
	"errors"
	"testing"
	"time"

	"hotel_booking/internal/domain"
)

func TestExceedsMaxStay(t *testing.T) {
	tests := []struct {
		in, out    string
		privileged bool
		want       bool
	}{
		{"2024-06-01", "2024-06-02", false, false},
		{"2024-06-01", "2024-06-04", false, false}, // exactly three nights
		{"2024-06-01", "2024-06-05", false, true},
		{"2024-06-01", "2024-06-06", false, true},
		{"2024-06-01", "2024-06-06", true, false},
		{"2024-06-01", "2024-07-01", true, false},
	}
	for _, tc := range tests {
		got := domain.ExceedsMaxStay(day(tc.in), day(tc.out), tc.privileged, domain.DefaultMaxNights)
		if got != tc.want {
			t.Fatalf("%s..%s privileged=%v: want %v, got %v", tc.in, tc.out, tc.privileged, tc.want, got)
		}
	}
}

func TestExceedsMaxStay_LastDayInclusive(t *testing.T) {
	in := day("2024-06-01")
	lastInstant := time.Date(2024, 6, 4, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if domain.ExceedsMaxStay(in, lastInstant, false, 3) {
		t.Fatalf("the whole final permitted day must be allowed")
	}
	if !domain.ExceedsMaxStay(in, lastInstant.Add(time.Millisecond), false, 3) {
		t.Fatalf("the next day must exceed")
	}
}

func TestValidateStay_FirstViolationWins(t *testing.T) {
	h := domain.Hotel{ID: 1, UnavailableDates: []time.Time{day("2024-06-10")}}
	user := domain.Requester{ID: 7, Role: domain.RoleUser}
	admin := domain.Requester{ID: 1, Role: domain.RoleAdmin}

	if err := domain.ValidateStay(h, day("2024-06-10"), day("2024-06-10"), user, 3); !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("equal dates: want InvalidRange, got %v", err)
	}
	if err := domain.ValidateStay(h, day("2024-06-12"), day("2024-06-11"), user, 3); !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("reversed dates: want InvalidRange, got %v", err)
	}

	// overlaps and too long: the overlap is reported
	err := domain.ValidateStay(h, day("2024-06-08"), day("2024-06-20"), user, 3)
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindDateConflict {
		t.Fatalf("want DateConflict, got %v", err)
	}
	if !de.Date.Equal(day("2024-06-10")) {
		t.Fatalf("conflict must carry the blocked date, got %v", de.Date)
	}
	if de.Error() != "Your booking range overlaps with hotel's unavailable dates: Monday, June 10, 2024" {
		t.Fatalf("unexpected message: %q", de.Error())
	}

	if err := domain.ValidateStay(h, day("2024-06-01"), day("2024-06-06"), user, 3); !errors.Is(err, domain.ErrStayTooLong) {
		t.Fatalf("want StayTooLong, got %v", err)
	}
	if err := domain.ValidateStay(h, day("2024-06-01"), day("2024-06-06"), admin, 3); err != nil {
		t.Fatalf("admin must be exempt, got %v", err)
	}
	if err := domain.ValidateStay(h, day("2024-06-11"), day("2024-06-13"), user, 3); err != nil {
		t.Fatalf("want success, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), domain.NotFound("No booking with the id of %d", 4))
	if domain.KindOf(wrapped) != domain.KindNotFound {
		t.Fatalf("unexpected kind: %v", domain.KindOf(wrapped))
	}
	if !errors.Is(wrapped, domain.ErrNotFound) {
		t.Fatalf("errors.Is must match by kind")
	}
	if errors.Is(wrapped, domain.ErrForbidden) {
		t.Fatalf("kinds must not cross-match")
	}
	if domain.KindOf(errors.New("boom")) != domain.KindUnknown {
		t.Fatalf("plain errors are unknown")
	}
}

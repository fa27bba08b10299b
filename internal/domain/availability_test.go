package domain_test

import (
	"testing"
	"time"

	"hotel_booking/internal/domain"
)

func TestFindOverlap(t *testing.T) {
	tests := []struct {
		name     string
		blocked  []time.Time
		in, out  string
		want     string
		overlaps bool
	}{
		{name: "empty", in: "2024-06-01", out: "2024-06-03"},
		{name: "before range", blocked: []time.Time{day("2024-05-31")}, in: "2024-06-01", out: "2024-06-03"},
		{name: "after range", blocked: []time.Time{day("2024-06-04")}, in: "2024-06-01", out: "2024-06-03"},
		{name: "on check-in", blocked: []time.Time{day("2024-06-01")}, in: "2024-06-01", out: "2024-06-03", want: "2024-06-01", overlaps: true},
		{name: "on check-out", blocked: []time.Time{day("2024-06-10")}, in: "2024-06-08", out: "2024-06-10", want: "2024-06-10", overlaps: true},
		{name: "inside", blocked: []time.Time{day("2024-06-02")}, in: "2024-06-01", out: "2024-06-03", want: "2024-06-02", overlaps: true},
		{
			name:    "time of day ignored",
			blocked: []time.Time{time.Date(2024, 6, 3, 17, 45, 0, 0, time.UTC)},
			in:      "2024-06-01", out: "2024-06-03", want: "2024-06-03", overlaps: true,
		},
		{
			name:    "first in stored order wins",
			blocked: []time.Time{day("2024-06-20"), day("2024-06-03"), day("2024-06-02")},
			in:      "2024-06-01", out: "2024-06-05", want: "2024-06-03", overlaps: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := domain.FindOverlap(tc.blocked, day(tc.in), day(tc.out))
			if ok != tc.overlaps {
				t.Fatalf("overlap: want %v, got %v", tc.overlaps, ok)
			}
			if ok && !got.Equal(day(tc.want)) {
				t.Fatalf("date: want %s, got %v", tc.want, got)
			}
		})
	}
}

func TestFindOverlap_Idempotent(t *testing.T) {
	blocked := []time.Time{day("2024-06-10"), day("2024-06-12")}
	first, ok1 := domain.FindOverlap(blocked, day("2024-06-09"), day("2024-06-13"))
	for i := 0; i < 10; i++ {
		again, ok := domain.FindOverlap(blocked, day("2024-06-09"), day("2024-06-13"))
		if ok != ok1 || !again.Equal(first) {
			t.Fatalf("verdict changed on run %d: %v %v", i, again, ok)
		}
	}
	if !blocked[0].Equal(day("2024-06-10")) || len(blocked) != 2 {
		t.Fatalf("input slice must not be modified: %v", blocked)
	}
}

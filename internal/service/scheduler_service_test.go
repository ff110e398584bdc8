package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "07:00", want: "0 0 7 * * *"},
		{in: "23:45", want: "0 45 23 * * *"},
		{in: " 6:05 ", want: "0 5 6 * * *"},
		{in: "24:00", wantErr: true},
		{in: "07:60", wantErr: true},
		{in: "7", wantErr: true},
	}
	for _, tc := range cases {
		got, err := buildDailySpec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSchedulerService_ReplaceInterval(t *testing.T) {
	s := NewSchedulerService(time.Local)

	if err := s.ReplaceInterval("report", 5*time.Hour, func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.ReplaceInterval("report", 2*time.Hour, func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Entries() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Entries())
	}
	if err := s.ReplaceInterval("report", 0, func() {}); err == nil {
		t.Error("expected error for a zero interval")
	}
	if s.Entries() != 1 {
		t.Errorf("expected failed replace to keep the job, got %d entries", s.Entries())
	}

	if _, err := s.ScheduleDaily("07:00", func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Entries() != 2 {
		t.Errorf("expected 2 entries, got %d", s.Entries())
	}
}

package dateindex

import (
	"testing"
	"time"
)

func newTestEpoch(t *testing.T) *Epoch {
	t.Helper()
	ep, err := NewEpoch("2011-03-16", "2012-03-16")
	if err != nil {
		t.Fatalf("NewEpoch failed: %v", err)
	}
	return ep
}

func TestEpoch_Bounds(t *testing.T) {
	ep := newTestEpoch(t)

	// 2012 is a leap year
	if ep.Last() != 366 {
		t.Errorf("Last = %d, want 366", ep.Last())
	}
	if ep.Interval() != 367 {
		t.Errorf("Interval = %d, want 367", ep.Interval())
	}
	if ep.First() != 0 {
		t.Errorf("First = %d, want 0", ep.First())
	}
}

func TestEpoch_FromString(t *testing.T) {
	ep := newTestEpoch(t)

	tests := []struct {
		in   string
		want int
	}{
		{"2011-03-16", 0},
		{"2011-03-17", 1},
		{"2011-04-16", 31},
		{"2011-Apr-16", 31},
		{"2011-4-16", 31},
		{"2012-03-16", 366},
		{"2012-03-17", Invalid},
		{"2011-03-15", Invalid},
		{"not a date", Invalid},
		{"", Invalid},
	}

	for _, tt := range tests {
		if got := ep.FromString(tt.in); got != tt.want {
			t.Errorf("FromString(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEpoch_ToString(t *testing.T) {
	ep := newTestEpoch(t)

	if got := ep.ToString(31); got != "2011-04-16" {
		t.Errorf("ToString(31) = %q", got)
	}
	if got := ep.ToString(-1); got != InvalidDate {
		t.Errorf("ToString(-1) = %q, want %q", got, InvalidDate)
	}
	if got := ep.ToString(ep.Last() + 1); got != InvalidDate {
		t.Errorf("ToString(last+1) = %q, want %q", got, InvalidDate)
	}

	for day := ep.First(); day <= ep.Last(); day++ {
		if back := ep.FromString(ep.ToString(day)); back != day {
			t.Fatalf("round trip of day %d gave %d", day, back)
		}
	}
}

func TestEpoch_FromTime(t *testing.T) {
	ep := newTestEpoch(t)

	loc := time.FixedZone("UTC+9", 9*3600)
	if got := ep.FromTime(time.Date(2011, 3, 18, 23, 30, 0, 0, loc)); got != 2 {
		t.Errorf("FromTime = %d, want 2", got)
	}
}

func TestNewEpoch_Errors(t *testing.T) {
	if _, err := NewEpoch("bad", "2012-01-01"); err == nil {
		t.Error("Expected error for bad start")
	}
	if _, err := NewEpoch("2012-01-01", "bad"); err == nil {
		t.Error("Expected error for bad end")
	}
	if _, err := NewEpoch("2012-01-02", "2012-01-01"); err == nil {
		t.Error("Expected error for reversed range")
	}
}

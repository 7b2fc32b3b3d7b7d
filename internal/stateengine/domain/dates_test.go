package domain

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		wantISO string
	}{
		{"2025-03-10", "2025-03-10"},
		{"10/03/2025", "2025-03-10"},
		{"10-03-2025", "2025-03-10"},
		{"2025/03/10", "2025-03-10"},
		{"2025-03-10T14:30:00Z", "2025-03-10"},
		{"2025-03-10 14:30", "2025-03-10"},
		{"  2025-03-10  ", "2025-03-10"},
		{"", ""},
		{"n/a", ""},
		{"31/02/2025", ""},
	}

	for _, tc := range tests {
		got := ParseDate(tc.raw)
		if got.ISO() != tc.wantISO {
			t.Errorf("ParseDate(%q).ISO() = %q, want %q", tc.raw, got.ISO(), tc.wantISO)
		}
		if got.Known != (tc.wantISO != "") {
			t.Errorf("ParseDate(%q).Known = %v", tc.raw, got.Known)
		}
	}
}

func TestDateDaysUntil(t *testing.T) {
	from := time.Date(2025, 3, 15, 23, 0, 0, 0, time.UTC)

	d := ParseDate("2025-03-20")
	days, ok := d.DaysUntil(from)
	if !ok || days != 5 {
		t.Errorf("DaysUntil = %d, %v; want 5, true", days, ok)
	}

	if _, ok := (Date{}).DaysUntil(from); ok {
		t.Error("unknown date must report ok=false")
	}
}

func TestDateBeforeTime(t *testing.T) {
	today := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

	if !ParseDate("2025-03-14").BeforeTime(today) {
		t.Error("yesterday must be before today")
	}
	if ParseDate("2025-03-15").BeforeTime(today) {
		t.Error("the same calendar day is not before today")
	}
	if ParseDate("2025-03-16").BeforeTime(today) {
		t.Error("tomorrow is not before today")
	}
	if (Date{}).BeforeTime(today) {
		t.Error("unknown dates compare false")
	}
}

func TestDateFrench(t *testing.T) {
	if got := ParseDate("2025-12-01").French(); got != "01/12/2025" {
		t.Errorf("French() = %q", got)
	}
	if got := (Date{}).French(); got != "" {
		t.Errorf("unknown French() = %q", got)
	}
}

package normalize

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"day first slash", "12/05/2024", date(2024, time.May, 12), true},
		{"day first short year", "12/05/24", date(2024, time.May, 12), true},
		{"day first hyphen", "14-03-2023", date(2023, time.March, 14), true},
		{"iso hyphen", "2024-05-12", date(2024, time.May, 12), true},
		{"iso slash", "2024/05/12", date(2024, time.May, 12), true},
		{"month first wins only when day first fails", "05/13/2024", date(2024, time.May, 13), true},
		{"day month name", "12 May 2024", date(2024, time.May, 12), true},
		{"day abbreviated month", "3 Mar 2023", date(2023, time.March, 3), true},
		{"day month hyphenated", "12-May-2024", date(2024, time.May, 12), true},
		{"month name day", "May 12 2024", date(2024, time.May, 12), true},
		{"uppercase month", "14 MAR 2023", date(2023, time.March, 14), true},
		{"lowercase month", "14 mar 2023", date(2023, time.March, 14), true},
		{"noise stripped", "12/05/2024.", date(2024, time.May, 12), true},
		{"single digit parts", "2/5/2024", date(2024, time.May, 2), true},
		{"empty", "", time.Time{}, false},
		{"nan sentinel", "nan", time.Time{}, false},
		{"none sentinel", "None", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
		{"bare number", "12345678", time.Time{}, false},
		{"impossible date", "45/45/2024", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateDayFirstPriority(t *testing.T) {
	// Ambiguous between day-first and month-first: day-first must win.
	got, ok := ParseDate("03/04/2024")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := date(2024, time.April, 3)
	if !got.Equal(want) {
		t.Errorf("ParseDate(ambiguous) = %v, want day-first %v", got, want)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain", "1500", 1500, true},
		{"decimal", "450.00", 450, true},
		{"negative returns magnitude", "-45.20", 45.20, true},
		{"currency symbol", "₹450.00", 450, true},
		{"dollar and commas", "$1,234.56", 1234.56, true},
		{"rupee prefix", "Rs 2500", 2500, true},
		{"trailing marker", "99.95 INR", 99.95, true},
		{"whitespace", "  42  ", 42, true},
		{"empty", "", 0, false},
		{"dash sentinel", "-", 0, false},
		{"nan sentinel", "NaN", 0, false},
		{"none sentinel", "none", 0, false},
		{"letters only", "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

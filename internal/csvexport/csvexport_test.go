package csvexport

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"this one, too", `"this one, too"`},
		{`test,trying "a"`, `"test,trying ""a"""`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := Escape(tt.input)
		if got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStringEmptyEmitsHeaderOnly(t *testing.T) {
	got := String(nil)
	want := Header + "\n"
	if got != want {
		t.Errorf("String(nil) = %q, want %q", got, want)
	}
}

func TestString(t *testing.T) {
	rows := []Row{
		{
			Username:    "alice",
			Project:     "Web",
			Task:        "Design",
			LaborCode:   "Billable",
			Description: "this one, too",
			Date:        time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
			Hours:       3,
			Minutes:     36,
			Cost:        decimal.RequireFromString("74.38"),
		},
		{
			Username:    "bob",
			Project:     "Ops",
			Description: `test,trying "a"`,
			Date:        time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC),
			Hours:       1,
			Cost:        decimal.RequireFromString("50"),
		},
	}

	want := Header + "\n" +
		`alice,Web,Design,Billable,"this one, too",2026-10-05,3,36,74.38` + "\n" +
		`bob,Ops,,,"test,trying ""a""",2026-10-06,1,0,50.00` + "\n"

	if got := String(rows); got != want {
		t.Errorf("String mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

package app

import (
	"strings"
	"testing"
)

func TestFormatDBQueryForTrace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "collapses whitespace", in: "SELECT id\n\tFROM tournaments\n WHERE id = $1", want: "SELECT id FROM tournaments WHERE id = $1"},
		{name: "masks literals", in: "INSERT INTO seasons (id, name) VALUES ('default-season', 'It''s on')", want: "INSERT INTO seasons (id, name) VALUES ('?', '?')"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatDBQueryForTrace(tc.in); got != tc.want {
				t.Fatalf("formatDBQueryForTrace(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatDBQueryForTrace_Truncates(t *testing.T) {
	got := formatDBQueryForTrace("SELECT " + strings.Repeat("x, ", 400) + "y FROM t")
	if len(got) != maxTracedQueryLength+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncation: len=%d", len(got))
	}
}

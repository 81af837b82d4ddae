package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays intact", "Leblon", 36, "Leblon"},
		{"exact length stays intact", "abcdef", 6, "abcdef"},
		{"long ascii", "a long host name that keeps on going", 10, "a long ..."},
		{"accented name cut on rune boundary", "São Conrado e Jardim Botânico área", 12, "São Conra..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q; want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8: %q", tt.in, tt.max, got)
			}
		})
	}
}

func TestFmtHelpersReportNoData(t *testing.T) {
	if got := fmtInt(nil); got != "no data" {
		t.Errorf("fmtInt(nil) = %q", got)
	}
	if got := fmtFloat(nil); got != "no data" {
		t.Errorf("fmtFloat(nil) = %q", got)
	}
	n := 7
	if got := fmtInt(&n); got != "7" {
		t.Errorf("fmtInt(&7) = %q", got)
	}
	v := 123.456
	if got := fmtFloat(&v); !strings.HasPrefix(got, "123.46") {
		t.Errorf("fmtFloat(&123.456) = %q", got)
	}
}

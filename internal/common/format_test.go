package common

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatTokens(t *testing.T) {
	cases := map[string]string{"1": "1.00", "0.1": "0.10", "-0.5": "-0.50"}
	for in, want := range cases {
		if got := FormatTokens(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatTokens(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatSignedTokens(t *testing.T) {
	cases := map[string]string{"1": "+1.00", "0": "0.00", "-0.1": "-0.10"}
	for in, want := range cases {
		if got := FormatSignedTokens(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatSignedTokens(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestShortId(t *testing.T) {
	if got := ShortId("0123456789abcdef"); got != "01234567" {
		t.Errorf("Unexpected short id %q", got)
	}
	if got := ShortId("abc"); got != "abc" {
		t.Errorf("Short ids must be kept, got %q", got)
	}
}

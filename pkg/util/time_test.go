package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{90 * time.Second, "00:01:30.000"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03.000"},
	}

	for _, c := range cases {
		if got := FormatDuration(c.d); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25/1", 25},
		{"0/0", 0},
		{"garbage", 0},
		{"1/0", 0},
	}

	for _, c := range cases {
		got := ParseFrameRate(c.in)
		if diff := got - c.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

package model

import (
	"math"
	"testing"
)

func TestNormalizeScore_FractionalRescaled(t *testing.T) {
	cases := []struct {
		raw  float64
		want float64
	}{
		{0, 0},
		{0.5, 50},
		{0.91, 91},
		{1, 100},
		{1.5, 150}, // clamped below
	}
	for _, c := range cases {
		got := NormalizeScore(c.raw)
		want := c.want
		if want > 100 {
			want = 100
		}
		if got != want {
			t.Errorf("NormalizeScore(%v) = %v, want %v", c.raw, got, want)
		}
	}
}

func TestNormalizeScore_WholeScaleRounded(t *testing.T) {
	cases := []struct {
		raw  float64
		want float64
	}{
		{2, 2},
		{65, 65},
		{87.6, 88},
		{88, 88},
		{100, 100},
		{130, 100},
	}
	for _, c := range cases {
		if got := NormalizeScore(c.raw); got != c.want {
			t.Errorf("NormalizeScore(%v) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestNormalizeScore_IdempotentOnNormalized(t *testing.T) {
	for s := 2.0; s <= 100; s++ {
		once := NormalizeScore(s)
		twice := NormalizeScore(once)
		if once != twice {
			t.Fatalf("normalization not idempotent at %v: %v != %v", s, once, twice)
		}
	}
}

func TestNormalizeScore_GarbageDefaultsToZero(t *testing.T) {
	if got := NormalizeScore(math.NaN()); got != 0 {
		t.Errorf("NormalizeScore(NaN) = %v, want 0", got)
	}
	if got := NormalizeScore(-5); got != 0 {
		t.Errorf("NormalizeScore(-5) = %v, want 0", got)
	}
}

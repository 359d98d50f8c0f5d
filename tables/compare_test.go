package tables

import (
	"math"
	"testing"
	"time"
)

func TestCompareValues_Integers(t *testing.T) {
	cases := []struct {
		a, b any
		want int
	}{
		{int64(1<<53 + 1), int64(1 << 53), 1},
		{int64(1 << 53), int64(1<<53 + 1), -1},
		{uint64(math.MaxUint64), uint64(math.MaxUint64 - 1), 1},
		{int64(-5), uint64(3), -1},
		{uint64(math.MaxUint64), int64(math.MaxInt64), 1},
		{int64(math.MinInt64), int64(math.MinInt64 + 1), -1},
		{int8(-3), int64(-3), 0},
		{42, 41.5, 1},
	}
	for _, tc := range cases {
		if got := compareValues(tc.a, tc.b); got != tc.want {
			t.Fatalf("compareValues(%v, %v): expected %d, got %d", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestCompareValues_TypeRank(t *testing.T) {
	ordered := []any{nil, false, true, -1, 2.5, time.Unix(0, 0), "31", struct{}{}}
	for i := 1; i < len(ordered); i++ {
		if got := compareValues(ordered[i-1], ordered[i]); got != -1 {
			t.Fatalf("expected %v (%T) before %v (%T)", ordered[i-1], ordered[i-1], ordered[i], ordered[i])
		}
	}
	var missing *time.Time
	if compareValues(missing, nil) != 0 {
		t.Fatalf("expected a nil time pointer to rank as nil")
	}
}

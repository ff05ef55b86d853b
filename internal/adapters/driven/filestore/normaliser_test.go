package filestore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalise(t *testing.T) {
	n := newDataNormaliser()

	testCases := map[string]struct {
		in   any
		want any
	}{
		"whole number":       {in: float64(42), want: 42},
		"fraction":           {in: 4.2, want: 4.2},
		"lowest int64":       {in: float64(math.MinInt64), want: math.MinInt64},
		"2^63 stays a float": {in: float64(1 << 63), want: float64(1 << 63)},
		"below int64 range":  {in: -1e30, want: -1e30},
		"infinity":           {in: math.Inf(1), want: math.Inf(1)},
		"nested values":      {in: []any{float64(1), map[string]any{"n": float64(2)}}, want: []any{1, map[string]any{"n": 2}}},
		"strings are kept":   {in: "7", want: "7"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, n.normalise(tc.in))
		})
	}
}

package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/docbridge/internal/value"
)

func TestIncrement(t *testing.T) {
	tests := []struct {
		name  string
		old   value.Value
		delta value.Value
		want  value.Value
	}{
		{"int plus int", value.Int(2), value.Int(3), value.Int(5)},
		{"int plus float", value.Int(2), value.Float(0.5), value.Float(2.5)},
		{"float plus int", value.Float(1.5), value.Int(1), value.Float(2.5)},
		{"float plus float", value.Float(1.5), value.Float(1.5), value.Float(3)},
		{"absent", nil, value.Int(7), value.Int(7)},
		{"string base", value.String("x"), value.Float(1.5), value.Float(1.5)},
		{"saturates up", value.Int(math.MaxInt64), value.Int(1), value.Int(math.MaxInt64)},
		{"saturates down", value.Int(math.MinInt64), value.Int(-1), value.Int(math.MinInt64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, increment(tt.old, tt.delta))
		})
	}
}

func TestCheckFieldPaths(t *testing.T) {
	assert.NoError(t, checkFieldPaths([]string{"a", "a!b", "ab", "b.c"}))
	assert.Error(t, checkFieldPaths([]string{"a!b", "a", "a.b"}))
	assert.Error(t, checkFieldPaths([]string{"x.y.z", "x.y"}))
}

func TestSplitFieldPath(t *testing.T) {
	segs, err := splitFieldPath("a.b.c")
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, segs)

	_, err = splitFieldPath(".a")
	assert.Error(t, err)
}

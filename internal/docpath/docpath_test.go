package docpath

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		document bool
	}{
		{"users", "users", false},
		{"users/42", "users/42", true},
		{"/users/42/", "users/42", true},
		{"users/42/orders", "users/42/orders", false},
		{"users/42/orders/a-1", "users/42/orders/a-1", true},
		{"a/__x", "a/__x", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
			assert.Equal(t, tt.document, p.IsDocument())
			assert.Equal(t, !tt.document, p.IsCollection())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"only slashes", "///"},
		{"double slash", "users//42"},
		{"dot", "users/."},
		{"dot dot", "users/../admin"},
		{"reserved", "users/__id__"},
		{"too long", strings.Repeat("a", MaxPathBytes+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPath))
		})
	}
}

func TestParseNormalizesNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9
	p, err := Parse("cafe\u0301s/1")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9s/1", p.String())
}

func TestValidateDocument(t *testing.T) {
	_, err := ValidateDocument("users/42")
	assert.NoError(t, err)

	_, err = ValidateDocument("users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a document")
}

func TestValidateCollection(t *testing.T) {
	_, err := ValidateCollection("users/42/orders")
	assert.NoError(t, err)

	_, err = ValidateCollection("users/42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a collection")
}

func TestPathNavigation(t *testing.T) {
	p := MustParse("users/42/orders/7")

	assert.Equal(t, "7", p.ID())
	assert.Equal(t, "users/42/orders", p.Parent().String())
	assert.Equal(t, "users", p.Parent().Parent().Parent().String())
	assert.True(t, p.Parent().Parent().Parent().Parent().IsZero())
	assert.Equal(t, []string{"users", "42", "orders", "7"}, p.Segments())

	child, err := MustParse("users").Child("42")
	require.NoError(t, err)
	assert.Equal(t, "users/42", child.String())

	_, err = MustParse("users").Child("")
	assert.Error(t, err)
}

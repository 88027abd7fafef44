package rut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCheckChar(t *testing.T) {
	tests := []struct {
		body string
		want byte
	}{
		{"7654321", '6'},
		{"12345678", '5'},
		{"11111111", '1'},
		{"6", 'K'},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeCheckChar(tt.body))
			// Deterministic: same body, same character.
			assert.Equal(t, ComputeCheckChar(tt.body), ComputeCheckChar(tt.body))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("strips punctuation and uppercases", func(t *testing.T) {
		body, check, err := Normalize("12.345.678-k")
		require.NoError(t, err)
		assert.Equal(t, "12345678", body)
		assert.Equal(t, byte('K'), check)
	})

	t.Run("too short", func(t *testing.T) {
		_, _, err := Normalize("123")
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("k inside body", func(t *testing.T) {
		_, _, err := Normalize("12k45.678-5")
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid with punctuation", "7.654.321-6", true},
		{"wrong check digit", "7.654.321-5", false},
		{"valid canonical form", "123456785", true},
		{"valid repeated ones", "11.111.111-1", true},
		{"valid with K check char", "20.347.878-k", true},
		{"too short never throws", "123", false},
		{"empty", "", false},
		{"letters only", "abcdef", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.input))
		})
	}
}

func TestCanonical(t *testing.T) {
	got, err := Canonical("12.345.678-5")
	require.NoError(t, err)
	assert.Equal(t, "123456785", got)

	_, err = Canonical("12")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.345.678-5", Format("123456785"))
	assert.Equal(t, "7.654.321-6", Format("7654321-6"))
	assert.Equal(t, "20.347.878-K", Format("20347878k"))
	// Unnormalizable input passes through untouched.
	assert.Equal(t, "123", Format("123"))
}

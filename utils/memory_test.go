package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeToMB(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2048K", "2"},
		{"3584K", "3.5"},
		{"8192K", "8"},
		{"1024K", "1"},
		{"24.0M", "24"},
		{"12,5M", "12.5"},
		{"1G", "1024"},
		{"1.5G", "1536"},
		{"1048576B", "1"},
		{"0.0B", "0"},
		{"3072.0K", "3"},
		{"4364.0K", "4.26"},
		{" 512K ", "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeToMB(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

// Exact ties at the second decimal place round to the even neighbour.
func TestNormalizeToMB_HalfEvenTies(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5.12K", "0"},
		{"15.36K", "0.02"},
		{"25.6K", "0.02"},
		{"0.005M", "0"},
		{"0.015M", "0.02"},
		{"0.025M", "0.02"},
		{"1,125M", "1.12"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeToMB(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestNormalizeToMB_MegabytesAreIdentity(t *testing.T) {
	for _, v := range []string{"0", "1", "7.25", "1023.99", "65536"} {
		got, err := NormalizeToMB(v + "M")
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(v)), "%sM normalized to %s", v, got)
	}
}

func TestNormalizeToMB_Errors(t *testing.T) {
	tests := []struct {
		input      string
		unknownErr bool
	}{
		{"", false},
		{"K", false},
		{"12T", true},
		{"12", true},
		{"abcK", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NormalizeToMB(tt.input)
			require.Error(t, err)
			if tt.unknownErr {
				assert.ErrorIs(t, err, ErrUnknownUnit)
			}
		})
	}
}

func TestFormatMB(t *testing.T) {
	tests := []struct {
		mb   int
		want string
	}{
		{0, "0M"},
		{-1, "0M"},
		{8, "8M"},
		{1023, "1023M"},
		{1024, "1G"},
		{4096, "4G"},
		{1536, "1.50G"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMB(tt.mb))
	}
}

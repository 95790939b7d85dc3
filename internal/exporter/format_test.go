package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0.00"},
		{in: 1.5, want: "1.50"},
		{in: 2.675, want: "2.68"},
		{in: -3.14159, want: "-3.14"},
		{in: 1234567.891, want: "1234567.89"},
		{in: math.NaN(), want: ""},
		{in: math.Inf(1), want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in))
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "48", FormatInt(48))
	assert.Equal(t, "-1", FormatInt(-1))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$ 1,234.57", FormatCurrency(1234.567))
	assert.Equal(t, "$ 12,000,000.00", FormatCurrency(12000000))
	assert.Equal(t, NotAvailable, FormatCurrency(math.NaN()))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "55,000", FormatNumber(55000, 0))
	assert.Equal(t, "3.1", FormatNumber(3.14159, 1))
	assert.Equal(t, NotAvailable, FormatNumber(math.Inf(-1), 2))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "71.5%", FormatPercent(71.4773))
	assert.Equal(t, "100.0%", FormatPercent(100))
	assert.Equal(t, NotAvailable, FormatPercent(math.NaN()))
}

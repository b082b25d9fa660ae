package printing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
	}{
		{"zero", "0", "₹0.00"},
		{"hundreds", "999.5", "₹999.50"},
		{"thousands", "1234", "₹1,234.00"},
		{"ten thousands", "12345.678", "₹12,345.68"},
		{"lakh", "123456", "₹1,23,456.00"},
		{"ten lakh", "1234567.5", "₹12,34,567.50"},
		{"crore", "123456789", "₹12,34,56,789.00"},
		{"negative", "-500", "-₹500.00"},
		{"negative lakh", "-150000", "-₹1,50,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatINR(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestGroupIndian(t *testing.T) {
	assert.Equal(t, "1", GroupIndian("1"))
	assert.Equal(t, "123", GroupIndian("123"))
	assert.Equal(t, "1,000", GroupIndian("1000"))
	assert.Equal(t, "10,00,000", GroupIndian("1000000"))
	assert.Equal(t, "1,00,00,000.25", GroupIndian("10000000.25"))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "18", FormatRate(decimal.RequireFromString("18.00")))
	assert.Equal(t, "9", FormatRate(decimal.NewFromInt(18).Div(decimal.NewFromInt(2))))
	assert.Equal(t, "2.5", FormatRate(decimal.RequireFromString("2.50")))
}

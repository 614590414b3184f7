package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInteger(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain digits", "1000000", "1000000"},
		{"grouped", "1,000,000", "1000000"},
		{"currency prefix", "₩ 12,345원", "12345"},
		{"minus sign dropped", "-500", "500"},
		{"decimal point dropped", "12.50", "1250"},
		{"no digits", "abc", ""},
		{"empty", "", ""},
		{"leading zeros kept", "007", "007"},
		{"all zeros kept", "000", "000"},
		{"full width digits ignored", "１２3", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInteger(tt.input))
		})
	}
}

func TestToInteger_Idempotent(t *testing.T) {
	inputs := []string{"", "0", "1,234", "a1b2c3", "0009", "  42 ", "9,999,999,999"}
	for _, in := range inputs {
		once := ToInteger(in)
		assert.Equal(t, once, ToInteger(once), "input %q", in)
	}
}

func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1000000", "1,000,000"},
		{"1,000", "1,000"},
		{"999", "999"},
		{"0", "0"},
		{"0042", "0,042"},
		{"123456789012345678901234", "123,456,789,012,345,678,901,234"},
		{"", ""},
		{"abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatForDisplay(tt.input))
		})
	}
}

func TestFormatForDisplay_RoundTrip(t *testing.T) {
	inputs := []string{"0", "1", "12", "123", "1234", "1000000", "987654321", "0042", "123456789012345678901234"}
	for _, in := range inputs {
		assert.Equal(t, ToInteger(in), ToInteger(FormatForDisplay(in)), "input %q", in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "", FormatAmount(0))
	assert.Equal(t, "700,000", FormatAmount(700000))
}

func TestIsInteger(t *testing.T) {
	assert.True(t, IsInteger("0"))
	assert.True(t, IsInteger("1000"))
	assert.False(t, IsInteger(""))
	assert.False(t, IsInteger("1,000"))
	assert.False(t, IsInteger("-1"))
	assert.False(t, IsInteger("1.5"))
}

func TestParseAmount(t *testing.T) {
	n, err := ParseAmount("1,000,000")
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), n)

	n, err = ParseAmount("007")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = ParseAmount("")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ParseAmount("99999999999999999999999")
	assert.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("12.5")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))

	d, err = ParseDecimal(" ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDecimal("twelve")
	assert.Error(t, err)
}

package sfa

import (
	"testing"

	"github.com/erp/sfa/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateProfit(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		value     string
		isProfit  bool
		want      int64
		corrected bool
		original  string
	}{
		{"flat profit", 1000000, "250000", true, 250000, false, "250000"},
		{"flat profit with decimals is rounded", 1000, "100.6", true, 101, true, "100.6"},
		{"percentage", 1000000, "15", false, 150000, false, "150000"},
		{"percentage rounds half up", 333, "50", false, 167, true, "166.5"},
		{"percentage rounds down", 1001, "10", false, 100, true, "100.1"},
		{"fractional percentage", 10000, "12.5", false, 1250, false, "1250"},
		{"empty value", 1000, "", false, 0, false, "0"},
		{"zero amount", 0, "30", false, 0, false, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CalculateProfit(tt.amount, tt.value, tt.isProfit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Amount)
			assert.Equal(t, tt.corrected, res.Corrected)
			assert.Equal(t, tt.original, res.Original.String())
		})
	}
}

func TestCalculateProfit_InvalidValue(t *testing.T) {
	_, err := CalculateProfit(1000, "ten", false)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MARGIN", domainErr.Code)
}

func TestCheckProfitRule(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		value    string
		isProfit bool
		ok       bool
	}{
		{"profit below amount", 1000, "999", true, true},
		{"profit equal amount", 1000, "1000", true, true},
		{"profit above amount", 1000, "1001", true, false},
		{"percentage zero", 1000, "0", false, true},
		{"percentage hundred", 1000, "100", false, true},
		{"percentage above hundred", 1000, "100.1", false, false},
		{"negative percentage", 1000, "-1", false, false},
		{"not a number", 1000, "abc", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := CheckProfitRule(tt.amount, tt.value, tt.isProfit)
			if tt.ok {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"asc", "ASC"},
		{"DESC", "DESC"},
		{" desc ", "DESC"},
		{"", "ASC"},
		{"sideways", "ASC"},
		{"DESC; DROP TABLE sfas", "ASC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "name", ValidateSortField("name", CustomerSortFields, "id"))
	assert.Equal(t, "id", ValidateSortField("", CustomerSortFields, "id"))
	assert.Equal(t, "id", ValidateSortField("name; DROP TABLE customers", CustomerSortFields, "id"))
	assert.Equal(t, "created_at", ValidateSortField("memo", PaymentSortFields, "created_at"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}

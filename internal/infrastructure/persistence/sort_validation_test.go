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
		{" ASC ", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"; DROP TABLE posts", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "title", ValidateSortField("title", PostSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", PostSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("body; --", PostSortFields, "created_at"))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "price ASC", orderClause("price", "asc", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at DESC", orderClause("password", "up", ProductSortFields, "created_at"))
}

package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := ErrNoSession.WithMessage("Please sign in to add an invoice")

	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, fmt.Errorf("create: %w", err), ErrNoSession)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Please sign in to add an invoice", err.Error())
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		expected int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TotalPages(tt.total, tt.pageSize))
	}
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, size)

	assert.Equal(t, 20, Offset(3, 10))
}

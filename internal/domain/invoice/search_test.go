package invoice

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNumericQuery(t *testing.T) {
	tests := []struct {
		query   string
		numeric bool
	}{
		{"1024", true},
		{" 1024 ", true},
		{"2024.5", true},
		{"", false},
		{"   ", false},
		{"acme", false},
		{"INV2024", false},
		{"NaN", false},
		{"Inf", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.numeric, IsNumericQuery(tt.query))
		})
	}
}

func TestResolveQuery(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	t.Run("empty", func(t *testing.T) {
		number, clients := ResolveQuery("  ", ids)
		assert.Empty(t, number)
		assert.Nil(t, clients)
	})

	t.Run("numeric ignores client matches", func(t *testing.T) {
		number, clients := ResolveQuery("1024", ids)
		assert.Equal(t, "1024", number)
		assert.Nil(t, clients)
	})

	t.Run("client name matches", func(t *testing.T) {
		number, clients := ResolveQuery("acme", ids)
		assert.Empty(t, number)
		assert.Equal(t, ids, clients)
	})

	t.Run("no client falls back to invoice number", func(t *testing.T) {
		number, clients := ResolveQuery("INV2024", nil)
		assert.Equal(t, "INV2024", number)
		assert.Nil(t, clients)
	})
}

func TestNormalizeFilters(t *testing.T) {
	status, err := NormalizeStatusFilter(FilterAll)
	require.NoError(t, err)
	assert.Empty(t, status)

	status, err = NormalizeStatusFilter("Paid")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, status)

	_, err = NormalizeStatusFilter("Overdue")
	assert.Error(t, err)

	pt, err := NormalizePaymentTypeFilter("")
	require.NoError(t, err)
	assert.Empty(t, pt)

	pt, err = NormalizePaymentTypeFilter("Full Payment")
	require.NoError(t, err)
	assert.Equal(t, PaymentTypeFull, pt)

	_, err = NormalizePaymentTypeFilter("Partial")
	assert.Error(t, err)
}

func TestSearchCriteria_Offset(t *testing.T) {
	assert.Equal(t, 0, SearchCriteria{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, SearchCriteria{Page: 3, PageSize: 10}.Offset())
}

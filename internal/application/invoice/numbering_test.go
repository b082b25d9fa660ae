package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestNumberer(repo *MockInvoiceRepository, now time.Time) *Numberer {
	return NewNumberer(repo,
		WithNumbererClock(func() time.Time { return now }),
		WithNumbererRandom(func(int) int { return 7 }))
}

func TestNumberer_Generate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		recent  []string
		err     error
		want    string
		outcome shared.Outcome
	}{
		{name: "first of the month", recent: nil, want: "INV2026030001", outcome: shared.OutcomeIdeal},
		{name: "continues the month", recent: []string{"INV2026030012", "INV2026030009"}, want: "INV2026030013", outcome: shared.OutcomeIdeal},
		{name: "ignores other months", recent: []string{"INV2026020450"}, want: "INV2026030001", outcome: shared.OutcomeIdeal},
		{name: "exhausted month falls back", recent: []string{"INV2026039999"}, want: "INV20260314007", outcome: shared.OutcomeDegraded},
		{name: "store error falls back", err: errors.New("boom"), want: "INV20260314007", outcome: shared.OutcomeDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockInvoiceRepository)
			repo.On("RecentNumbers", mock.Anything, testUserID, invoice.RecentNumbersWindow).Return(tt.recent, tt.err)

			got := newTestNumberer(repo, fixedNow).Generate(ctx, testUserID)

			assert.Equal(t, tt.want, got.Number)
			assert.Equal(t, tt.outcome, got.Outcome)
			if tt.outcome == shared.OutcomeDegraded {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}

	t.Run("no session falls back without reading the store", func(t *testing.T) {
		repo := new(MockInvoiceRepository)

		got := newTestNumberer(repo, fixedNow).Generate(ctx, uuid.Nil)

		assert.Equal(t, "INV20260314007", got.Number)
		assert.Equal(t, shared.OutcomeDegraded, got.Outcome)
		repo.AssertNotCalled(t, "RecentNumbers", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("month follows the configured timezone", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("RecentNumbers", mock.Anything, testUserID, invoice.RecentNumbersWindow).Return([]string{}, nil)
		kolkata, err := time.LoadLocation("Asia/Kolkata")
		require.NoError(t, err)
		lateUTC := time.Date(2026, time.March, 31, 20, 0, 0, 0, time.UTC)

		n := NewNumberer(repo,
			WithNumbererClock(func() time.Time { return lateUTC }),
			WithNumbererLocation(kolkata))

		assert.Equal(t, "INV2026040001", n.Generate(ctx, testUserID).Number)
	})
}

func TestNumberer_IsUnique(t *testing.T) {
	ctx := context.Background()
	repo := new(MockInvoiceRepository)
	repo.On("NumberExists", mock.Anything, testUserID, "INV2026030001", (*uuid.UUID)(nil)).Return(true, nil)
	repo.On("NumberExists", mock.Anything, testUserID, "INV2026030002", (*uuid.UUID)(nil)).Return(false, nil)
	n := newTestNumberer(repo, fixedNow)

	unique, err := n.IsUnique(ctx, testUserID, "INV2026030001", nil)
	require.NoError(t, err)
	assert.False(t, unique)

	unique, err = n.IsUnique(ctx, testUserID, "INV2026030002", nil)
	require.NoError(t, err)
	assert.True(t, unique)

	_, err = n.IsUnique(ctx, uuid.Nil, "INV2026030002", nil)
	assert.True(t, errors.Is(err, shared.ErrNoSession))
}

func TestNumberer_UniqueForDuplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("stops at the first free number", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("RecentNumbers", mock.Anything, testUserID, invoice.RecentNumbersWindow).Return([]string{"INV2026030002"}, nil)
		repo.On("NumberExists", mock.Anything, testUserID, "INV2026030003", (*uuid.UUID)(nil)).Return(false, nil)

		got := newTestNumberer(repo, fixedNow).UniqueForDuplicate(ctx, testUserID)

		assert.Equal(t, "INV2026030003", got.Number)
		assert.Equal(t, shared.OutcomeIdeal, got.Outcome)
		repo.AssertNumberOfCalls(t, "NumberExists", 1)
	})

	t.Run("store errors degrade instead of failing", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		repo.On("RecentNumbers", mock.Anything, testUserID, invoice.RecentNumbersWindow).Return([]string{}, nil)
		repo.On("NumberExists", mock.Anything, testUserID, "INV2026030001", (*uuid.UUID)(nil)).Return(false, errors.New("pool exhausted"))

		got := newTestNumberer(repo, fixedNow).UniqueForDuplicate(ctx, testUserID)

		assert.Equal(t, "INV2026030001", got.Number)
		assert.Equal(t, shared.OutcomeDegraded, got.Outcome)
		assert.Contains(t, got.Reason, "pool exhausted")
		repo.AssertNumberOfCalls(t, "NumberExists", invoice.DuplicateNumberAttempts)
	})
}

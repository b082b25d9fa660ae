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

func pageOf(invoices ...*invoice.Invoice) *invoice.SearchPage {
	page := &invoice.SearchPage{Count: int64(len(invoices))}
	for _, inv := range invoices {
		page.Invoices = append(page.Invoices, *inv)
	}
	return page
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("joined query answers", func(t *testing.T) {
		d := newTestDeps(t)
		d.invoices.On("SearchJoined", mock.Anything, mock.Anything).Return(pageOf(storedInvoice(), storedInvoice()), nil)

		resp, err := d.service.Search(ctx, testUserID, SearchRequest{})

		require.NoError(t, err)
		assert.Equal(t, shared.OutcomeIdeal, resp.Outcome)
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, 1, resp.CurrentPage)
		assert.Equal(t, shared.DefaultPageSize, resp.PageSize)
		assert.Equal(t, 1, resp.TotalPages)
		d.invoices.AssertNotCalled(t, "SearchSeparate", mock.Anything, mock.Anything)
	})

	t.Run("falls back to separate queries", func(t *testing.T) {
		d := newTestDeps(t)
		d.invoices.On("SearchJoined", mock.Anything, mock.Anything).Return(nil, errors.New("could not find relationship"))
		d.invoices.On("SearchSeparate", mock.Anything, mock.Anything).Return(pageOf(storedInvoice()), nil)

		resp, err := d.service.Search(ctx, testUserID, SearchRequest{})

		require.NoError(t, err)
		assert.Equal(t, shared.OutcomeDegraded, resp.Outcome)
		assert.Contains(t, resp.Reason, "could not find relationship")
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, shared.OutcomeDegraded, d.metrics.outcomes[OperationSearch])
		assert.Equal(t, 1, d.logs.FilterMessage("Joined invoice search failed, using separate queries").Len())
	})

	t.Run("fails when both strategies fail", func(t *testing.T) {
		d := newTestDeps(t)
		d.invoices.On("SearchJoined", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
		d.invoices.On("SearchSeparate", mock.Anything, mock.Anything).Return(nil, errors.New("still down"))

		_, err := d.service.Search(ctx, testUserID, SearchRequest{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "still down")
		assert.Equal(t, shared.OutcomeFailed, d.metrics.outcomes[OperationSearch])
	})

	t.Run("name query resolves to client ids", func(t *testing.T) {
		d := newTestDeps(t)
		clientID := uuid.New()
		d.invoices.On("MatchClientIDs", mock.Anything, testUserID, "globex").Return([]uuid.UUID{clientID}, nil)
		d.invoices.On("SearchJoined", mock.Anything, mock.MatchedBy(func(c invoice.SearchCriteria) bool {
			return c.NumberContains == "" && len(c.ClientIDs) == 1 && c.ClientIDs[0] == clientID
		})).Return(pageOf(), nil)

		_, err := d.service.Search(ctx, testUserID, SearchRequest{Query: " globex "})

		require.NoError(t, err)
		d.invoices.AssertExpectations(t)
	})

	t.Run("numeric query skips the client lookup", func(t *testing.T) {
		d := newTestDeps(t)
		d.invoices.On("SearchJoined", mock.Anything, mock.MatchedBy(func(c invoice.SearchCriteria) bool {
			return c.NumberContains == "0042" && c.ClientIDs == nil
		})).Return(pageOf(), nil)

		_, err := d.service.Search(ctx, testUserID, SearchRequest{Query: "0042"})

		require.NoError(t, err)
		d.invoices.AssertNotCalled(t, "MatchClientIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed client lookup degrades to number match", func(t *testing.T) {
		d := newTestDeps(t)
		d.invoices.On("MatchClientIDs", mock.Anything, testUserID, "acme").Return(nil, errors.New("clients unavailable"))
		d.invoices.On("SearchJoined", mock.Anything, mock.MatchedBy(func(c invoice.SearchCriteria) bool {
			return c.NumberContains == "acme"
		})).Return(pageOf(), nil)

		resp, err := d.service.Search(ctx, testUserID, SearchRequest{Query: "acme"})

		require.NoError(t, err)
		assert.Equal(t, shared.OutcomeDegraded, resp.Outcome)
		assert.Contains(t, resp.Reason, "clients unavailable")
	})

	t.Run("filters and paging are resolved", func(t *testing.T) {
		d := newTestDeps(t)
		start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
		d.invoices.On("SearchJoined", mock.Anything, mock.MatchedBy(func(c invoice.SearchCriteria) bool {
			return c.Page == 3 && c.PageSize == 25 &&
				c.Filters.Status == invoice.StatusPaid &&
				c.Filters.PaymentType == "" &&
				c.Filters.StartDate != nil && c.Filters.StartDate.Equal(start) &&
				c.Filters.EndDate == nil
		})).Return(&invoice.SearchPage{Count: 51}, nil)

		resp, err := d.service.Search(ctx, testUserID, SearchRequest{
			Page: 3, PageSize: 25, Status: "Paid", PaymentType: "All", StartDate: "2026-01-01",
		})

		require.NoError(t, err)
		assert.Equal(t, 3, resp.TotalPages)
		assert.Empty(t, resp.Data)
	})

	t.Run("rejects an inverted date range", func(t *testing.T) {
		d := newTestDeps(t)

		_, err := d.service.Search(ctx, testUserID, SearchRequest{StartDate: "2026-03-10", EndDate: "2026-03-01"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DATE_RANGE", domainErr.Code)
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		d := newTestDeps(t)

		_, err := d.service.Search(ctx, testUserID, SearchRequest{Status: "Overdue"})

		assert.Error(t, err)
		d.invoices.AssertNotCalled(t, "SearchJoined", mock.Anything, mock.Anything)
	})

	t.Run("requires a session", func(t *testing.T) {
		d := newTestDeps(t)

		_, err := d.service.Search(ctx, uuid.Nil, SearchRequest{})

		assert.True(t, errors.Is(err, shared.ErrNoSession))
	})
}

package invoice

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/shared"
)

// SearchFilters are the optional conjunctive filters of an invoice search
type SearchFilters struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Status      Status
	PaymentType PaymentType
}

// SearchCriteria is a fully resolved invoice query for one user and page.
// At most one of NumberContains and ClientIDs is set.
type SearchCriteria struct {
	UserID         uuid.UUID
	NumberContains string
	ClientIDs      []uuid.UUID
	Filters        SearchFilters
	Page           int
	PageSize       int
}

// Offset returns the row offset of the requested page
func (c SearchCriteria) Offset() int {
	return shared.Offset(c.Page, c.PageSize)
}

// SearchPage is one page of invoices plus the total match count
type SearchPage struct {
	Invoices []Invoice
	Count    int64
}

// IsNumericQuery reports whether a search query should be matched against
// invoice numbers only
func IsNumericQuery(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}
	f, err := strconv.ParseFloat(query, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ResolveQuery turns a free-text query and the ids of clients whose name
// matched it into criteria. A numeric query matches invoice numbers; otherwise
// matching clients win and an unmatched name falls back to the invoice number.
func ResolveQuery(query string, matchedClientIDs []uuid.UUID) (numberContains string, clientIDs []uuid.UUID) {
	query = strings.TrimSpace(query)
	switch {
	case query == "":
		return "", nil
	case IsNumericQuery(query):
		return query, nil
	case len(matchedClientIDs) > 0:
		return "", matchedClientIDs
	default:
		return query, nil
	}
}

// NormalizeStatusFilter maps the "All" sentinel and blanks to no filter
func NormalizeStatusFilter(value string) (Status, error) {
	if value == "" || value == FilterAll {
		return "", nil
	}
	status := Status(value)
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", "Status filter must be Paid, Unpaid or All")
	}
	return status, nil
}

// NormalizePaymentTypeFilter maps the "All" sentinel and blanks to no filter
func NormalizePaymentTypeFilter(value string) (PaymentType, error) {
	if value == "" || value == FilterAll {
		return "", nil
	}
	pt := PaymentType(value)
	if !pt.IsValid() {
		return "", shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type filter must be Advance, Full Payment or All")
	}
	return pt, nil
}

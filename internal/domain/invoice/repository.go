package invoice

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository persists invoices together with their client and items.
// Every read and write is scoped to the owning user.
type InvoiceRepository interface {
	// FindByID loads one invoice with client and items
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)

	// Create writes client, invoice and items
	Create(ctx context.Context, inv *Invoice) error

	// Update rewrites client and invoice, upserts items and drops removed items
	Update(ctx context.Context, inv *Invoice) error

	// Delete removes items, the invoice and its client
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// UpdateStatus changes only the status column
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status Status) error

	// UpdateRemark changes only the remark column
	UpdateRemark(ctx context.Context, userID, id uuid.UUID, remark string) error

	// RecentNumbers returns up to limit invoice numbers, newest first
	RecentNumbers(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)

	// NumberExists reports whether another invoice of the user carries number
	NumberExists(ctx context.Context, userID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error)

	// MatchClientIDs returns ids of the user's clients whose name contains
	// the query, case-insensitively
	MatchClientIDs(ctx context.Context, userID uuid.UUID, query string) ([]uuid.UUID, error)

	// SearchJoined answers a search with one joined query
	SearchJoined(ctx context.Context, criteria SearchCriteria) (*SearchPage, error)

	// SearchSeparate answers a search with separate invoice, client and item
	// queries joined in memory
	SearchSeparate(ctx context.Context, criteria SearchCriteria) (*SearchPage, error)
}

// PaymentInfoRepository stores the per-user payment configuration
type PaymentInfoRepository interface {
	// Find returns the stored payment info or shared.ErrNotFound
	Find(ctx context.Context, userID uuid.UUID) (*PaymentInfo, error)

	// Save inserts or replaces the user's payment info
	Save(ctx context.Context, userID uuid.UUID, info PaymentInfo) error
}

// PaymentInfoCache caches payment info per user.
// Get returns nil, nil on a cache miss.
type PaymentInfoCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*PaymentInfo, error)
	Set(ctx context.Context, userID uuid.UUID, info PaymentInfo) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

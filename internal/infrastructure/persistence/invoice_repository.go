package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateRow is returned when a write collides with an existing primary key
var ErrDuplicateRow = shared.ErrAlreadyExists.WithMessage("Invoice already exists")

var invoiceUpdateColumns = []string{
	"invoice_number", "client_id", "date", "due_date", "status", "payment_type",
	"discount_type", "discount_value", "tax_mode", "tax_rate",
	"subtotal", "discount_amount", "tax_amount", "total", "remark",
	"account_name", "account_number", "ifsc", "updated_at",
}

// GormInvoiceRepository implements invoice.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID loads one invoice of the user with its client and items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Joins("Client").
		Preload("Items", orderItems).
		Where("invoices.user_id = ? AND invoices.id = ?", userID, id).
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toDomainInvoice(&model, nil, nil), nil
}

// Create writes client, invoice and items in one transaction
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	m, client, items := toInvoiceModel(inv)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create invoice items: %w", err)
			}
		}
		return nil
	})
	return translateError(err)
}

// Update rewrites the client and invoice rows, upserts items and removes
// items no longer on the invoice. The stored client id is kept.
func (r *GormInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.InvoiceModel
		if err := tx.Select("id", "client_id", "created_at").
			Where("user_id = ? AND id = ?", inv.UserID, inv.ID).
			First(&current).Error; err != nil {
			return err
		}

		inv.Client.ID = current.ClientID
		inv.CreatedAt = current.CreatedAt
		m, client, items := toInvoiceModel(inv)

		if err := tx.Model(&models.ClientModel{}).
			Where("id = ? AND user_id = ?", client.ID, inv.UserID).
			Updates(map[string]any{
				"name":       client.Name,
				"address":    client.Address,
				"gstin":      client.GSTIN,
				"updated_at": inv.UpdatedAt,
			}).Error; err != nil {
			return fmt.Errorf("update client: %w", err)
		}

		if err := tx.Model(m).
			Where("user_id = ?", inv.UserID).
			Select(invoiceUpdateColumns).
			Updates(m).Error; err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		stale := tx.Where("invoice_id = ?", inv.ID)
		if ids := inv.ItemIDs(); len(ids) > 0 {
			stale = stale.Where("id NOT IN ?", ids)
		}
		if err := stale.Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return fmt.Errorf("delete removed items: %w", err)
		}

		if len(items) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"position", "description", "quantity", "unit_price", "total", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: "invoice_items", Name: "invoice_id"}, Value: inv.ID},
			}},
		}).Create(&items).Error; err != nil {
			return fmt.Errorf("upsert invoice items: %w", err)
		}
		return nil
	})
	return translateError(err)
}

// Delete removes items, then the invoice, then its client unless another
// invoice still points at it
func (r *GormInvoiceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.InvoiceModel
		if err := tx.Select("id", "client_id").
			Where("user_id = ? AND id = ?", userID, id).
			First(&current).Error; err != nil {
			return err
		}

		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return fmt.Errorf("delete invoice items: %w", err)
		}
		if err := tx.Where("user_id = ? AND id = ?", userID, id).Delete(&models.InvoiceModel{}).Error; err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		if err := tx.
			Where("id = ? AND user_id = ?", current.ClientID, userID).
			Where("NOT EXISTS (SELECT 1 FROM invoices WHERE invoices.client_id = ?)", current.ClientID).
			Delete(&models.ClientModel{}).Error; err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		return nil
	})
	return translateError(err)
}

// UpdateStatus changes only the status of an invoice
func (r *GormInvoiceRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status invoice.Status) error {
	return r.updateColumns(ctx, userID, id, map[string]any{"status": status.String()})
}

// UpdateRemark changes only the remark of an invoice
func (r *GormInvoiceRepository) UpdateRemark(ctx context.Context, userID, id uuid.UUID, remark string) error {
	return r.updateColumns(ctx, userID, id, map[string]any{"remark": remark})
}

func (r *GormInvoiceRepository) updateColumns(ctx context.Context, userID, id uuid.UUID, values map[string]any) error {
	values["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(values)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RecentNumbers returns up to limit invoice numbers, most recently created first
func (r *GormInvoiceRepository) RecentNumbers(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(OwnerScope("", userID)).
		Order("created_at DESC").
		Limit(limit).
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// NumberExists reports whether another invoice of the user carries number
func (r *GormInvoiceRepository) NumberExists(ctx context.Context, userID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("user_id = ? AND invoice_number = ?", userID, strings.TrimSpace(number))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MatchClientIDs returns ids of the user's clients whose name contains query
func (r *GormInvoiceRepository) MatchClientIDs(ctx context.Context, userID uuid.UUID, query string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Scopes(OwnerScope("", userID)).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(query)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SearchJoined answers a search with a count and one joined page query
func (r *GormInvoiceRepository) SearchJoined(ctx context.Context, criteria invoice.SearchCriteria) (*invoice.SearchPage, error) {
	count, err := r.count(ctx, criteria)
	if err != nil {
		return nil, err
	}

	var rows []models.InvoiceModel
	err = r.db.WithContext(ctx).
		Joins("Client").
		Preload("Items", orderItems).
		Scopes(searchScope(criteria)).
		Order("invoices.created_at DESC").
		Offset(criteria.Offset()).
		Limit(criteria.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("joined invoice search: %w", err)
	}

	page := &invoice.SearchPage{Count: count, Invoices: make([]invoice.Invoice, len(rows))}
	for i := range rows {
		page.Invoices[i] = *toDomainInvoice(&rows[i], nil, nil)
	}
	return page, nil
}

// SearchSeparate answers a search with a page of bare invoice rows, then loads
// their clients and items concurrently and stitches them together.
// Only the count and page queries can fail the search.
func (r *GormInvoiceRepository) SearchSeparate(ctx context.Context, criteria invoice.SearchCriteria) (*invoice.SearchPage, error) {
	count, err := r.count(ctx, criteria)
	if err != nil {
		return nil, err
	}

	var rows []models.InvoiceModel
	err = r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(searchScope(criteria)).
		Order("invoices.created_at DESC").
		Offset(criteria.Offset()).
		Limit(criteria.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("invoice page query: %w", err)
	}
	if len(rows) == 0 {
		return &invoice.SearchPage{Count: count, Invoices: []invoice.Invoice{}}, nil
	}

	invoiceIDs := lo.Map(rows, func(m models.InvoiceModel, _ int) uuid.UUID { return m.ID })
	clientIDs := lo.Uniq(lo.Map(rows, func(m models.InvoiceModel, _ int) uuid.UUID { return m.ClientID }))

	var (
		clients []models.ClientModel
		items   []models.InvoiceItemModel
	)
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND id IN ?", criteria.UserID, clientIDs).
			Find(&clients).Error
	})
	p.Go(func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("invoice_id IN ?", invoiceIDs).
			Order("position ASC").
			Find(&items).Error
	})
	if err := p.Wait(); err != nil {
		// relations that failed to load stay empty
		logger.FromContext(ctx).Warn("Loading invoice relations failed", zap.Error(err))
	}

	clientByID := lo.KeyBy(clients, func(c models.ClientModel) uuid.UUID { return c.ID })
	itemsByInvoice := lo.GroupBy(items, func(it models.InvoiceItemModel) uuid.UUID { return it.InvoiceID })

	page := &invoice.SearchPage{Count: count, Invoices: make([]invoice.Invoice, len(rows))}
	for i := range rows {
		var client *models.ClientModel
		if c, ok := clientByID[rows[i].ClientID]; ok {
			client = &c
		}
		invItems := itemsByInvoice[rows[i].ID]
		if invItems == nil {
			invItems = []models.InvoiceItemModel{}
		}
		page.Invoices[i] = *toDomainInvoice(&rows[i], client, invItems)
	}
	return page, nil
}

func (r *GormInvoiceRepository) count(ctx context.Context, criteria invoice.SearchCriteria) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(searchScope(criteria)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}

// searchScope applies the owner scope, the resolved query and the filters.
// Columns are qualified so the scope also works when clients are joined.
func searchScope(c invoice.SearchCriteria) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = OwnerScope("invoices", c.UserID)(db)

		switch {
		case len(c.ClientIDs) > 0:
			db = db.Where("invoices.client_id IN ?", c.ClientIDs)
		case c.NumberContains != "":
			db = db.Where("LOWER(invoices.invoice_number) LIKE ? ESCAPE '\\'", containsPattern(c.NumberContains))
		}

		f := c.Filters
		if f.StartDate != nil {
			db = db.Where("invoices.date >= ?", invoice.DateOnly(*f.StartDate))
		}
		if f.EndDate != nil {
			db = db.Where("invoices.date <= ?", invoice.DateOnly(*f.EndDate))
		}
		if f.Status != "" {
			db = db.Where("invoices.status = ?", f.Status.String())
		}
		if f.PaymentType != "" {
			db = db.Where("invoices.payment_type = ?", f.PaymentType.String())
		}
		return db
	}
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s anywhere
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// translateError maps driver errors onto domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateRow
	default:
		return err
	}
}

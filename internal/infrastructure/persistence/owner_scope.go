package persistence

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrOwnerRequired is returned when a query is not scoped to a user
var ErrOwnerRequired = errors.New("owner user_id is required")

// OwnerScope restricts a query to the rows of userID. table qualifies the
// column for joined queries and may be empty. A nil user fails the
// statement instead of matching every row.
func OwnerScope(table string, userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	column := "user_id"
	if table != "" {
		column = table + ".user_id"
	}
	return func(db *gorm.DB) *gorm.DB {
		if userID == uuid.Nil {
			_ = db.AddError(ErrOwnerRequired)
			return db
		}
		return db.Where(column+" = ?", userID)
	}
}

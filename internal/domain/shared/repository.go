package shared

// Page size bounds shared by list endpoints
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TotalPages returns ceil(total / pageSize), or 0 for a non-positive page size.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

// NormalizePage clamps page and page size to usable values.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Offset returns the row offset of a page.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

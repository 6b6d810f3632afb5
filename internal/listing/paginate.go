package listing

// Page is one slice of a filtered collection.
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// TotalPages is ceil(count/pageSize), never less than one.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Paginate returns the 1-based page of items, clamped to the collection's bounds.
// A page past the end yields an empty slice; pages below one are treated as one.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = len(items)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	end := page * pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{
		Items:       items[start:end:end],
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  len(items),
		TotalPages:  TotalPages(len(items), pageSize),
	}
}

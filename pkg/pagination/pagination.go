// Package pagination does page arithmetic for zero-based page indexes.
package pagination

// TotalPages returns the number of pages needed for total items at size per
// page. It is never less than 1, so an empty result still has one page. A
// non-positive size counts everything as one page.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	pages := total / int64(size)
	if total%int64(size) > 0 {
		pages++
	}
	return int(pages)
}

// LastPage returns the highest zero-based page index.
func LastPage(total int64, size int) int {
	return max(0, TotalPages(total, size)-1)
}

// HasPrev reports whether a page exists before page.
func HasPrev(page int) bool {
	return page > 0
}

// HasNext reports whether a page exists after page.
func HasNext(page int, total int64, size int) bool {
	return page < LastPage(total, size)
}

// Offset returns the index of the first item on page.
func Offset(page, size int) int {
	if page <= 0 || size <= 0 {
		return 0
	}
	return page * size
}

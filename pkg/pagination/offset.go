package pagination

// OffsetForPage converts a 1-based page number into a list offset.
func OffsetForPage(pageNo, pageSize int) int {
	return (pageNo - 1) * pageSize
}

// PageForOffset is the inverse of OffsetForPage.
func PageForOffset(offset, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return offset/pageSize + 1
}

// Package pagination computes page windows for offset-paginated catalog
// listings and fetches several pages of a listing in parallel.
//
// The catalog API pages with limit/offset and reports no total count, so
// callers choose the number of pages to present. The window calculator
// turns (last page, current page) into the buttons of a compact
// pagination bar:
//
//	pagination.ComputeWindow(pagination.WindowState{LastPage: 10, CurrentPage: 5})
//	// 1 … 4 5 6 … 10
//
// A Control wraps the window with the interaction rules of the bar.
// Clicking an ellipsis expands it into a run of MaxVisiblePages pages;
// further clicks slide the run by half a window until it runs out of pages
// and collapses. Any page navigation collapses the bar again.
//
// The batch fetcher:
//   - Converts page numbers into offsets (OffsetForPage)
//   - Fetches pages with bounded concurrency
//   - Stops the result at the first empty page
//   - Returns partial data on error
package pagination

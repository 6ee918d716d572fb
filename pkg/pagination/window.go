package pagination

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxVisiblePages is the number of page buttons shown before the bar
// collapses into ellipses.
const MaxVisiblePages = 6

const halfVisible = MaxVisiblePages / 2

// ErrInvalidWindow is returned by Validate for out-of-range window inputs.
var ErrInvalidWindow = errors.New("invalid pagination window")

// ItemKind tags a PageItem.
type ItemKind int

const (
	// KindPage is a numbered page button.
	KindPage ItemKind = iota

	// KindLeftEllipsis collapses pages before the visible window.
	KindLeftEllipsis

	// KindRightEllipsis collapses pages after the visible window.
	KindRightEllipsis
)

// PageItem is one entry of a rendered pagination bar.
type PageItem struct {
	Kind ItemKind
	Page int // set only for KindPage
}

// Page returns a numbered page item.
func Page(n int) PageItem { return PageItem{Kind: KindPage, Page: n} }

var (
	// LeftEllipsis is the marker for collapsed pages on the left.
	LeftEllipsis = PageItem{Kind: KindLeftEllipsis}

	// RightEllipsis is the marker for collapsed pages on the right.
	RightEllipsis = PageItem{Kind: KindRightEllipsis}
)

// IsEllipsis reports whether the item is either ellipsis marker.
func (p PageItem) IsEllipsis() bool {
	return p.Kind == KindLeftEllipsis || p.Kind == KindRightEllipsis
}

// String renders the item the way a text pagination bar shows it.
func (p PageItem) String() string {
	if p.IsEllipsis() {
		return "…"
	}
	return strconv.Itoa(p.Page)
}

// WindowState is the ellipsis memory of one pagination bar.
// LeftExpanded and RightExpanded are never both true.
type WindowState struct {
	LastPage      int
	CurrentPage   int
	LeftExpanded  bool
	RightExpanded bool
	LeftOffset    int
	RightOffset   int
}

// Validate checks the caller-side preconditions of ComputeWindow.
// ComputeWindow itself does not clamp.
func (s WindowState) Validate() error {
	switch {
	case s.LastPage < 0:
		return fmt.Errorf("%w: last page %d is negative", ErrInvalidWindow, s.LastPage)
	case s.LastPage > 0 && (s.CurrentPage < 1 || s.CurrentPage > s.LastPage):
		return fmt.Errorf("%w: current page %d outside [1, %d]", ErrInvalidWindow, s.CurrentPage, s.LastPage)
	case s.LeftExpanded && s.RightExpanded:
		return fmt.Errorf("%w: both directions expanded", ErrInvalidWindow)
	case s.LeftOffset < 0 || s.RightOffset < 0:
		return fmt.Errorf("%w: negative offset", ErrInvalidWindow)
	}
	return nil
}

// maxOffset is the last offset an expanded window may shift to.
func (s WindowState) maxOffset() int {
	return (s.LastPage - 1) / halfVisible
}

// ComputeWindow returns the ordered page items to render for state.
func ComputeWindow(s WindowState) []PageItem {
	if s.LastPage <= MaxVisiblePages {
		pages := make([]PageItem, 0, max(s.LastPage, 0))
		for i := 1; i <= s.LastPage; i++ {
			pages = append(pages, Page(i))
		}
		return pages
	}

	if s.LeftExpanded {
		start := 1 + s.LeftOffset*halfVisible
		end := min(start+MaxVisiblePages-1, s.LastPage)
		return span(start, end, s.LastPage)
	}

	if s.RightExpanded {
		end := s.LastPage - s.RightOffset*halfVisible
		start := max(end-MaxVisiblePages+1, 1)
		return span(start, end, s.LastPage)
	}

	last := s.LastPage
	pages := make([]PageItem, 0, MaxVisiblePages+1)
	switch {
	case s.CurrentPage <= 3:
		pages = append(pages, Page(1), Page(2), Page(3))
		if last > MaxVisiblePages {
			pages = append(pages, RightEllipsis)
		}
		pages = append(pages, Page(last-2), Page(last-1), Page(last))
	case s.CurrentPage >= last-2:
		pages = append(pages, Page(1), Page(2), Page(3))
		if last > MaxVisiblePages {
			pages = append(pages, LeftEllipsis)
		}
		pages = append(pages, Page(last-2), Page(last-1), Page(last))
	default:
		c := s.CurrentPage
		pages = append(pages,
			Page(1), LeftEllipsis,
			Page(c-1), Page(c), Page(c+1),
			RightEllipsis, Page(last),
		)
	}
	return pages
}

// span emits start..end wrapped in whichever ellipses the bounds need.
func span(start, end, last int) []PageItem {
	pages := make([]PageItem, 0, end-start+3)
	if start > 1 {
		pages = append(pages, LeftEllipsis)
	}
	for i := start; i <= end; i++ {
		pages = append(pages, Page(i))
	}
	if end < last {
		pages = append(pages, RightEllipsis)
	}
	return pages
}

package pagination

// Control drives one pagination bar. It owns its WindowState exclusively
// and reports page selections through the onPageChange callback.
// A Control is not safe for concurrent use; it lives on the UI loop.
type Control struct {
	state        WindowState
	onPageChange func(page int)
}

// NewControl creates a control for lastPage pages positioned at currentPage.
// onPageChange may be nil.
func NewControl(lastPage, currentPage int, onPageChange func(page int)) *Control {
	return &Control{
		state: WindowState{
			LastPage:    lastPage,
			CurrentPage: currentPage,
		},
		onPageChange: onPageChange,
	}
}

// State returns a copy of the current window state.
func (c *Control) State() WindowState {
	return c.state
}

// CurrentPage returns the page currently displayed.
func (c *Control) CurrentPage() int {
	return c.state.CurrentPage
}

// LastPage returns the total number of pages.
func (c *Control) LastPage() int {
	return c.state.LastPage
}

// Hidden reports whether the bar renders nothing.
func (c *Control) Hidden() bool {
	return c.state.LastPage <= 1
}

// Items returns the page items to render. It is empty when Hidden.
func (c *Control) Items() []PageItem {
	if c.Hidden() {
		return nil
	}
	return ComputeWindow(c.state)
}

// SetLastPage updates the page count, e.g. when filters shrink the result
// set. Expansion state is reset.
func (c *Control) SetLastPage(lastPage int) {
	c.state.LastPage = lastPage
	c.reset()
}

// SetCurrentPage records an externally triggered page change. Expansion
// state is reset even if the page is unchanged.
func (c *Control) SetCurrentPage(page int) {
	c.state.CurrentPage = page
	c.reset()
}

// SelectPage navigates to page and notifies the listener.
func (c *Control) SelectPage(page int) {
	c.SetCurrentPage(page)
	if c.onPageChange != nil {
		c.onPageChange(page)
	}
}

// Previous moves one page back. No-op on the first page.
func (c *Control) Previous() {
	if c.state.CurrentPage > 1 {
		c.SelectPage(c.state.CurrentPage - 1)
	}
}

// Next moves one page forward. No-op on the last page.
func (c *Control) Next() {
	if c.state.CurrentPage < c.state.LastPage {
		c.SelectPage(c.state.CurrentPage + 1)
	}
}

// HasPrevious reports whether Previous would navigate.
func (c *Control) HasPrevious() bool {
	return c.state.CurrentPage > 1
}

// HasNext reports whether Next would navigate.
func (c *Control) HasNext() bool {
	return c.state.CurrentPage < c.state.LastPage
}

// ClickLeftEllipsis expands the window leftwards, then keeps shifting it by
// half a window per click until it runs out of pages and collapses.
func (c *Control) ClickLeftEllipsis() {
	if !c.state.LeftExpanded {
		c.state.LeftExpanded = true
		c.state.RightExpanded = false
		c.state.LeftOffset = 0
		return
	}

	next := c.state.LeftOffset + 1
	if next > c.state.maxOffset() {
		c.state.LeftExpanded = false
		c.state.LeftOffset = 0
		return
	}
	c.state.LeftOffset = next
}

// ClickRightEllipsis mirrors ClickLeftEllipsis from the end of the range.
func (c *Control) ClickRightEllipsis() {
	if !c.state.RightExpanded {
		c.state.RightExpanded = true
		c.state.LeftExpanded = false
		c.state.RightOffset = 0
		return
	}

	next := c.state.RightOffset + 1
	if next > c.state.maxOffset() {
		c.state.RightExpanded = false
		c.state.RightOffset = 0
		return
	}
	c.state.RightOffset = next
}

// Activate performs the action bound to item: ellipses expand, pages
// navigate.
func (c *Control) Activate(item PageItem) {
	switch item.Kind {
	case KindLeftEllipsis:
		c.ClickLeftEllipsis()
	case KindRightEllipsis:
		c.ClickRightEllipsis()
	default:
		c.SelectPage(item.Page)
	}
}

func (c *Control) reset() {
	c.state.LeftExpanded = false
	c.state.RightExpanded = false
	c.state.LeftOffset = 0
	c.state.RightOffset = 0
}

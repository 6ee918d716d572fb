package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
)

const (
	msgLoading = "Loading..."
	msgError   = "Error loading data."
	msgNoData  = "No data found!"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.view == viewDetail {
		return m.renderDetail()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(m.renderFilterSummary())
	b.WriteString("\n\n")

	if m.panel != panelNone {
		b.WriteString(m.renderPanel())
		b.WriteString("\n\n")
		b.WriteString(m.renderHelp(m.keys.panelHelp()))
		return b.String()
	}

	b.WriteString(m.renderListing())
	b.WriteString("\n")
	b.WriteString(m.renderPager())
	b.WriteString("\n\n")
	b.WriteString(m.renderHelp(m.keys.listHelp()))
	return b.String()
}

func (m Model) renderHeader() string {
	header := m.styles.Title.Render(m.heading)
	state := m.products.State()
	if state.IsFetching && !state.Loading() {
		header += " " + m.styles.Muted.Render("fetching…")
	}
	return header
}

func (m Model) renderFilterSummary() string {
	parts := []string{"Price: " + m.price.Summary()}
	if !m.scoped {
		parts = append(parts, "Categories: "+m.category.Summary())
	}
	return m.styles.Muted.Render(strings.Join(parts, "   "))
}

func (m Model) renderListing() string {
	state := m.products.State()
	switch {
	case state.Loading():
		return m.styles.Muted.Render(msgLoading)
	case state.IsError:
		return m.styles.Error.Render(msgError) + " " + m.styles.Muted.Render("press r to retry")
	case state.Data != nil && len(*state.Data) == 0:
		return m.styles.Error.Render(msgNoData)
	case state.Data == nil:
		return ""
	}
	return m.table.View()
}

// renderPager draws the pagination bar. It is empty for a single page.
func (m Model) renderPager() string {
	if m.pager.Hidden() {
		return ""
	}

	prev, next := m.styles.Page.Render("‹"), m.styles.Page.Render("›")
	if !m.pager.HasPrevious() {
		prev = m.styles.Muted.Render(" ‹ ")
	}
	if !m.pager.HasNext() {
		next = m.styles.Muted.Render(" › ")
	}

	parts := []string{prev}
	for _, item := range m.pager.Items() {
		switch {
		case item.IsEllipsis():
			parts = append(parts, m.styles.Ellipsis.Render(item.String()))
		case item.Page == m.pager.CurrentPage():
			parts = append(parts, m.styles.Current.Render(item.String()))
		default:
			parts = append(parts, m.styles.Page.Render(item.String()))
		}
	}
	parts = append(parts, next)
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderPanel() string {
	var (
		title   string
		labels  []string
		checked []bool
		empty   string
		search  string
	)

	switch m.panel {
	case panelPrice:
		title = "Select Price Range"
		for _, opt := range m.price.Filtered() {
			labels = append(labels, opt.Label)
			checked = append(checked, m.price.IsSelected(opt.Value))
		}
		empty, search = m.price.EmptyMessage(), m.price.SearchTerm()
	case panelCategory:
		title = "Select Categories"
		for _, opt := range m.category.Filtered() {
			labels = append(labels, opt.Label)
			checked = append(checked, m.category.IsSelected(opt.Value))
		}
		empty, search = m.category.EmptyMessage(), m.category.SearchTerm()
		if m.categories.State().Loading() {
			empty = msgLoading
		}
	}

	var b strings.Builder
	b.WriteString(m.styles.Accent.Render(title))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("filter: " + search))
	b.WriteString("\n")
	if len(labels) == 0 {
		b.WriteString(m.styles.Muted.Render(empty))
	}
	for i, label := range labels {
		box := "[ ]"
		if checked[i] {
			box = "[x]"
		}
		line := box + " " + label
		if i == m.panelCursor {
			line = m.styles.Cursor.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		if i < len(labels)-1 {
			b.WriteString("\n")
		}
	}
	return m.styles.Panel.Render(b.String())
}

func (m Model) renderDetail() string {
	return m.renderHeader() + "\n\n" + m.detailView.View() + "\n\n" + m.renderHelp(m.keys.detailHelp())
}

// refreshDetail renders the selected product into the detail viewport.
// A previous product is not shown while the next one loads.
func (m *Model) refreshDetail() {
	m.detailView.SetContent(m.detailContent(time.Now()))
}

func (m Model) detailContent(now time.Time) string {
	if m.detailSlug == "" {
		return ""
	}
	state := m.detail.State()
	data := state.Data
	switch {
	case state.IsError:
		return m.styles.Error.Render(msgNoData)
	case data == nil || data.Slug != m.detailSlug:
		return m.styles.Muted.Render(msgLoading)
	}

	p := *data
	width := max(20, m.detailView.Width)
	body := lipgloss.NewStyle().Width(width)

	lines := []string{
		m.styles.Muted.Render("Products / " + catalog.BeautifyText(p.Slug)),
		"",
		lipgloss.NewStyle().Bold(true).Render(p.Title),
	}
	if p.Category.Name != "" {
		lines = append(lines, m.styles.Chip.Render(p.Category.Name))
	}
	lines = append(lines,
		"",
		"Price: "+catalog.FormatPrice(p.Price),
		"",
		body.Render(p.Description),
		"",
		"Published "+catalog.FormatRelativeTime(p.CreationAt, now),
	)
	if len(p.Images) > 0 {
		lines = append(lines, "", m.styles.Muted.Render("Images:"))
		for _, img := range p.Images {
			lines = append(lines, "  "+catalog.ValidImageURL(img))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", m.styles.Accent.Render(h.Key), h.Desc))
	}
	return m.styles.Muted.Render(strings.Join(parts, " • "))
}

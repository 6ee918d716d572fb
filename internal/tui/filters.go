package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) openPanel(p panel) {
	m.panel = p
	m.panelCursor = 0
	switch p {
	case panelPrice:
		m.price.SetOpen(true)
	case panelCategory:
		m.category.SetOpen(true)
	}
}

func (m *Model) closePanel() {
	m.price.SetOpen(false)
	m.category.SetOpen(false)
	m.panel = panelNone
	m.panelCursor = 0
}

// handlePanelKey drives the open filter select. Printable keys edit the
// select's search term.
func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.closePanel()
	case key.Matches(msg, m.keys.Up):
		m.panelCursor = max(0, m.panelCursor-1)
	case key.Matches(msg, m.keys.Down):
		m.panelCursor = min(max(0, m.panelLen()-1), m.panelCursor+1)
	case key.Matches(msg, m.keys.Toggle):
		m.togglePanelOption()
	case key.Matches(msg, m.keys.Clear):
		m.clearPanel()
	case msg.Type == tea.KeyBackspace:
		term := []rune(m.panelSearch())
		if len(term) > 0 {
			m.setPanelSearch(string(term[:len(term)-1]))
		}
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		m.setPanelSearch(m.panelSearch() + string(msg.Runes))
	}
	return m, nil
}

func (m *Model) panelLen() int {
	switch m.panel {
	case panelPrice:
		return len(m.price.Filtered())
	case panelCategory:
		return len(m.category.Filtered())
	}
	return 0
}

func (m *Model) panelSearch() string {
	if m.panel == panelPrice {
		return m.price.SearchTerm()
	}
	return m.category.SearchTerm()
}

func (m *Model) setPanelSearch(term string) {
	if m.panel == panelPrice {
		m.price.Search(term)
	} else {
		m.category.Search(term)
	}
	m.panelCursor = 0
}

func (m *Model) togglePanelOption() {
	switch m.panel {
	case panelPrice:
		options := m.price.Filtered()
		if m.panelCursor >= len(options) {
			return
		}
		m.applyPrice(m.price.Toggle(options[m.panelCursor].Value))
		if !m.price.IsOpen() {
			m.closePanel()
		}
	case panelCategory:
		options := m.category.Filtered()
		if m.panelCursor >= len(options) {
			return
		}
		m.applyCategories(m.category.Toggle(options[m.panelCursor].Value))
	}
}

func (m *Model) clearPanel() {
	switch m.panel {
	case panelPrice:
		if m.price.Clearable {
			m.applyPrice(m.price.Clear())
		}
	case panelCategory:
		if m.category.Clearable {
			m.applyCategories(m.category.Clear())
		}
	}
}

func (m *Model) applyPrice(selected []string) {
	m.params = m.params.WithPriceRanges(selected)
	m.pager.SetCurrentPage(1)
	m.subscribeProducts()
}

func (m *Model) applyCategories(ids []int) {
	m.params = m.params.WithCategories(ids)
	m.pager.SetCurrentPage(1)
	m.subscribeProducts()
}

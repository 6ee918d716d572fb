// Package tui is the interactive product browser. All catalog data flows
// through fetch.Resource subscriptions; the Bubble Tea model only decides
// which input each resource points at and renders their state.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sternrassler/catalog-client/pkg/catalog"
	"github.com/Sternrassler/catalog-client/pkg/fetch"
	"github.com/Sternrassler/catalog-client/pkg/pagination"
	"github.com/Sternrassler/catalog-client/pkg/selection"
)

// Source issues catalog requests and names their inputs.
// *client.Client satisfies it.
type Source interface {
	fetch.Doer
	ProductsInput(params catalog.ProductListParams) fetch.Input
	ProductInput(slug string) fetch.Input
	CategoriesInput() fetch.Input
}

// Options configures the browser.
type Options struct {
	Context context.Context
	Source  Source

	// CategoryID scopes the listing to one category and hides the
	// category filter. CategorySlug names it in the header.
	CategoryID   string
	CategorySlug string

	// SearchDebounce delays applying the search box. Zero applies every
	// keystroke immediately.
	SearchDebounce time.Duration
}

type view int

const (
	viewList view = iota
	viewDetail
)

type panel int

const (
	panelNone panel = iota
	panelPrice
	panelCategory
)

// Model is the root browser state.
type Model struct {
	source   Source
	keys     keyMap
	styles   styles
	debounce time.Duration
	heading  string
	scoped   bool

	products   *fetch.Resource[[]catalog.Product]
	detail     *fetch.Resource[catalog.Product]
	categories *fetch.Resource[[]catalog.Category]

	params    catalog.ProductListParams
	pager     *pagination.Control
	table     table.Model
	search    textinput.Model
	searchSeq int

	price       *selection.Select[string]
	category    *selection.Select[int]
	panel       panel
	panelCursor int

	view       view
	detailSlug string
	detailView viewport.Model

	width  int
	height int
}

// New creates the browser model. Resources are idle until Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	search := textinput.New()
	search.Placeholder = "Search products"
	search.Prompt = "/ "
	search.CharLimit = 64

	price := selection.New(selection.Single, priceOptions())
	price.Placeholder = "Select an option"
	price.Clearable = true

	category := selection.New[int](selection.Multi, nil)
	category.Placeholder = "Select options"
	category.Clearable = true

	heading := "Product List"
	if opts.CategorySlug != "" {
		heading = catalog.BeautifyText(opts.CategorySlug)
	}

	return Model{
		source:     opts.Source,
		keys:       defaultKeyMap(),
		styles:     defaultStyles(),
		debounce:   opts.SearchDebounce,
		heading:    heading,
		scoped:     opts.CategoryID != "",
		products:   fetch.New[[]catalog.Product](opts.Source, fetch.WithContext(ctx)),
		detail:     fetch.New[catalog.Product](opts.Source, fetch.WithContext(ctx)),
		categories: fetch.New[[]catalog.Category](opts.Source, fetch.WithContext(ctx)),
		params:     catalog.NewProductListParams(opts.CategoryID),
		pager:      pagination.NewControl(catalog.DefaultLastPage, 1, nil),
		table:      newTable(),
		search:     search,
		price:      price,
		category:   category,
		detailView: viewport.New(80, 20),
	}
}

func priceOptions() []selection.Option[string] {
	options := make([]selection.Option[string], len(catalog.PriceRanges))
	for i, r := range catalog.PriceRanges {
		options[i] = selection.Option[string]{Label: r, Value: r}
	}
	return options
}

func newTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 40},
			{Title: "Price", Width: 10},
			{Title: "Category", Width: 16},
			{Title: "Published At", Width: 22},
		}),
		table.WithFocused(true),
		table.WithHeight(catalog.PageSize+1),
	)
	return t
}

// Init subscribes the listing and the category list.
func (m Model) Init() tea.Cmd {
	m.products.Subscribe(m.source.ProductsInput(m.params))
	if !m.scoped {
		m.categories.Subscribe(m.source.CategoriesInput())
	}
	return tea.Batch(
		listen(productsResource, m.products.Changes()),
		listen(detailResource, m.detail.Changes()),
		listen(categoriesResource, m.categories.Changes()),
	)
}

// Close cancels outstanding requests.
func (m Model) Close() {
	m.products.Close()
	m.detail.Close()
	m.categories.Close()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(3, min(catalog.PageSize+1, msg.Height-10)))
		m.detailView.Width = max(20, msg.Width-2)
		m.detailView.Height = max(5, msg.Height-4)
		m.refreshDetail()
		return m, nil

	case changedMsg:
		return m.handleChange(msg)

	case searchMsg:
		if msg.seq == m.searchSeq {
			m.applySearch(msg.term)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleChange(msg changedMsg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case productsResource:
		m.refreshRows()
		return m, listen(productsResource, m.products.Changes())
	case detailResource:
		m.refreshDetail()
		return m, listen(detailResource, m.detail.Changes())
	case categoriesResource:
		if data := m.categories.State().Data; data != nil {
			options := make([]selection.Option[int], len(*data))
			for i, c := range *data {
				options[i] = selection.Option[int]{Label: c.Name, Value: c.ID}
			}
			m.category.Options = options
		}
		return m, listen(categoriesResource, m.categories.Changes())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.view == viewDetail:
		return m.handleDetailKey(msg)
	case m.panel != panelNone:
		return m.handlePanelKey(msg)
	case m.search.Focused():
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Reload):
		m.products.Reload()
	case key.Matches(msg, m.keys.PrevPage):
		m.navigate(m.pager.Previous)
	case key.Matches(msg, m.keys.NextPage):
		m.navigate(m.pager.Next)
	case key.Matches(msg, m.keys.LeftEllipsis):
		m.pager.ClickLeftEllipsis()
	case key.Matches(msg, m.keys.RightEllipsis):
		m.pager.ClickRightEllipsis()
	case key.Matches(msg, m.keys.PriceFilter):
		m.openPanel(panelPrice)
	case key.Matches(msg, m.keys.CategoryPick):
		if !m.scoped {
			m.openPanel(panelCategory)
		}
	case key.Matches(msg, m.keys.Open):
		m.openDetail()
	default:
		if page, ok := digit(msg); ok && m.visiblePage(page) {
			m.navigate(func() { m.pager.SelectPage(page) })
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.searchSeq++
		m.applySearch(m.search.Value())
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}

	m.searchSeq++
	return m, tea.Batch(cmd, debounceSearch(m.searchSeq, m.search.Value(), m.debounce))
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.view = viewList
		m.detailSlug = ""
		m.detail.Subscribe(fetch.Input{})
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reload):
		m.detail.Reload()
		return m, nil
	}
	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	return m, cmd
}

// navigate runs a pager action and refetches when it moved the page.
func (m *Model) navigate(action func()) {
	before := m.pager.CurrentPage()
	action()
	if page := m.pager.CurrentPage(); page != before {
		m.params = m.params.WithPage(page)
		m.subscribeProducts()
	}
}

func (m *Model) visiblePage(page int) bool {
	for _, item := range m.pager.Items() {
		if item.Kind == pagination.KindPage && item.Page == page {
			return true
		}
	}
	return false
}

func (m *Model) applySearch(term string) {
	if term == m.params.Title {
		return
	}
	m.params = m.params.WithTitle(term)
	m.pager.SetCurrentPage(1)
	m.subscribeProducts()
}

func (m *Model) subscribeProducts() {
	m.products.Subscribe(m.source.ProductsInput(m.params))
	m.table.SetCursor(0)
}

func (m *Model) openDetail() {
	data := m.products.State().Data
	if data == nil || len(*data) == 0 {
		return
	}
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(*data) {
		return
	}
	product := (*data)[cursor]
	m.view = viewDetail
	m.detailSlug = product.Slug
	m.detail.Subscribe(m.source.ProductInput(product.Slug))
	m.refreshDetail()
}

func (m *Model) refreshRows() {
	data := m.products.State().Data
	if data == nil {
		m.table.SetRows(nil)
		return
	}
	rows := make([]table.Row, len(*data))
	for i, p := range *data {
		rows[i] = table.Row{
			p.Title,
			catalog.FormatPrice(p.Price),
			p.Category.Name,
			catalog.FormatDate(p.CreationAt, catalog.DateOptions{ShowTime: true}),
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func digit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

// Messages

type resourceKind int

const (
	productsResource resourceKind = iota
	detailResource
	categoriesResource
)

type changedMsg struct {
	kind resourceKind
}

type searchMsg struct {
	seq  int
	term string
}

// Commands

// listen waits for the next state change of one resource. It returns nil
// once the resource is closed.
func listen(kind resourceKind, changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{kind: kind}
	}
}

func debounceSearch(seq int, term string, d time.Duration) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return searchMsg{seq: seq, term: term} }
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return searchMsg{seq: seq, term: term}
	})
}

// Run starts the browser and blocks until the user quits.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}

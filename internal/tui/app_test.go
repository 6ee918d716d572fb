package tui

import (
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/catalog-client/internal/testutil"
	"github.com/Sternrassler/catalog-client/pkg/client"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
)

const productsPath = testutil.APIPrefix + "/v1/products"

func newTestModel(t *testing.T, mutate ...func(*Options)) (Model, *testutil.MockCatalog) {
	t.Helper()
	mock := testutil.NewMockCatalog()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig()
	cfg.BaseURL = mock.BaseURL()
	cfg.RateLimit = ratelimit.Config{}
	c, err := client.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	opts := Options{Source: c}
	for _, fn := range mutate {
		fn(&opts)
	}

	m := New(opts)
	t.Cleanup(m.Close)
	m.Init()
	return settle(t, m), mock
}

// settle waits for every issued request and feeds the change signals back
// into the model, as the listen commands would.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	m.products.Wait()
	m.detail.Wait()
	m.categories.Wait()
	for _, kind := range []resourceKind{productsResource, detailResource, categoriesResource} {
		m = update(t, m, changedMsg{kind: kind})
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return model
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestModel_InitialLoad(t *testing.T) {
	m, mock := newTestModel(t)

	assert.Equal(t, "limit=12&offset=0&title=", mock.LastQuery())
	require.Len(t, m.table.Rows(), 12)
	assert.Equal(t, "Product 1", m.table.Rows()[0][0])
	assert.Equal(t, "$10", m.table.Rows()[0][1])
	assert.Len(t, m.category.Options, 5, "categories feed the filter options")

	view := m.View()
	assert.Contains(t, view, "Product List")
	assert.Contains(t, view, "Published At")
	assert.Contains(t, view, "Categories: Select options")
}

func TestModel_PageNavigation(t *testing.T) {
	m, mock := newTestModel(t)

	m = settle(t, press(t, m, "right"))
	assert.Equal(t, 2, m.pager.CurrentPage())
	assert.Equal(t, "limit=12&offset=12&title=", mock.LastQuery())

	m = settle(t, press(t, m, "3"))
	assert.Equal(t, 3, m.pager.CurrentPage())
	assert.Equal(t, "limit=12&offset=24&title=", mock.LastQuery())

	m = settle(t, press(t, m, "left"))
	assert.Equal(t, 2, m.pager.CurrentPage())
	assert.Equal(t, 12, m.params.Offset)

	mock.Reset()
	m = press(t, m, "9")
	assert.Equal(t, 2, m.pager.CurrentPage(), "pages outside the window are ignored")
	assert.Zero(t, mock.RequestCount())
}

func TestModel_EllipsisKeysDoNotFetch(t *testing.T) {
	m, mock := newTestModel(t)
	mock.Reset()

	m = press(t, m, "]")
	assert.True(t, m.pager.State().RightExpanded)

	m = press(t, m, "[")
	assert.True(t, m.pager.State().LeftExpanded)
	assert.False(t, m.pager.State().RightExpanded)

	m.products.Wait()
	assert.Zero(t, mock.RequestCount())

	m = settle(t, press(t, m, "right"))
	assert.False(t, m.pager.State().LeftExpanded, "navigation resets expansion")
}

func TestModel_SearchDebounce(t *testing.T) {
	m, mock := newTestModel(t, func(o *Options) { o.SearchDebounce = time.Hour })
	m = settle(t, press(t, m, "right"))

	m = press(t, m, "/")
	require.True(t, m.search.Focused())
	m = typeText(t, m, "shirt")
	assert.Equal(t, 5, m.searchSeq)
	assert.Equal(t, "", m.params.Title, "search waits for the debounce")

	m = update(t, m, searchMsg{seq: 4, term: "shir"})
	assert.Equal(t, "", m.params.Title, "superseded keystrokes are dropped")

	m = settle(t, update(t, m, searchMsg{seq: 5, term: "shirt"}))
	assert.Equal(t, "shirt", m.params.Title)
	assert.Equal(t, 1, m.pager.CurrentPage(), "search returns to the first page")
	assert.Equal(t, "limit=12&offset=0&title=shirt", mock.LastQuery())
	assert.Len(t, m.table.Rows(), 12)

	m = press(t, m, "q")
	assert.Equal(t, "shirtq", m.search.Value(), "keys go to the focused search box")
}

func TestModel_SearchEnterAppliesImmediately(t *testing.T) {
	m, _ := newTestModel(t, func(o *Options) { o.SearchDebounce = time.Hour })

	m = press(t, m, "/")
	m = typeText(t, m, "zzz")
	m = settle(t, press(t, m, "enter"))

	assert.False(t, m.search.Focused())
	assert.Equal(t, "zzz", m.params.Title)
	assert.Contains(t, m.View(), msgNoData)
}

func TestDebounceSearch(t *testing.T) {
	assert.Equal(t, searchMsg{seq: 3, term: "x"}, debounceSearch(3, "x", 0)())
	assert.Equal(t, searchMsg{seq: 4, term: "y"}, debounceSearch(4, "y", time.Millisecond)())
}

func TestModel_PriceFilter(t *testing.T) {
	m, mock := newTestModel(t)

	m = press(t, m, "p")
	require.Equal(t, panelPrice, m.panel)
	assert.Contains(t, m.View(), "Select Price Range")

	m = settle(t, press(t, m, "down", "enter"))
	assert.Equal(t, panelNone, m.panel, "single select closes on pick")
	assert.Equal(t, "20", m.params.PriceMin)
	assert.Equal(t, "50", m.params.PriceMax)
	assert.Equal(t, "limit=12&offset=0&title=&price_min=20&price_max=50", mock.LastQuery())
	assert.Len(t, m.table.Rows(), 4)
	assert.Contains(t, m.View(), "Price: 1 selected")

	m = settle(t, press(t, m, "p", "ctrl+u", "esc"))
	assert.Empty(t, m.params.PriceMin)
	assert.Equal(t, "limit=12&offset=0&title=", mock.LastQuery())
}

func TestModel_CategoryFilter(t *testing.T) {
	m, mock := newTestModel(t)
	m = settle(t, press(t, m, "right"))

	m = press(t, m, "c", "enter", "down", "down", "enter")
	assert.Equal(t, panelCategory, m.panel, "multi select stays open")
	assert.Equal(t, "1&3", m.params.CategoryID)
	assert.Equal(t, 1, m.pager.CurrentPage())

	m = settle(t, press(t, m, "esc"))
	assert.Equal(t, panelNone, m.panel)
	assert.True(t, strings.HasSuffix(mock.LastQuery(), "categoryId=1&3"), mock.LastQuery())
	assert.Len(t, m.table.Rows(), 12)

	m = press(t, m, "c")
	m = typeText(t, m, "sho")
	assert.Len(t, m.category.Filtered(), 1)
	m = press(t, m, "enter", "backspace", "backspace", "backspace")
	assert.Equal(t, "1&3&4", m.params.CategoryID)
	assert.Len(t, m.category.Filtered(), 5)
}

func TestModel_ScopedCategory(t *testing.T) {
	m, mock := newTestModel(t, func(o *Options) {
		o.CategoryID = "2"
		o.CategorySlug = "smart-phones"
	})

	assert.Equal(t, 1, mock.RequestCount(), "categories are not requested")
	assert.True(t, strings.HasSuffix(mock.LastQuery(), "categoryId=2"))

	m = press(t, m, "c")
	assert.Equal(t, panelNone, m.panel)

	view := m.View()
	assert.Contains(t, view, "Smart Phones")
	assert.NotContains(t, view, "Categories:")
}

func TestModel_Detail(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = press(t, m, "down", "enter")
	require.Equal(t, viewDetail, m.view)
	assert.Equal(t, "product-2", m.detailSlug)
	assert.Contains(t, m.View(), msgLoading)

	m = settle(t, m)
	view := m.View()
	assert.Contains(t, view, "Product 2")
	assert.Contains(t, view, "Price: $20")
	assert.Contains(t, view, "Published ")

	m = press(t, m, "esc")
	assert.Equal(t, viewList, m.view)
	assert.Empty(t, m.detailSlug)
}

func TestModel_DetailNotFound(t *testing.T) {
	m, mock := newTestModel(t)
	mock.SetResponse(productsPath+"/slug/product-1", testutil.MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"message":"not found"}`,
	})

	m = settle(t, press(t, m, "enter"))
	assert.Contains(t, m.View(), msgNoData)
}

func TestModel_ErrorAndReload(t *testing.T) {
	m, mock := newTestModel(t)
	mock.SetResponse(productsPath, testutil.MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"boom"}`,
	})

	m = settle(t, press(t, m, "right"))
	state := m.products.State()
	assert.True(t, state.IsError)
	assert.NotNil(t, state.Data, "a failed refetch keeps the previous page")
	assert.Contains(t, m.View(), msgError)

	mock.SetHandler(productsPath, nil)
	m = settle(t, press(t, m, "r"))
	assert.False(t, m.products.State().IsError)
	assert.NotContains(t, m.View(), msgError)
}

package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the browser's keyboard bindings.
type keyMap struct {
	Quit   key.Binding
	Back   key.Binding
	Reload key.Binding

	// Listing
	Search        key.Binding
	Open          key.Binding
	PrevPage      key.Binding
	NextPage      key.Binding
	LeftEllipsis  key.Binding
	RightEllipsis key.Binding
	PriceFilter   key.Binding
	CategoryPick  key.Binding

	// Filter panel
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Clear  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next page"),
		),
		LeftEllipsis: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "expand left"),
		),
		RightEllipsis: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "expand right"),
		),
		PriceFilter: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "price"),
		),
		CategoryPick: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "categories"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "toggle"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear"),
		),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Search, k.Open, k.PrevPage, k.NextPage, k.LeftEllipsis, k.RightEllipsis, k.PriceFilter, k.CategoryPick, k.Reload, k.Quit}
}

func (k keyMap) panelHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Clear, k.Back}
}

func (k keyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Back, k.Reload, k.Quit}
}

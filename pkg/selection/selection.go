// Package selection holds the state of a searchable single- or
// multi-choice picker, independent of how it is drawn.
package selection

import (
	"fmt"
	"slices"
	"strings"
)

// Mode selects single or multiple choice.
type Mode int

const (
	// Single keeps at most one value and closes on pick.
	Single Mode = iota

	// Multi toggles values in and out of the selection.
	Multi
)

// Option is a labelled value.
type Option[V comparable] struct {
	Label string
	Value V
}

// Select is the state of one picker.
type Select[V comparable] struct {
	Options     []Option[V]
	Value       []V
	Mode        Mode
	Placeholder string
	Clearable   bool

	open       bool
	searchTerm string
}

// New creates a picker over options.
func New[V comparable](mode Mode, options []Option[V]) *Select[V] {
	return &Select[V]{
		Options:     options,
		Mode:        mode,
		Placeholder: "Select...",
	}
}

// IsOpen reports whether the option list is shown.
func (s *Select[V]) IsOpen() bool { return s.open }

// SetOpen opens or closes the option list. Closing clears the search term.
func (s *Select[V]) SetOpen(open bool) {
	s.open = open
	if !open {
		s.searchTerm = ""
	}
}

// SearchTerm returns the current filter text.
func (s *Select[V]) SearchTerm() string { return s.searchTerm }

// Search sets the filter text.
func (s *Select[V]) Search(term string) { s.searchTerm = term }

// Filtered returns the options whose label contains the search term,
// case-insensitively.
func (s *Select[V]) Filtered() []Option[V] {
	term := strings.ToLower(s.searchTerm)
	out := make([]Option[V], 0, len(s.Options))
	for _, opt := range s.Options {
		if strings.Contains(strings.ToLower(opt.Label), term) {
			out = append(out, opt)
		}
	}
	return out
}

// IsSelected reports whether v is part of the selection.
func (s *Select[V]) IsSelected(v V) bool {
	return slices.Contains(s.Value, v)
}

// Selected returns the options whose value is selected, in option order.
func (s *Select[V]) Selected() []Option[V] {
	var out []Option[V]
	for _, opt := range s.Options {
		if s.IsSelected(opt.Value) {
			out = append(out, opt)
		}
	}
	return out
}

// Toggle picks v. In Single mode v replaces the selection and the list
// closes; in Multi mode v is added or removed. It returns the new value.
func (s *Select[V]) Toggle(v V) []V {
	if s.Mode == Single {
		s.Value = []V{v}
		s.SetOpen(false)
		return s.Value
	}

	if s.IsSelected(v) {
		s.Value = slices.DeleteFunc(slices.Clone(s.Value), func(x V) bool { return x == v })
	} else {
		s.Value = append(slices.Clone(s.Value), v)
	}
	return s.Value
}

// Clear empties the selection.
func (s *Select[V]) Clear() []V {
	s.Value = nil
	return s.Value
}

// Summary is the closed-state text: the placeholder or "N selected".
func (s *Select[V]) Summary() string {
	if len(s.Value) == 0 {
		return s.Placeholder
	}
	return fmt.Sprintf("%d selected", len(s.Selected()))
}

// EmptyMessage is shown when Filtered is empty.
func (s *Select[V]) EmptyMessage() string {
	if s.searchTerm != "" {
		return "No results found"
	}
	return "No options available"
}

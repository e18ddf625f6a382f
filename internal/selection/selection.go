package selection

import (
	"slices"

	"github.com/google/uuid"

	"mixalchemist/internal/catalog"
)

// State tracks the chosen ingredient ids and the ingredients the user added
// during this session. It is not safe for concurrent use; the session
// controller serializes access.
type State struct {
	selected []string
	custom   []catalog.Ingredient
	newID    func() string
}

// New returns an empty selection.
func New() *State {
	return &State{newID: func() string { return "custom-" + uuid.NewString() }}
}

// Toggle adds id if it is not selected and removes it otherwise.
func (s *State) Toggle(id string) {
	if i := slices.Index(s.selected, id); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return
	}
	s.selected = append(s.selected, id)
}

// AddCustom records a user supplied ingredient and selects it. The caller is
// expected to pass an already trimmed, non-empty name.
func (s *State) AddCustom(name string) catalog.Ingredient {
	ing := catalog.Ingredient{ID: s.newID(), Name: name, Category: catalog.Custom}
	s.custom = append(s.custom, ing)
	s.selected = append(s.selected, ing.ID)
	return ing
}

// Clear empties the selection. Custom ingredients stay defined.
func (s *State) Clear() {
	s.selected = nil
}

// IsSelected reports whether id is part of the selection.
func (s *State) IsSelected(id string) bool {
	return slices.Contains(s.selected, id)
}

// Len returns the number of selected ingredients.
func (s *State) Len() int {
	return len(s.selected)
}

// Selected returns a copy of the selected ids in selection order.
func (s *State) Selected() []string {
	return slices.Clone(s.selected)
}

// Custom returns a copy of the session's custom ingredients.
func (s *State) Custom() []catalog.Ingredient {
	return slices.Clone(s.custom)
}

// Lookup resolves id against the custom additions first, then the static catalog.
func (s *State) Lookup(id string) (catalog.Ingredient, bool) {
	for _, c := range s.custom {
		if c.ID == id {
			return c, true
		}
	}
	return catalog.Lookup(id)
}

// Names maps the selected ids to display names. An id that resolves to
// nothing, such as a custom id from before a restart, is used verbatim.
func (s *State) Names() []string {
	names := make([]string, 0, len(s.selected))
	for _, id := range s.selected {
		if ing, ok := s.Lookup(id); ok {
			names = append(names, ing.Name)
			continue
		}
		names = append(names, id)
	}
	return names
}

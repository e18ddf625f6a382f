package session

import (
	"errors"

	"mixalchemist/internal/recipe"
)

// State is the screen the session is on.
type State string

const (
	Selecting  State = "SELECTING"
	Generating State = "GENERATING"
	Result     State = "RESULT"
)

// ErrRefused is returned when an event does not apply to the current state.
var ErrRefused = errors.New("session: transition not allowed")

// View is the state machine's value. RecipeID increases every time a new
// recipe becomes current and keys work started on its behalf.
type View struct {
	State    State
	Recipe   *recipe.Recipe
	RecipeID uint64
	Error    string
}

// Event drives a transition.
type Event interface {
	event()
}

// Generate starts a recipe from the selected ingredients.
type Generate struct{ Selected int }

// PickRecommendation starts a recipe for a suggested drink.
type PickRecommendation struct{ Name string }

// Generated delivers the recipe for the pending request.
type Generated struct{ Recipe *recipe.Recipe }

// Failed reports that the pending request failed; Message is shown to the user.
type Failed struct{ Message string }

// Reset leaves the result screen.
type Reset struct{}

func (Generate) event()           {}
func (PickRecommendation) event() {}
func (Generated) event()          {}
func (Failed) event()             {}
func (Reset) event()              {}

// Next applies e to v. It returns v unchanged together with ErrRefused when
// e is not valid in v.State.
func Next(v View, e Event) (View, error) {
	switch e := e.(type) {
	case Generate:
		if v.State != Selecting || e.Selected == 0 {
			return v, ErrRefused
		}
		return View{State: Generating, RecipeID: v.RecipeID}, nil

	case PickRecommendation:
		if v.State != Selecting || e.Name == "" {
			return v, ErrRefused
		}
		return View{State: Generating, RecipeID: v.RecipeID}, nil

	case Generated:
		if v.State != Generating || e.Recipe == nil {
			return v, ErrRefused
		}
		return View{State: Result, Recipe: e.Recipe, RecipeID: v.RecipeID + 1}, nil

	case Failed:
		if v.State != Generating {
			return v, ErrRefused
		}
		return View{State: Selecting, RecipeID: v.RecipeID, Error: e.Message}, nil

	case Reset:
		if v.State != Result {
			return v, ErrRefused
		}
		return View{State: Selecting, RecipeID: v.RecipeID}, nil
	}
	return v, ErrRefused
}

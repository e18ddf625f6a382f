package recipe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeRecipe parses a model response into a Recipe and checks it against
// the recipe schema. Any failure wraps ErrParse.
func DecodeRecipe(text string) (*Recipe, error) {
	var r Recipe
	if err := json.Unmarshal([]byte(stripFences(text)), &r); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal recipe JSON: %w", ErrParse, err)
	}
	if err := validate.Struct(&r); err != nil {
		return nil, fmt.Errorf("%w: invalid recipe: %w", ErrParse, err)
	}
	return &r, nil
}

// DecodeRecommendations parses a model response into a recommendation list.
func DecodeRecommendations(text string) ([]Recommendation, error) {
	var recs []Recommendation
	if err := json.Unmarshal([]byte(stripFences(text)), &recs); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal recommendations JSON: %w", ErrParse, err)
	}
	for i := range recs {
		if err := validate.Struct(&recs[i]); err != nil {
			return nil, fmt.Errorf("%w: invalid recommendation %d: %w", ErrParse, i, err)
		}
	}
	return recs, nil
}

// stripFences drops a surrounding ```json block. Models occasionally add one
// even when a JSON mime type was requested.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

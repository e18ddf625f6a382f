package recipe

// Difficulty is how hard a drink is to make.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Difficulties lists the allowed values in the order the schema declares them.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Recipe represents the structure of a generated cocktail or mocktail.
type Recipe struct {
	Name          string     `json:"name" validate:"required"`
	Description   string     `json:"description" validate:"required"`
	Ingredients   []string   `json:"ingredients" validate:"required,min=1,dive,required"`
	Instructions  []string   `json:"instructions" validate:"required,min=1,dive,required"`
	Glassware     string     `json:"glassware" validate:"required"`
	Difficulty    Difficulty `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	FlavorProfile string     `json:"flavorProfile" validate:"required"`
}

// Recommendation is a short suggestion shown before anything is selected.
type Recommendation struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

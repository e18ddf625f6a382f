package catalog

// Category groups ingredients for display. The value is the label shown in the UI.
type Category string

const (
	Spirit Category = "Spirits"
	Mixer  Category = "Mixers"
	Fruit  Category = "Fruits & Fresh"
	Other  Category = "Syrups & Others"
	Custom Category = "Your Additions"
)

// DisplayOrder lists categories in the order the selection screen renders them.
// User additions come first so freshly added items are visible.
var DisplayOrder = []Category{Custom, Spirit, Mixer, Fruit, Other}

// Ingredient is a single selectable bar ingredient.
type Ingredient struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

var ingredients = []Ingredient{
	// Spirits
	{ID: "vodka", Name: "Vodka", Category: Spirit},
	{ID: "gin", Name: "Gin", Category: Spirit},
	{ID: "white_rum", Name: "White Rum", Category: Spirit},
	{ID: "dark_rum", Name: "Dark Rum", Category: Spirit},
	{ID: "tequila", Name: "Tequila", Category: Spirit},
	{ID: "whiskey", Name: "Whiskey/Bourbon", Category: Spirit},
	{ID: "brandy", Name: "Brandy/Cognac", Category: Spirit},
	{ID: "vermouth_dry", Name: "Dry Vermouth", Category: Spirit},
	{ID: "vermouth_sweet", Name: "Sweet Vermouth", Category: Spirit},
	{ID: "campari", Name: "Campari", Category: Spirit},
	{ID: "cointreau", Name: "Cointreau/Triple Sec", Category: Spirit},

	// Mixers
	{ID: "soda", Name: "Soda Water", Category: Mixer},
	{ID: "tonic", Name: "Tonic Water", Category: Mixer},
	{ID: "cola", Name: "Cola", Category: Mixer},
	{ID: "ginger_beer", Name: "Ginger Beer", Category: Mixer},
	{ID: "ginger_ale", Name: "Ginger Ale", Category: Mixer},
	{ID: "oj", Name: "Orange Juice", Category: Mixer},
	{ID: "cranberry", Name: "Cranberry Juice", Category: Mixer},
	{ID: "pineapple", Name: "Pineapple Juice", Category: Mixer},
	{ID: "tomato", Name: "Tomato Juice", Category: Mixer},

	// Fruits & fresh
	{ID: "lemon", Name: "Lemon", Category: Fruit},
	{ID: "lime", Name: "Lime", Category: Fruit},
	{ID: "orange", Name: "Orange", Category: Fruit},
	{ID: "grapefruit", Name: "Grapefruit", Category: Fruit},
	{ID: "mint", Name: "Fresh Mint", Category: Fruit},
	{ID: "basil", Name: "Fresh Basil", Category: Fruit},
	{ID: "cucumber", Name: "Cucumber", Category: Fruit},
	{ID: "berries", Name: "Mixed Berries", Category: Fruit},

	// Others
	{ID: "simple_syrup", Name: "Simple Syrup", Category: Other},
	{ID: "honey", Name: "Honey", Category: Other},
	{ID: "agave", Name: "Agave Nectar", Category: Other},
	{ID: "grenadine", Name: "Grenadine", Category: Other},
	{ID: "bitters", Name: "Angostura Bitters", Category: Other},
	{ID: "cream", Name: "Heavy Cream", Category: Other},
	{ID: "egg_white", Name: "Egg White", Category: Other},
	{ID: "coffee", Name: "Espresso/Coffee", Category: Other},
}

var byID = func() map[string]Ingredient {
	m := make(map[string]Ingredient, len(ingredients))
	for _, i := range ingredients {
		m[i.ID] = i
	}
	return m
}()

// List returns the static catalog. The returned slice is a copy.
func List() []Ingredient {
	out := make([]Ingredient, len(ingredients))
	copy(out, ingredients)
	return out
}

// Lookup finds a static catalog entry by id.
func Lookup(id string) (Ingredient, bool) {
	i, ok := byID[id]
	return i, ok
}

// Group is one rendered category section.
type Group struct {
	Category Category     `json:"category"`
	Items    []Ingredient `json:"items"`
}

// GroupWith merges the static catalog with the session's custom additions and
// returns the non-empty groups in DisplayOrder.
func GroupWith(custom []Ingredient) []Group {
	buckets := make(map[Category][]Ingredient, len(DisplayOrder))
	for _, i := range ingredients {
		buckets[i.Category] = append(buckets[i.Category], i)
	}
	for _, i := range custom {
		buckets[i.Category] = append(buckets[i.Category], i)
	}

	var groups []Group
	for _, c := range DisplayOrder {
		if len(buckets[c]) == 0 {
			continue
		}
		groups = append(groups, Group{Category: c, Items: buckets[c]})
	}
	return groups
}

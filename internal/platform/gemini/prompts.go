package gemini

import (
	"fmt"
	"strings"
)

func ingredientsPrompt(names []string) string {
	return fmt.Sprintf(`Create a unique and delicious drink recipe (cocktail or mocktail) using a subset or all of the following ingredients: %s.

You may assume the user also has basic pantry staples like: Ice, Water, Sugar, Salt.

If the selected ingredients include alcohol, make a cocktail. If not, or if the combination suggests a mocktail, make a mocktail.

Ensure the recipe is realistic and tasty.

Return strictly JSON.`, strings.Join(names, ", "))
}

func byNamePrompt(name string) string {
	return fmt.Sprintf(`Create a detailed recipe for the drink: %q.

Ensure the recipe is realistic, tasty, and uses standard measurements.

Return strictly JSON.`, name)
}

func recommendationsPrompt(n int) string {
	return fmt.Sprintf(`Suggest %d diverse, popular, and interesting cocktail or mocktail recommendations.
Include a mix of timeless classics and trending modern drinks.
Provide a short, catchy description (max 10 words) for each.
Return strictly a JSON array of objects with keys: "name" and "description".`, n)
}

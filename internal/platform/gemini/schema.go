package gemini

import (
	"github.com/google/generative-ai-go/genai"

	"mixalchemist/internal/recipe"
)

var recipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":         {Type: genai.TypeString},
		"description":  {Type: genai.TypeString, Description: "A short, enticing description of the drink in 1-2 sentences."},
		"ingredients":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "List of ingredients with measurements"},
		"instructions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Step by step instructions"},
		"glassware":    {Type: genai.TypeString},
		"difficulty": {
			Type:   genai.TypeString,
			Format: "enum",
			Enum:   difficultyEnum(),
		},
		"flavorProfile": {Type: genai.TypeString, Description: "e.g., Sweet, Sour, Bitter, Refreshing, Smoky"},
	},
	Required: []string{"name", "description", "ingredients", "instructions", "glassware", "difficulty", "flavorProfile"},
}

var recommendationsSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":        {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
		},
		Required: []string{"name", "description"},
	},
}

func difficultyEnum() []string {
	out := make([]string, len(recipe.Difficulties))
	for i, d := range recipe.Difficulties {
		out[i] = string(d)
	}
	return out
}

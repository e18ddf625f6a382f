package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"mixalchemist/internal/metrics"
	"mixalchemist/internal/recipe"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// DefaultRecommendationCount is used when Config.RecommendationCount is not positive.
const DefaultRecommendationCount = 10

// Config configures a Client.
type Config struct {
	APIKey              string
	Model               string
	RecommendationCount int
}

// textGenerator sends one prompt constrained by schema and returns the raw
// response text, which is empty when the model produced nothing.
type textGenerator interface {
	GenerateJSON(ctx context.Context, schema *genai.Schema, prompt string) (string, error)
}

// Client is a client for the Gemini API.
type Client struct {
	gen      textGenerator
	recCount int
	log      *zap.Logger
	closer   func() error
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	c := newClient(&modelGenerator{client: client, model: model}, cfg.RecommendationCount, log)
	c.closer = client.Close
	return c, nil
}

func newClient(gen textGenerator, recCount int, log *zap.Logger) *Client {
	if recCount <= 0 {
		recCount = DefaultRecommendationCount
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{gen: gen, recCount: recCount, log: log.Named("gemini")}
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// RecipeFromIngredients generates a drink that uses some or all of names.
func (c *Client) RecipeFromIngredients(ctx context.Context, names []string) (*recipe.Recipe, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no ingredients given", recipe.ErrGeneration)
	}
	return c.generateRecipe(ctx, ingredientsPrompt(names))
}

// RecipeByName generates the recipe for a named drink.
func (c *Client) RecipeByName(ctx context.Context, name string) (*recipe.Recipe, error) {
	return c.generateRecipe(ctx, byNamePrompt(name))
}

// Recommendations asks for a list of suggested drinks. Failures are logged
// and reported as an empty list since suggestions are optional.
func (c *Client) Recommendations(ctx context.Context) []recipe.Recommendation {
	recs, err := c.recommendations(ctx)
	metrics.Observe(metrics.KindRecommendation, err)
	if err != nil {
		c.log.Warn("error fetching recommendations", zap.Error(err))
		return []recipe.Recommendation{}
	}
	return recs
}

func (c *Client) recommendations(ctx context.Context) ([]recipe.Recommendation, error) {
	text, err := c.generate(ctx, recommendationsSchema, recommendationsPrompt(c.recCount))
	if err != nil {
		return nil, err
	}
	return recipe.DecodeRecommendations(text)
}

func (c *Client) generateRecipe(ctx context.Context, prompt string) (*recipe.Recipe, error) {
	r, err := c.decodeRecipe(ctx, prompt)
	metrics.Observe(metrics.KindRecipe, err)
	return r, err
}

func (c *Client) decodeRecipe(ctx context.Context, prompt string) (*recipe.Recipe, error) {
	text, err := c.generate(ctx, recipeSchema, prompt)
	if err != nil {
		return nil, err
	}
	return recipe.DecodeRecipe(text)
}

func (c *Client) generate(ctx context.Context, schema *genai.Schema, prompt string) (string, error) {
	text, err := c.gen.GenerateJSON(ctx, schema, prompt)
	if err != nil {
		return "", classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response from Gemini", recipe.ErrGeneration)
	}
	return text, nil
}

// classify wraps a remote call error into the generation taxonomy.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w: %w", recipe.ErrGeneration, recipe.ErrNetwork, err)
	}
	return fmt.Errorf("%w: %w", recipe.ErrGeneration, err)
}

type modelGenerator struct {
	client *genai.Client
	model  string
}

func (g *modelGenerator) GenerateJSON(ctx context.Context, schema *genai.Schema, prompt string) (string, error) {
	// GenerativeModel returns a fresh value, so per-call schema settings do not leak between requests.
	m := g.client.GenerativeModel(g.model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = schema

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

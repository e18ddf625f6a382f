package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mixalchemist/internal/catalog"
	"mixalchemist/internal/recipe"
	"mixalchemist/internal/session"
)

// mockRecipeService is a mock of the Gemini recipe client.
type mockRecipeService struct {
	mu       sync.Mutex
	recipe   *recipe.Recipe
	err      error
	recs     []recipe.Recommendation
	received []string
	byName   string
	// release, when set, holds recipe calls until it is closed.
	release chan struct{}
}

func (m *mockRecipeService) RecipeFromIngredients(ctx context.Context, names []string) (*recipe.Recipe, error) {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = names
	return m.recipe, m.err
}

func (m *mockRecipeService) RecipeByName(ctx context.Context, name string) (*recipe.Recipe, error) {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName = name
	return m.recipe, m.err
}

func (m *mockRecipeService) Recommendations(ctx context.Context) []recipe.Recommendation {
	return m.recs
}

// mockImageService is a mock of the Imagen client.
type mockImageService struct {
	uri string
	err error
}

func (m *mockImageService) DrinkImage(ctx context.Context, name, description, glassware string) (string, error) {
	return m.uri, m.err
}

func mockRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		Name:          "Mockjito",
		Description:   "Minty and bright.",
		Ingredients:   []string{"2oz vodka", "1 lime", "mint leaves"},
		Instructions:  []string{"Shake", "Pour"},
		Glassware:     "Highball",
		Difficulty:    recipe.Easy,
		FlavorProfile: "Refreshing",
	}
}

func setup(t *testing.T, recipes *mockRecipeService, images *mockImageService) (*gin.Engine, *session.Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := session.New(context.Background(), recipes, images, session.Options{Timeout: time.Second})
	t.Cleanup(ctrl.Wait)

	r := gin.New()
	require.NoError(t, NewHandler(ctrl, nil).Register(r))
	return r, ctrl
}

func do(r *gin.Engine, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, path, []byte(form.Encode()), "application/x-www-form-urlencoded")
}

func decodeSnapshot(t *testing.T, rr *httptest.ResponseRecorder) session.Snapshot {
	t.Helper()
	var s session.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &s))
	return s
}

func TestAPIGenerate(t *testing.T) {
	recipes := &mockRecipeService{recipe: mockRecipe()}
	r, ctrl := setup(t, recipes, &mockImageService{uri: "data:image/jpeg;base64,AAAA"})

	for _, id := range []string{"vodka", "lime", "mint"} {
		rr := do(r, http.MethodPost, "/api/ingredients/"+id+"/toggle", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := do(r, http.MethodPost, "/api/generate", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	s := decodeSnapshot(t, rr)
	assert.Equal(t, session.Result, s.State)
	assert.Equal(t, mockRecipe(), s.Recipe)
	assert.Equal(t, []string{"Vodka", "Lime", "Fresh Mint"}, recipes.received)

	ctrl.Wait()
	s = decodeSnapshot(t, do(r, http.MethodGet, "/api/state", nil, ""))
	require.NotNil(t, s.Image)
	assert.Equal(t, session.ImageReady, s.Image.Status)
}

func TestAPIGenerateWithEmptySelection(t *testing.T) {
	r, _ := setup(t, &mockRecipeService{recipe: mockRecipe()}, &mockImageService{})

	rr := do(r, http.MethodPost, "/api/generate", nil, "")

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "SELECTING")
}

func TestAPIGenerateFailure(t *testing.T) {
	r, _ := setup(t, &mockRecipeService{err: recipe.ErrGeneration}, &mockImageService{})
	do(r, http.MethodPost, "/api/ingredients/gin/toggle", nil, "")

	rr := do(r, http.MethodPost, "/api/generate", nil, "")

	assert.Equal(t, http.StatusOK, rr.Code)
	s := decodeSnapshot(t, rr)
	assert.Equal(t, session.Selecting, s.State)
	assert.Equal(t, session.MsgIngredientsFailed, s.Error)
	assert.NotContains(t, rr.Body.String(), recipe.ErrGeneration.Error())
}

func TestAPIAddCustom(t *testing.T) {
	r, _ := setup(t, &mockRecipeService{}, &mockImageService{})

	rr := do(r, http.MethodPost, "/api/ingredients/custom", []byte(`{"name":" Dragon Fruit "}`), "application/json")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Ingredient catalog.Ingredient `json:"ingredient"`
		State      session.Snapshot   `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Dragon Fruit", body.Ingredient.Name)
	assert.Equal(t, catalog.Custom, body.Ingredient.Category)
	assert.Equal(t, []string{body.Ingredient.ID}, body.State.Selected)

	rr = do(r, http.MethodPost, "/api/ingredients/custom", []byte(`{"name":"   "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(r, http.MethodPost, "/api/ingredients/custom", []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPIIngredients(t *testing.T) {
	r, _ := setup(t, &mockRecipeService{}, &mockImageService{})
	do(r, http.MethodPost, "/api/ingredients/custom", []byte(`{"name":"Chili Pepper"}`), "application/json")

	rr := do(r, http.MethodGet, "/api/ingredients", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var groups []catalog.Group
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &groups))
	require.Len(t, groups, 5)
	assert.Equal(t, catalog.Custom, groups[0].Category)
	assert.Equal(t, "Chili Pepper", groups[0].Items[0].Name)
}

func TestAPIClearAndReset(t *testing.T) {
	r, ctrl := setup(t, &mockRecipeService{recipe: mockRecipe()}, &mockImageService{err: errors.New("no image")})
	do(r, http.MethodPost, "/api/ingredients/vodka/toggle", nil, "")

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/api/reset", nil, "").Code)

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/generate", nil, "").Code)
	ctrl.Wait()

	s := decodeSnapshot(t, do(r, http.MethodPost, "/api/reset", nil, ""))
	assert.Equal(t, session.Selecting, s.State)
	assert.Equal(t, []string{"vodka"}, s.Selected)

	s = decodeSnapshot(t, do(r, http.MethodPost, "/api/selection/clear", nil, ""))
	assert.Empty(t, s.Selected)
}

func TestAPIPickAndRetryImage(t *testing.T) {
	recipes := &mockRecipeService{recipe: mockRecipe()}
	images := &mockImageService{err: recipe.ErrGeneration}
	r, ctrl := setup(t, recipes, images)

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/api/image/retry", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/recommendations/pick", []byte(`{}`), "application/json").Code)

	rr := do(r, http.MethodPost, "/api/recommendations/pick", []byte(`{"name":"Mockjito"}`), "application/json")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Mockjito", recipes.byName)
	ctrl.Wait()

	s := decodeSnapshot(t, do(r, http.MethodGet, "/api/state", nil, ""))
	require.NotNil(t, s.Image)
	assert.Equal(t, session.ImageFailed, s.Image.Status)

	rr = do(r, http.MethodPost, "/api/image/retry", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	ctrl.Wait()
	assert.Equal(t, session.Result, ctrl.Snapshot().State)
}

func TestIndexRendersSelection(t *testing.T) {
	recipes := &mockRecipeService{recs: []recipe.Recommendation{{Name: "Paloma", Description: "Grapefruit sunshine."}}}
	r, ctrl := setup(t, recipes, &mockImageService{})
	ctrl.LoadRecommendations(context.Background())

	rr := postForm(r, "/ingredients/lime/toggle", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	rr = do(r, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "What's in your bar?")
	assert.Contains(t, body, "Paloma")
	assert.Contains(t, body, "1 selected")
	assert.Contains(t, body, `class="ingredient selected">Lime`)
	assert.NotContains(t, body, "Your Additions")
}

func TestIndexFormFlow(t *testing.T) {
	recipes := &mockRecipeService{recipe: mockRecipe()}
	r, ctrl := setup(t, recipes, &mockImageService{uri: "data:image/jpeg;base64,AAAA"})

	postForm(r, "/ingredients/custom", url.Values{"name": {"Dragon Fruit"}})
	postForm(r, "/ingredients/custom", url.Values{"name": {"   "}})
	assert.Len(t, ctrl.Snapshot().Custom, 1)

	rr := postForm(r, "/generate", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	ctrl.Wait()
	assert.Equal(t, session.Result, ctrl.Snapshot().State)

	body := do(r, http.MethodGet, "/", nil, "").Body.String()
	assert.Contains(t, body, "Mockjito")
	assert.Contains(t, body, "Highball")
	assert.Contains(t, body, `src="data:image/jpeg;base64,AAAA"`)
	assert.Equal(t, []string{"Dragon Fruit"}, recipes.received)

	postForm(r, "/reset", nil)
	body = do(r, http.MethodGet, "/", nil, "").Body.String()
	assert.Contains(t, body, "Your Additions")
	assert.Contains(t, body, "Dragon Fruit")
}

func TestIndexAfterGenerateShowsLoadingScreen(t *testing.T) {
	recipes := &mockRecipeService{
		recipe:  mockRecipe(),
		recs:    []recipe.Recommendation{{Name: "Paloma", Description: "Grapefruit sunshine."}},
		release: make(chan struct{}),
	}
	r, ctrl := setup(t, recipes, &mockImageService{uri: "data:image/jpeg;base64,AAAA"})
	ctrl.LoadRecommendations(context.Background())
	postForm(r, "/ingredients/vodka/toggle", nil)

	rr := postForm(r, "/generate", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	body := do(r, http.MethodGet, "/", nil, "").Body.String()
	assert.Contains(t, body, "Consulting the Spirits...")
	assert.Contains(t, body, `http-equiv="refresh"`)
	assert.NotContains(t, body, "What's in your bar?")

	close(recipes.release)
	ctrl.Wait()
	body = do(r, http.MethodGet, "/", nil, "").Body.String()
	assert.Contains(t, body, "Mockjito")
	assert.NotContains(t, body, `http-equiv="refresh"`)
}

func TestIndexAfterPickShowsLoadingScreen(t *testing.T) {
	recipes := &mockRecipeService{recipe: mockRecipe(), release: make(chan struct{})}
	r, ctrl := setup(t, recipes, &mockImageService{uri: "data:image/jpeg;base64,AAAA"})
	ctrl.LoadRecommendations(context.Background())

	postForm(r, "/recommendations/pick", url.Values{"name": {"Paloma"}})

	body := do(r, http.MethodGet, "/", nil, "").Body.String()
	assert.Contains(t, body, "Consulting the Spirits...")
	assert.Contains(t, body, `http-equiv="refresh"`)

	close(recipes.release)
	ctrl.Wait()
	assert.Equal(t, "Paloma", recipes.byName)
	assert.Equal(t, session.Result, ctrl.Snapshot().State)
}

func TestGenerateFormRefusalIsLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := session.New(context.Background(), &mockRecipeService{recipe: mockRecipe()}, &mockImageService{}, session.Options{Timeout: time.Second})
	t.Cleanup(ctrl.Wait)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	require.NoError(t, NewHandler(ctrl, zap.New(core)).Register(r))

	rr := postForm(r, "/generate", nil)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, session.Selecting, ctrl.Snapshot().State)
	entries := logs.FilterMessage("generate refused").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestIndexShowsRetryAndError(t *testing.T) {
	recipes := &mockRecipeService{recipe: mockRecipe()}
	r, ctrl := setup(t, recipes, &mockImageService{err: recipe.ErrGeneration})
	postForm(r, "/ingredients/vodka/toggle", nil)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/generate", nil, "").Code)
	ctrl.Wait()

	body := do(r, http.MethodGet, "/", nil, "").Body.String()
	assert.Contains(t, body, "Retry Image")
	assert.Contains(t, body, session.MsgImageFailed)

	postForm(r, "/reset", nil)
	recipes.mu.Lock()
	recipes.err = recipe.ErrParse
	recipes.mu.Unlock()

	postForm(r, "/recommendations/pick", url.Values{"name": {"Negroni"}})
	ctrl.Wait()

	body = do(r, http.MethodGet, "/", nil, "").Body.String()
	assert.True(t, strings.Contains(body, "Could not fetch the recipe for this recommendation."))
}

func TestStaticStylesheet(t *testing.T) {
	r, _ := setup(t, &mockRecipeService{}, &mockImageService{})

	rr := do(r, http.MethodGet, "/static/style.css", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), ".ingredient")
}

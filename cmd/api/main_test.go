package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mixalchemist/internal/config"
	"mixalchemist/internal/recipe"
	"mixalchemist/internal/session"
)

type mockRecipeService struct{}

func (mockRecipeService) RecipeFromIngredients(ctx context.Context, names []string) (*recipe.Recipe, error) {
	return nil, recipe.ErrGeneration
}

func (mockRecipeService) RecipeByName(ctx context.Context, name string) (*recipe.Recipe, error) {
	return nil, recipe.ErrGeneration
}

func (mockRecipeService) Recommendations(ctx context.Context) []recipe.Recommendation {
	return nil
}

type mockImageService struct{}

func (mockImageService) DrinkImage(ctx context.Context, name, description, glassware string) (string, error) {
	return "", recipe.ErrGeneration
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:8081"}, Development: true}
	sess := session.New(context.Background(), mockRecipeService{}, mockImageService{}, session.Options{Timeout: time.Second})

	r, err := newRouter(cfg, sess, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestRouterServesIndexAndState(t *testing.T) {
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "MixAlchemist")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"SELECTING"`)
}

func TestRouterServesMetrics(t *testing.T) {
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestRouterAppliesCORS(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:8081", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

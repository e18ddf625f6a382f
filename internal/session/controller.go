// Package session holds the single browsing session: ingredient selection,
// the Selecting/Generating/Result state machine and the drink image that
// belongs to the current recipe.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mixalchemist/internal/catalog"
	"mixalchemist/internal/recipe"
	"mixalchemist/internal/selection"
)

// Messages shown to the user. Error details only go to the log.
const (
	MsgIngredientsFailed    = "The bartender is a bit overwhelmed. Please try again."
	MsgRecommendationFailed = "Could not fetch the recipe for this recommendation."
	MsgImageFailed          = "Could not generate image at this time."
)

// ErrBlankName is returned by AddCustom for an empty name.
var ErrBlankName = errors.New("session: ingredient name is blank")

// RecipeService generates recipes and suggestions.
type RecipeService interface {
	RecipeFromIngredients(ctx context.Context, names []string) (*recipe.Recipe, error)
	RecipeByName(ctx context.Context, name string) (*recipe.Recipe, error)
	Recommendations(ctx context.Context) []recipe.Recommendation
}

// ImageService renders a drink photo as a data URI.
type ImageService interface {
	DrinkImage(ctx context.Context, name, description, glassware string) (string, error)
}

// ImageStatus is the state of the image slot on the result screen.
type ImageStatus string

const (
	ImageLoading ImageStatus = "loading"
	ImageReady   ImageStatus = "ready"
	ImageFailed  ImageStatus = "failed"
)

// Image is the photo for the recipe identified by RecipeID.
type Image struct {
	RecipeID uint64      `json:"recipeId"`
	Status   ImageStatus `json:"status"`
	URI      string      `json:"uri,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Snapshot is a consistent copy of the session for rendering.
type Snapshot struct {
	State                  State                   `json:"state"`
	Recipe                 *recipe.Recipe          `json:"recipe,omitempty"`
	Error                  string                  `json:"error,omitempty"`
	Image                  *Image                  `json:"image,omitempty"`
	Selected               []string                `json:"selected"`
	Custom                 []catalog.Ingredient    `json:"custom"`
	Recommendations        []recipe.Recommendation `json:"recommendations"`
	RecommendationsLoading bool                    `json:"recommendationsLoading"`
}

// IsSelected reports whether id is in the snapshot's selection.
func (s Snapshot) IsSelected(id string) bool {
	return slices.Contains(s.Selected, id)
}

// Options tunes a Controller.
type Options struct {
	// Timeout bounds each remote call. Zero means no extra deadline.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Controller orchestrates the session. All methods are safe for concurrent use.
type Controller struct {
	recipes RecipeService
	images  ImageService
	timeout time.Duration
	log     *zap.Logger

	// base parents background recipe and image requests, which outlive the request that started them.
	base context.Context
	wg   sync.WaitGroup

	mu          sync.Mutex
	view        View
	sel         *selection.State
	recs        []recipe.Recommendation
	recsLoading bool
	recsFetched bool
	image       Image
	imageSeq    uint64
}

// New creates a Controller on the selection screen.
func New(ctx context.Context, recipes RecipeService, images ImageService, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		recipes:     recipes,
		images:      images,
		timeout:     opts.Timeout,
		log:         log.Named("session"),
		base:        ctx,
		view:        View{State: Selecting},
		sel:         selection.New(),
		recs:        []recipe.Recommendation{},
		recsLoading: true,
	}
}

// Toggle flips the selection of id.
func (c *Controller) Toggle(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Toggle(id)
}

// AddCustom adds and selects a user ingredient.
func (c *Controller) AddCustom(name string) (catalog.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.Ingredient{}, ErrBlankName
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.AddCustom(name), nil
}

// Clear deselects everything.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Clear()
}

// Generate asks for a recipe built from the current selection and blocks
// until it arrives or fails. It returns ErrRefused when the session is not on
// the selection screen or nothing is selected; generation failures are
// turned into the session's error message and not returned.
func (c *Controller) Generate(ctx context.Context) error {
	names, err := c.beginGenerate()
	if err != nil {
		return err
	}
	c.fromIngredients(ctx, names)
	return nil
}

// StartGenerate moves the session to GENERATING and returns once the
// transition is visible in Snapshot. The recipe request runs in the
// background; Wait blocks until it and any image request it starts are done.
func (c *Controller) StartGenerate() error {
	names, err := c.beginGenerate()
	if err != nil {
		return err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.fromIngredients(c.base, names)
	}()
	return nil
}

// PickRecommendation asks for the recipe of a suggested drink.
func (c *Controller) PickRecommendation(ctx context.Context, name string) error {
	name, err := c.beginPick(name)
	if err != nil {
		return err
	}
	c.byName(ctx, name)
	return nil
}

// StartPick is PickRecommendation with the recipe request moved to the
// background, like StartGenerate.
func (c *Controller) StartPick(name string) error {
	name, err := c.beginPick(name)
	if err != nil {
		return err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.byName(c.base, name)
	}()
	return nil
}

func (c *Controller) beginGenerate() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.apply(Generate{Selected: c.sel.Len()}); err != nil {
		return nil, err
	}
	return c.sel.Names(), nil
}

func (c *Controller) beginPick(name string) (string, error) {
	name = strings.TrimSpace(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.apply(PickRecommendation{Name: name}); err != nil {
		return "", err
	}
	return name, nil
}

func (c *Controller) fromIngredients(ctx context.Context, names []string) {
	c.log.Info("generating recipe from ingredients", zap.Strings("ingredients", names))
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	r, err := c.recipes.RecipeFromIngredients(ctx, names)
	c.finish(r, err, MsgIngredientsFailed)
}

func (c *Controller) byName(ctx context.Context, name string) {
	c.log.Info("generating recipe for recommendation", zap.String("name", name))
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	r, err := c.recipes.RecipeByName(ctx, name)
	c.finish(r, err, MsgRecommendationFailed)
}

// Reset discards the recipe and returns to the selection screen. The
// selection is kept.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.apply(Reset{}); err != nil {
		return err
	}
	c.image = Image{}
	return nil
}

// RetryImage requests the current recipe's image again.
func (c *Controller) RetryImage() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.State != Result {
		return ErrRefused
	}
	c.startImage()
	return nil
}

// LoadRecommendations fetches the suggestion list. Only the first call
// does any work.
func (c *Controller) LoadRecommendations(ctx context.Context) {
	c.mu.Lock()
	if c.recsFetched {
		c.mu.Unlock()
		return
	}
	c.recsFetched = true
	c.mu.Unlock()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	recs := c.recipes.Recommendations(ctx)
	if recs == nil {
		recs = []recipe.Recommendation{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = recs
	c.recsLoading = false
	c.log.Info("recommendations loaded", zap.Int("count", len(recs)))
}

// Snapshot returns a copy of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:                  c.view.State,
		Recipe:                 c.view.Recipe,
		Error:                  c.view.Error,
		Selected:               c.sel.Selected(),
		Custom:                 c.sel.Custom(),
		Recommendations:        slices.Clone(c.recs),
		RecommendationsLoading: c.recsLoading,
	}
	if s.Selected == nil {
		s.Selected = []string{}
	}
	if s.Custom == nil {
		s.Custom = []catalog.Ingredient{}
	}
	if c.view.State == Result {
		img := c.image
		s.Image = &img
	}
	return s
}

// Wait blocks until background recipe and image requests have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// apply runs the transition function. Callers hold mu.
func (c *Controller) apply(e Event) error {
	v, err := Next(c.view, e)
	if err != nil {
		return err
	}
	c.view = v
	return nil
}

func (c *Controller) finish(r *recipe.Recipe, err error, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.log.Error("recipe generation failed", zap.Error(err))
		_ = c.apply(Failed{Message: msg})
		return
	}
	if err := c.apply(Generated{Recipe: r}); err != nil {
		c.log.Error("recipe generation returned no recipe", zap.Error(err))
		_ = c.apply(Failed{Message: msg})
		return
	}
	c.log.Info("recipe ready", zap.String("name", r.Name), zap.Uint64("recipe_id", c.view.RecipeID))
	c.startImage()
}

// startImage requests the image for the current recipe in the background.
// Only the latest request for the still current recipe may store its result.
// Callers hold mu.
func (c *Controller) startImage() {
	c.imageSeq++
	seq := c.imageSeq
	id := c.view.RecipeID
	r := *c.view.Recipe
	c.image = Image{RecipeID: id, Status: ImageLoading}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := c.withTimeout(c.base)
		defer cancel()
		uri, err := c.images.DrinkImage(ctx, r.Name, r.Description, r.Glassware)

		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.imageSeq || c.view.State != Result || c.view.RecipeID != id {
			c.log.Debug("dropping stale image", zap.Uint64("recipe_id", id))
			return
		}
		if err != nil {
			c.log.Error("image generation failed", zap.Error(err), zap.String("name", r.Name))
			c.image = Image{RecipeID: id, Status: ImageFailed, Error: MsgImageFailed}
			return
		}
		c.image = Image{RecipeID: id, Status: ImageReady, URI: uri}
	}()
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

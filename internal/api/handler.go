package api

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mixalchemist/internal/catalog"
	"mixalchemist/internal/session"
)

//go:embed templates
var templatesFS embed.FS

// Session defines the operations the handlers drive.
type Session interface {
	Toggle(id string)
	AddCustom(name string) (catalog.Ingredient, error)
	Clear()
	Generate(ctx context.Context) error
	PickRecommendation(ctx context.Context, name string) error
	StartGenerate() error
	StartPick(name string) error
	Reset() error
	RetryImage() error
	Snapshot() session.Snapshot
}

// Handler handles HTTP requests.
type Handler struct {
	Session Session
	log     *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(s Session, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Session: s, log: log.Named("api")}
}

// Register loads the templates and mounts every route on r.
func (h *Handler) Register(r *gin.Engine) error {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		// Image URIs are produced by the image service, never by users.
		"dataURI": func(s string) template.URL { return template.URL(s) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFileFS("/static/style.css", "templates/style.css", http.FS(templatesFS))

	r.GET("/", h.Index)
	r.POST("/ingredients/:id/toggle", h.ToggleForm)
	r.POST("/ingredients/custom", h.AddCustomForm)
	r.POST("/selection/clear", h.ClearForm)
	r.POST("/generate", h.GenerateForm)
	r.POST("/recommendations/pick", h.PickForm)
	r.POST("/reset", h.ResetForm)
	r.POST("/image/retry", h.RetryImageForm)

	api := r.Group("/api")
	api.GET("/state", h.GetState)
	api.GET("/ingredients", h.GetIngredients)
	api.POST("/ingredients/:id/toggle", h.Toggle)
	api.POST("/ingredients/custom", h.AddCustom)
	api.POST("/selection/clear", h.Clear)
	api.POST("/generate", h.Generate)
	api.POST("/recommendations/pick", h.Pick)
	api.POST("/reset", h.Reset)
	api.POST("/image/retry", h.RetryImage)
	return nil
}

type page struct {
	Snap      session.Snapshot
	Groups    []catalog.Group
	Count     int
	Refresh   bool
	Skeletons []struct{}
}

// Index renders the screen for the current state.
func (h *Handler) Index(c *gin.Context) {
	snap := h.Session.Snapshot()
	refresh := snap.State == session.Generating ||
		(snap.State == session.Result && snap.Image != nil && snap.Image.Status == session.ImageLoading) ||
		(snap.State == session.Selecting && snap.RecommendationsLoading)

	c.HTML(http.StatusOK, "index.html", page{
		Snap:      snap,
		Groups:    catalog.GroupWith(snap.Custom),
		Count:     len(snap.Selected),
		Refresh:   refresh,
		Skeletons: make([]struct{}, 5),
	})
}

func (h *Handler) ToggleForm(c *gin.Context) {
	h.Session.Toggle(c.Param("id"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) AddCustomForm(c *gin.Context) {
	// Blank names are ignored, the same as a disabled Add button.
	if _, err := h.Session.AddCustom(c.PostForm("name")); err != nil && !errors.Is(err, session.ErrBlankName) {
		h.log.Error("failed to add ingredient", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ClearForm(c *gin.Context) {
	h.Session.Clear()
	c.Redirect(http.StatusSeeOther, "/")
}

// GenerateForm switches the session to GENERATING before redirecting, so
// the page it redirects to is the loading screen. The model call continues
// in the background.
func (h *Handler) GenerateForm(c *gin.Context) {
	if err := h.Session.StartGenerate(); err != nil {
		h.log.Warn("generate refused", zap.Error(err), zap.String("state", string(h.Session.Snapshot().State)))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) PickForm(c *gin.Context) {
	name := c.PostForm("name")
	if err := h.Session.StartPick(name); err != nil {
		h.log.Warn("recommendation pick refused", zap.Error(err), zap.String("name", name))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ResetForm(c *gin.Context) {
	if err := h.Session.Reset(); err != nil {
		h.log.Debug("reset ignored", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) RetryImageForm(c *gin.Context) {
	if err := h.Session.RetryImage(); err != nil {
		h.log.Debug("image retry ignored", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GetState returns the session snapshot.
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Session.Snapshot())
}

// GetIngredients returns the catalog grouped for display, custom additions included.
func (h *Handler) GetIngredients(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.GroupWith(h.Session.Snapshot().Custom))
}

func (h *Handler) Toggle(c *gin.Context) {
	h.Session.Toggle(c.Param("id"))
	c.JSON(http.StatusOK, h.Session.Snapshot())
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) AddCustom(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ing, err := h.Session.AddCustom(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredient": ing, "state": h.Session.Snapshot()})
}

func (h *Handler) Clear(c *gin.Context) {
	h.Session.Clear()
	c.JSON(http.StatusOK, h.Session.Snapshot())
}

// Generate runs generation synchronously and returns the resulting state.
func (h *Handler) Generate(c *gin.Context) {
	h.respond(c, h.Session.Generate(c.Request.Context()))
}

func (h *Handler) Pick(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, h.Session.PickRecommendation(c.Request.Context(), req.Name))
}

func (h *Handler) Reset(c *gin.Context) {
	h.respond(c, h.Session.Reset())
}

func (h *Handler) RetryImage(c *gin.Context) {
	h.respond(c, h.Session.RetryImage())
}

func (h *Handler) respond(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrRefused):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": h.Session.Snapshot()})
	case err != nil:
		h.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, h.Session.Snapshot())
	}
}

// Package imagen renders drink photos through the Imagen image model.
package imagen

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"net"

	"github.com/nfnt/resize"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"mixalchemist/internal/metrics"
	"mixalchemist/internal/recipe"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "imagen-4.0-generate-001"

const dataURIPrefix = "data:image/jpeg;base64,"

// Config configures a Client.
type Config struct {
	APIKey string
	Model  string
	// MaxWidth downscales wider images before encoding. Zero keeps the model output as is.
	MaxWidth uint
}

// imageGenerator returns the bytes of the first generated image, or nil if
// the response carried none.
type imageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Client generates drink images.
type Client struct {
	gen      imageGenerator
	maxWidth uint
	log      *zap.Logger
}

// NewClient creates a new Imagen client.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return newClient(&modelGenerator{client: client, model: model}, cfg.MaxWidth, log), nil
}

func newClient(gen imageGenerator, maxWidth uint, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{gen: gen, maxWidth: maxWidth, log: log.Named("imagen")}
}

// DrinkImage renders a photo of the described drink and returns it as a
// data:image/jpeg;base64 URI.
func (c *Client) DrinkImage(ctx context.Context, name, description, glassware string) (string, error) {
	uri, err := c.drinkImage(ctx, name, description, glassware)
	metrics.Observe(metrics.KindImage, err)
	return uri, err
}

func (c *Client) drinkImage(ctx context.Context, name, description, glassware string) (string, error) {
	data, err := c.gen.GenerateImage(ctx, drinkPrompt(name, description, glassware))
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return "", fmt.Errorf("%w: %w: %w", recipe.ErrGeneration, recipe.ErrNetwork, err)
		}
		return "", fmt.Errorf("%w: %w", recipe.ErrGeneration, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: failed to generate image", recipe.ErrGeneration)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(c.shrink(data)), nil
}

// shrink downscales data to maxWidth. Undecodable or already small images
// are returned untouched.
func (c *Client) shrink(data []byte) []byte {
	if c.maxWidth == 0 {
		return data
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		c.log.Warn("failed to decode generated image, keeping original", zap.Error(err))
		return data
	}
	if uint(img.Bounds().Dx()) <= c.maxWidth {
		return data
	}

	resized := resize.Resize(c.maxWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		c.log.Warn("failed to encode resized image, keeping original", zap.Error(err))
		return data
	}
	return buf.Bytes()
}

func drinkPrompt(name, description, glassware string) string {
	return fmt.Sprintf(`Professional studio photography of a cocktail named %q.
Description: %s.
Glassware: %s.
The lighting should be moody and elegant, typical of a high-end speakeasy bar.
4k resolution, shallow depth of field, garnish clearly visible.`, name, description, glassware)
}

type modelGenerator struct {
	client *genai.Client
	model  string
}

func (g *modelGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, nil
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

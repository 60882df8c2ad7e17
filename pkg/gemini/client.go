package gemini

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// Client defines the single text-generation capability the rest of the
// application depends on. Components take this interface, never the SDK.
type Client interface {
	GenerateText(ctx context.Context, prompt string, params Params) (string, error)
}

// Params are the generation parameters for one call.
type Params struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// DefaultParams returns the generation parameters used for every book
// analysis call.
func DefaultParams() Params {
	return Params{
		Temperature:     1.0,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 8192,
	}
}

// sdkClient implements Client using the official genai SDK.
type sdkClient struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed Client. A missing API key is a fatal
// configuration error: construction fails rather than deferring to the
// first call.
func NewClient(ctx context.Context, apiKey, model string) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key not set (GEMINI_API_KEY)")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}

	return &sdkClient{client: c, model: model}, nil
}

func (c *sdkClient) GenerateText(ctx context.Context, prompt string, params Params) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Temperature),
		TopP:            genai.Ptr(params.TopP),
		TopK:            genai.Ptr(params.TopK),
		MaxOutputTokens: params.MaxOutputTokens,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", eris.Wrap(err, "gemini: generate content")
	}

	return resp.Text(), nil
}

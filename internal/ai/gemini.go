package ai

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the genai SDK
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a client. An empty baseURL selects the public API.
func NewGeminiClient(ctx context.Context, apiKey, baseURL, model string, httpClient *http.Client) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Complete sends one user turn with inline binary parts
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	for _, att := range req.Attachments {
		parts = append(parts, genai.NewPartFromBytes(att.Data, baseMediaType(att.MimeType)))
	}
	parts = append(parts, genai.NewPartFromText(req.User))

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", invalid(req.Step, "gemini response contains no text")
	}
	return text, nil
}

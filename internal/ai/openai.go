package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAIClient calls the OpenAI Chat Completions API
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient creates a client. An empty baseURL selects the public API.
func NewOpenAIClient(apiKey, baseURL, model string, httpClient *http.Client) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}
}

type openAIRequest struct {
	Model               string            `json:"model"`
	Messages            []openAIMessage   `json:"messages"`
	MaxTokens           int               `json:"max_tokens,omitempty"`
	MaxCompletionTokens int               `json:"max_completion_tokens,omitempty"`
	Temperature         *float64          `json:"temperature,omitempty"`
	ResponseFormat      *openAIRespFormat `json:"response_format,omitempty"`
}

type openAIRespFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
	File     *openAIFile     `json:"file,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIFile struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func dataURL(att Attachment) string {
	return "data:" + baseMediaType(att.MimeType) + ";base64," + base64.StdEncoding.EncodeToString(att.Data)
}

// Complete sends a chat completion. Reasoning models get max_completion_tokens.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai API key not configured")
	}

	var messages []openAIMessage
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}

	if len(req.Attachments) == 0 {
		messages = append(messages, openAIMessage{Role: "user", Content: req.User})
	} else {
		parts := make([]openAIPart, 0, len(req.Attachments)+1)
		for _, att := range req.Attachments {
			if strings.HasPrefix(baseMediaType(att.MimeType), "image/") {
				parts = append(parts, openAIPart{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL(att)}})
				continue
			}
			parts = append(parts, openAIPart{Type: "file", File: &openAIFile{Filename: att.Name, FileData: dataURL(att)}})
		}
		parts = append(parts, openAIPart{Type: "text", Text: req.User})
		messages = append(messages, openAIMessage{Role: "user", Content: parts})
	}

	payload := openAIRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if IsReasoningModel(c.model) {
		payload.MaxCompletionTokens = req.MaxTokens
	} else {
		payload.MaxTokens = req.MaxTokens
	}
	if req.JSONMode {
		payload.ResponseFormat = &openAIRespFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed openAIResponse
	parseErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		if parseErr == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &StatusError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode, Message: msg}
	}
	if parseErr != nil {
		return "", fmt.Errorf("failed to parse response: %w", parseErr)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", invalid(req.Step, "openai response contains no text")
	}
	return parsed.Choices[0].Message.Content, nil
}

package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnthropicClient_Complete(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"ok\":"},{"type":"text","text":"true}"}]}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("secret", server.URL, "claude-test", server.Client())
	text, err := client.Complete(context.Background(), Request{
		System:      "sys",
		User:        "hello",
		MaxTokens:   100,
		Attachments: []Attachment{{Name: "a.pdf", MimeType: "application/pdf", Data: []byte("%PDF")}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	assert.Equal(t, "claude-test", captured["model"])
	assert.Equal(t, "sys", captured["system"])
	assert.EqualValues(t, 100, captured["max_tokens"])

	messages := captured["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "document", content[0].(map[string]any)["type"])
	assert.Equal(t, "text", content[1].(map[string]any)["type"])
}

func TestAnthropicClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer server.Close()

	_, err := NewAnthropicClient("secret", server.URL, "m", server.Client()).Complete(context.Background(), Request{User: "x", MaxTokens: 1})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 529, statusErr.StatusCode)
	assert.Equal(t, "Overloaded", statusErr.Message)
	assert.True(t, IsTransient(err))
}

func TestClients_EmptyTextIsInvalidResponse(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		client func(url string, hc *http.Client) Completer
	}{
		{
			name:   "anthropic without text blocks",
			body:   `{"content":[]}`,
			client: func(url string, hc *http.Client) Completer { return NewAnthropicClient("secret", url, "m", hc) },
		},
		{
			name:   "anthropic with only empty text",
			body:   `{"content":[{"type":"text","text":""}]}`,
			client: func(url string, hc *http.Client) Completer { return NewAnthropicClient("secret", url, "m", hc) },
		},
		{
			name:   "openai with empty content",
			body:   `{"choices":[{"message":{"content":""}}]}`,
			client: func(url string, hc *http.Client) Completer { return NewOpenAIClient("key", url, "gpt-4o", hc) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := tt.client(server.URL, server.Client()).
				Complete(context.Background(), Request{Step: domain.StepEstimateTeam, User: "x", MaxTokens: 1})
			require.Error(t, err)

			var invalidErr *InvalidResponseError
			require.True(t, errors.As(err, &invalidErr))
			assert.Equal(t, domain.StepEstimateTeam, invalidErr.Step)
			assert.Contains(t, invalidErr.Reason, "no text")
			assert.False(t, IsTransient(err))
		})
	}
}

func TestOpenAIClient_ReasoningModelUsesCompletionTokens(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	text, err := NewOpenAIClient("key", server.URL, "o1-mini", server.Client()).
		Complete(context.Background(), Request{User: "hi", MaxTokens: 3000})
	require.NoError(t, err)
	assert.Equal(t, "{}", text)

	assert.EqualValues(t, 3000, captured["max_completion_tokens"])
	assert.NotContains(t, captured, "max_tokens")
	assert.NotContains(t, captured, "response_format")
	assert.NotContains(t, captured, "temperature")
}

func TestOpenAIClient_ChatModelSendsJSONModeAndParts(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"done"}}]}`))
	}))
	defer server.Close()

	temp := 0.3
	_, err := NewOpenAIClient("key", server.URL, "gpt-4o", server.Client()).Complete(context.Background(), Request{
		System:      "sys",
		User:        "hi",
		MaxTokens:   10,
		JSONMode:    true,
		Temperature: &temp,
		Attachments: []Attachment{{Name: "shot.png", MimeType: "image/png", Data: []byte{0x89}}},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 10, captured["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	parts := messages[1].(map[string]any)["content"].([]any)
	assert.Equal(t, "image_url", parts[0].(map[string]any)["type"])
}

func TestOpenAIClient_MissingKey(t *testing.T) {
	_, err := NewOpenAIClient("", "", "gpt-4o", nil).Complete(context.Background(), Request{User: "x"})
	assert.Error(t, err)
}

func testSettings() map[ProviderID]ProviderSettings {
	return map[ProviderID]ProviderSettings{
		ProviderAnthropic: {APIKey: "a", Models: []string{"claude-sonnet-4-20250514"}, DefaultModel: "claude-sonnet-4-20250514"},
		ProviderOpenAI:    {APIKey: "", Models: []string{"gpt-4o"}, DefaultModel: "gpt-4o"},
	}
}

type nopCompleter struct{}

func (nopCompleter) Complete(context.Context, Request) (string, error) { return "", nil }

func TestRegistry_Get(t *testing.T) {
	factories := map[ProviderID]CompleterFactory{
		ProviderAnthropic: func(context.Context, ProviderSettings, string, *http.Client) (Completer, error) {
			return nopCompleter{}, nil
		},
	}
	r := NewRegistry(testSettings(), ProviderAnthropic, factories, nil, nil, zap.NewNop())

	p, err := r.Get(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, p.ID())
	assert.Equal(t, "claude-sonnet-4-20250514", p.Model())

	again, err := r.Get(context.Background(), "anthropic", "claude-sonnet-4-20250514")
	require.NoError(t, err)
	assert.Same(t, p, again)

	_, err = r.Get(context.Background(), "mistral", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = r.Get(context.Background(), "anthropic", "claude-2")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = r.Get(context.Background(), "openai", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegistry_Providers(t *testing.T) {
	r := NewRegistry(testSettings(), ProviderAnthropic, nil, nil, nil, zap.NewNop())

	infos := r.Providers()
	require.Len(t, infos, 1)
	assert.Equal(t, "anthropic", infos[0].ID)
	assert.True(t, infos[0].Default)
	assert.Equal(t, "Anthropic Claude", infos[0].Name)
}

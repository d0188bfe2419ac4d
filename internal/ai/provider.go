// Package ai runs the three-step estimation pipeline against a pluggable LLM backend.
package ai

import (
	"context"
	"mime"
	"strings"

	"github.com/straye-as/presales-api/internal/domain"
)

// ProviderID names a supported LLM backend
type ProviderID string

const (
	ProviderAnthropic ProviderID = "anthropic"
	ProviderOpenAI    ProviderID = "openai"
	ProviderGemini    ProviderID = "gemini"
)

// IsValid checks if the ProviderID is a valid enum value
func (id ProviderID) IsValid() bool {
	switch id {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
		return true
	}
	return false
}

// DisplayName returns the human readable provider name
func (id ProviderID) DisplayName() string {
	switch id {
	case ProviderAnthropic:
		return "Anthropic Claude"
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Google Gemini"
	}
	return string(id)
}

// AllProviders lists every supported backend in display order
func AllProviders() []ProviderID {
	return []ProviderID{ProviderAnthropic, ProviderOpenAI, ProviderGemini}
}

// Document is a source document loaded into memory for a pipeline run
type Document struct {
	Name     string
	MimeType string
	Data     []byte
}

// Provider performs the three estimation steps and returns the raw model text of each.
// Decoding and validation of that text is the orchestrator's job.
type Provider interface {
	ID() ProviderID
	Model() string
	AnalyzeScope(ctx context.Context, docs []Document, extraContext string) (string, error)
	EstimateTeam(ctx context.Context, analysis domain.ProjectAnalysis, exemplars string) (string, error)
	GenerateSchedule(ctx context.Context, team domain.TeamEstimation) (string, error)
}

// Attachment is a document as sent to a model
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// IsText reports whether the attachment can be inlined into a prompt as plain text
func (a Attachment) IsText() bool {
	mediaType := baseMediaType(a.MimeType)
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml":
		return true
	}
	return false
}

func baseMediaType(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mediaType
}

// Request is one completion call in provider-neutral form
type Request struct {
	Step        string
	System      string
	User        string
	Attachments []Attachment
	MaxTokens   int
	Temperature *float64
	JSONMode    bool
	// DroppedAttachments names binary attachments the model cannot accept
	DroppedAttachments []string
}

// Completer sends a negotiated request to a concrete backend
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

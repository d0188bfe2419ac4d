package ai

import (
	"strings"
)

// Capabilities describes what a provider model accepts
type Capabilities struct {
	SystemPrompt bool
	JSONMode     bool
	Temperature  bool
	// BinaryTypes lists media type prefixes accepted as binary attachments.
	// Empty means the model is text-only.
	BinaryTypes []string
}

// AcceptsBinary reports whether a binary attachment of mimeType can be sent as is
func (c Capabilities) AcceptsBinary(mimeType string) bool {
	mediaType := baseMediaType(mimeType)
	for _, prefix := range c.BinaryTypes {
		if strings.HasPrefix(mediaType, prefix) {
			return true
		}
	}
	return false
}

var (
	anthropicBinaryTypes = []string{"application/pdf", "image/png", "image/jpeg", "image/gif", "image/webp"}
	openAIBinaryTypes    = []string{"application/pdf", "image/png", "image/jpeg", "image/gif", "image/webp"}
	geminiBinaryTypes    = []string{"application/pdf", "image/", "audio/", "video/"}
)

// IsReasoningModel reports whether an OpenAI model belongs to the reasoning families
func IsReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// CapabilitiesFor returns the capability set of a provider model
func CapabilitiesFor(id ProviderID, model string) Capabilities {
	switch id {
	case ProviderAnthropic:
		return Capabilities{SystemPrompt: true, Temperature: true, BinaryTypes: anthropicBinaryTypes}
	case ProviderOpenAI:
		m := strings.ToLower(model)
		switch {
		case strings.HasPrefix(m, "gpt-5"):
			return Capabilities{BinaryTypes: openAIBinaryTypes}
		case IsReasoningModel(m):
			return Capabilities{}
		}
		return Capabilities{SystemPrompt: true, JSONMode: true, Temperature: true, BinaryTypes: openAIBinaryTypes}
	case ProviderGemini:
		return Capabilities{SystemPrompt: true, JSONMode: true, Temperature: true, BinaryTypes: geminiBinaryTypes}
	}
	return Capabilities{}
}

// NegotiateCapabilities rewrites req so it only uses features caps supports.
// Text attachments are always inlined into the user message. Binary attachments
// are kept when supported and dropped (and listed) otherwise. Without a system
// channel the system prompt is folded in front of the user text.
func NegotiateCapabilities(caps Capabilities, req Request) Request {
	out := req
	out.Attachments = nil
	out.DroppedAttachments = append([]string(nil), req.DroppedAttachments...)

	var inlined []string
	for _, att := range req.Attachments {
		switch {
		case att.IsText():
			inlined = append(inlined, "--- Document: "+att.Name+" ---\n"+strings.TrimSpace(string(att.Data)))
		case caps.AcceptsBinary(att.MimeType):
			out.Attachments = append(out.Attachments, att)
		default:
			out.DroppedAttachments = append(out.DroppedAttachments, att.Name)
		}
	}

	var user []string
	if !caps.SystemPrompt && strings.TrimSpace(req.System) != "" {
		user = append(user, req.System)
		out.System = ""
	}
	user = append(user, inlined...)
	user = append(user, req.User)
	out.User = strings.Join(user, "\n\n")

	if !caps.JSONMode {
		out.JSONMode = false
	}
	if !caps.Temperature {
		out.Temperature = nil
	}
	return out
}

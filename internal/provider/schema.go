// Package provider holds the request and result types shared by the
// generative-AI adapters.
package provider

// Schema types, lower-case JSON Schema names. Adapters translate them to
// whatever casing their API expects.
const (
	TypeArray  = "array"
	TypeObject = "object"
	TypeString = "string"
)

// Schema is the JSON-Schema subset the text providers understand.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// TextRequest asks a provider for structured JSON text.
type TextRequest struct {
	Prompt string
	Schema *Schema
}

// SpeechRequest asks a provider to read Text aloud with a prebuilt voice.
type SpeechRequest struct {
	Text  string
	Voice string
}

// SpeechResult is the audio returned by the provider.
type SpeechResult struct {
	// Data is the raw PCM payload. Empty when the response carried none.
	Data     []byte
	MimeType string
}

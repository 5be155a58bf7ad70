package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

const (
	DefaultTextModel   = "gemini-2.5-flash"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
)

// Options configures the Gemini adapter.
type Options struct {
	APIKey      string
	TextModel   string
	SpeechModel string
	Timeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.TextModel == "" {
		o.TextModel = DefaultTextModel
	}
	if o.SpeechModel == "" {
		o.SpeechModel = DefaultSpeechModel
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// Provider generates structured text and speech through the Gemini API.
type Provider struct {
	client *genai.Client
	// initErr is returned by every call when the client could not be built,
	// typically because no API key is configured.
	initErr error
	opts    Options
	log     *slog.Logger
}

// NewProvider creates a Provider against the public Gemini API.
func NewProvider(opts Options, logger *slog.Logger) *Provider {
	return NewProviderWithURL("", opts, logger)
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
// An empty baseURL selects the SDK default.
func NewProviderWithURL(baseURL string, opts Options, logger *slog.Logger) *Provider {
	opts = opts.withDefaults()
	p := &Provider{opts: opts, log: logger.With("adapter", "gemini")}

	p.client, p.initErr = genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: opts.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if p.initErr != nil {
		p.log.Warn("gemini client unavailable, requests will fail", slog.String("error", p.initErr.Error()))
	}
	return p
}

// GenerateText sends the prompt with a JSON response schema and returns the
// concatenated text of the first candidate. An empty string with a nil error
// means the model produced no text.
func (p *Provider) GenerateText(ctx context.Context, req provider.TextRequest) (string, error) {
	var cfg *genai.GenerateContentConfig
	if req.Schema != nil {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   toSchema(req.Schema),
		}
	}

	resp, err := p.generate(ctx, p.opts.TextModel, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	p.log.DebugContext(ctx, "gemini text response",
		slog.Int("candidates", len(resp.Candidates)),
		slog.Int("length", len(text)),
	)
	return text, nil
}

// SynthesizeSpeech asks the TTS model to read the text with a prebuilt voice.
// Data is the inline audio of the first part and is empty when the response
// has none.
func (p *Provider) SynthesizeSpeech(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResult, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: req.Voice},
			},
		},
	}

	resp, err := p.generate(ctx, p.opts.SpeechModel, genai.Text(req.Text), cfg)
	if err != nil {
		return provider.SpeechResult{}, err
	}

	var result provider.SpeechResult
	if blob := firstInlineData(resp); blob != nil {
		result.Data = blob.Data
		result.MimeType = blob.MIMEType
	}

	p.log.DebugContext(ctx, "gemini speech response",
		slog.String("voice", req.Voice),
		slog.String("mime_type", result.MimeType),
		slog.Int("bytes", len(result.Data)),
	)
	return result, nil
}

func (p *Provider) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if p.initErr != nil {
		return nil, fmt.Errorf("gemini: %w", p.initErr)
	}

	p.log.DebugContext(ctx, "gemini request", slog.String("model", model))

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		p.log.ErrorContext(ctx, "gemini request failed", slog.String("model", model), slog.String("error", err.Error()))
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	return resp, nil
}

func firstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	if len(resp.Candidates) == 0 {
		return nil
	}
	c := resp.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 {
		return nil
	}
	return c.Parts[0].InlineData
}

func toSchema(s *provider.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
		Required:    s.Required,
		Items:       toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

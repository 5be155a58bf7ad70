package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

const (
	DefaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 2048
)

var errNoJSONArray = errors.New("no JSON array found in response")

// Options configures the Anthropic adapter.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int64
	// BaseURL overrides the API endpoint (for testing).
	BaseURL string
}

// Provider generates structured text through the Anthropic Messages API.
// It does not synthesize speech.
type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

// NewProvider creates a Provider. Retries are disabled: a failed generation
// is reported to the learner, who retries explicitly.
func NewProvider(opts Options, logger *slog.Logger) *Provider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Provider{
		client:    anthropic.NewClient(reqOpts...),
		model:     model,
		maxTokens: maxTokens,
		log:       logger.With("adapter", "anthropic"),
	}
}

// GenerateText asks Claude for JSON matching req.Schema and returns the JSON
// array found in the reply. An empty reply yields "" and a nil error.
func (p *Provider) GenerateText(ctx context.Context, req provider.TextRequest) (string, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return "", err
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		p.log.ErrorContext(ctx, "anthropic request failed", slog.String("model", p.model), slog.String("error", err.Error()))
		return "", fmt.Errorf("anthropic: messages api: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())

	p.log.DebugContext(ctx, "anthropic response",
		slog.String("stop_reason", string(msg.StopReason)),
		slog.Int("length", len(text)),
	)

	if text == "" {
		return "", nil
	}

	jsonStr, err := extractJSONArray(text)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	return jsonStr, nil
}

func buildPrompt(req provider.TextRequest) (string, error) {
	if req.Schema == nil {
		return req.Prompt, nil
	}
	schema, err := json.MarshalIndent(req.Schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("anthropic: encode schema: %w", err)
	}
	return fmt.Sprintf(`%s

Output ONLY valid JSON matching this JSON Schema, no markdown, no explanations:
%s`, req.Prompt, schema), nil
}

// extractJSONArray returns the text between the first '[' and the last ']'.
func extractJSONArray(s string) (string, error) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end <= start {
		return "", errNoJSONArray
	}
	return s[start : end+1], nil
}

package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func messageResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"id":            "msg_01",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-sonnet-4-5",
		"content":       []map[string]any{{"type": "text", "text": text}},
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"usage":         map[string]any{"input_tokens": 10, "output_tokens": 20},
	})
	return string(body)
}

func newServer(t *testing.T, status int, body string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if gotPrompt != nil {
			var req struct {
				Messages []struct {
					Content []struct {
						Text string `json:"text"`
					} `json:"content"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
				*gotPrompt = req.Messages[0].Content[0].Text
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_GenerateText_ExtractsArray(t *testing.T) {
	t.Parallel()

	var prompt string
	srv := newServer(t, http.StatusOK, messageResponse("Here you go:\n```json\n[{\"word\":\"cat\"}]\n```"), &prompt)

	p := NewProvider(Options{APIKey: "k", BaseURL: srv.URL}, newTestLogger())
	text, err := p.GenerateText(context.Background(), provider.TextRequest{
		Prompt: "words about animals",
		Schema: &provider.Schema{Type: provider.TypeArray, Items: &provider.Schema{Type: provider.TypeObject}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `[{"word":"cat"}]` {
		t.Errorf("text = %q", text)
	}
	if !strings.HasPrefix(prompt, "words about animals") || !strings.Contains(prompt, `"type": "array"`) {
		t.Errorf("schema not rendered into prompt: %q", prompt)
	}
}

func TestProvider_GenerateText_EmptyReply(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusOK, messageResponse("   "), nil)

	p := NewProvider(Options{BaseURL: srv.URL}, newTestLogger())
	text, err := p.GenerateText(context.Background(), provider.TextRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestProvider_GenerateText_NoArray(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusOK, messageResponse("I cannot help with that."), nil)

	p := NewProvider(Options{BaseURL: srv.URL}, newTestLogger())
	_, err := p.GenerateText(context.Background(), provider.TextRequest{Prompt: "x"})
	if !errors.Is(err, errNoJSONArray) {
		t.Fatalf("err = %v, want errNoJSONArray", err)
	}
}

func TestProvider_GenerateText_APIError(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusUnauthorized,
		`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil)

	p := NewProvider(Options{BaseURL: srv.URL}, newTestLogger())
	if _, err := p.GenerateText(context.Background(), provider.TextRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractJSONArray(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare", in: `[1,2]`, want: `[1,2]`},
		{name: "surrounded", in: "text [\n{\"a\":[1]}\n] more", want: "[\n{\"a\":[1]}\n]"},
		{name: "missing", in: `{"a":1}`, wantErr: true},
		{name: "reversed", in: `] [`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractJSONArray(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

package rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/myvocab-backend/internal/audio"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// speechService defines the minimal interface needed by PronunciationHandler.
type speechService interface {
	PronunciationWAV(ctx context.Context, word string) ([]byte, error)
	Play(ctx context.Context, word string)
}

// audioOutput is the shared output that /api/audio/stream listens to.
type audioOutput interface {
	Subscribe(queue int) (<-chan audio.Clip, func())
}

// PronunciationHandler serves pronunciation audio.
type PronunciationHandler struct {
	speech    speechService
	output    audioOutput
	queue     int
	keepalive time.Duration
	validate  *bodyValidator
	log       *slog.Logger
}

// NewPronunciationHandler creates a PronunciationHandler. queue is the
// per-listener clip buffer of the audio stream.
func NewPronunciationHandler(speech speechService, output audioOutput, queue int, logger *slog.Logger) *PronunciationHandler {
	return &PronunciationHandler{
		speech:    speech,
		output:    output,
		queue:     queue,
		keepalive: 15 * time.Second,
		validate:  newBodyValidator(),
		log:       logger.With("handler", "pronunciation"),
	}
}

type playRequest struct {
	Word string `json:"word" validate:"required,max=100"`
}

type clipEvent struct {
	ID         string    `json:"id"`
	Word       string    `json:"word"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
	WAV        string    `json:"wav"`
}

// WAV handles GET /api/pronunciations?word=...
func (h *PronunciationHandler) WAV(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		handleError(w, r, h.log, domain.NewValidationError("word", "required"))
		return
	}

	wav, err := h.speech.PronunciationWAV(r.Context(), word)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(wav) //nolint:errcheck
}

// Play handles POST /api/pronunciations/play. Playback is fire-and-forget:
// the clip reaches /api/audio/stream listeners once synthesized.
func (h *PronunciationHandler) Play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	h.speech.Play(r.Context(), req.Word)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "word": req.Word})
}

// Stream handles GET /api/audio/stream: a server-sent event stream with one
// "clip" event per started pronunciation.
func (h *PronunciationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	clips, unsubscribe := h.output.Subscribe(h.queue)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": listening\n\n")
	if err := rc.Flush(); err != nil {
		h.log.WarnContext(r.Context(), "audio stream not flushable", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
		case clip, ok := <-clips:
			if !ok {
				return
			}
			if err := writeClipEvent(w, clip); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeClipEvent(w http.ResponseWriter, clip audio.Clip) error {
	payload, err := json.Marshal(clipEvent{
		ID:         clip.ID.String(),
		Word:       clip.Label,
		StartedAt:  clip.StartedAt,
		DurationMs: clip.Buffer.Duration().Milliseconds(),
		WAV:        base64.StdEncoding.EncodeToString(audio.EncodeWAV(clip.Buffer)),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: clip\ndata: %s\n\n", clip.ID, payload)
	return err
}

package rest

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/service/history"
	"github.com/heartmarshall/myvocab-backend/pkg/ctxutil"
)

// historyService defines the minimal interface needed by ResultsHandler.
type historyService interface {
	ListBySession(ctx context.Context, in history.ListInput) ([]domain.QuizRecord, error)
	Summary(ctx context.Context) ([]domain.TopicSummary, error)
}

// ResultsHandler serves stored quiz history.
type ResultsHandler struct {
	svc historyService
	log *slog.Logger
}

// NewResultsHandler creates a ResultsHandler.
func NewResultsHandler(svc historyService, logger *slog.Logger) *ResultsHandler {
	return &ResultsHandler{svc: svc, log: logger.With("handler", "results")}
}

type quizRecordResponse struct {
	ID          string                `json:"id"`
	SessionID   string                `json:"sessionId"`
	Topic       domain.Topic          `json:"topic"`
	Total       int                   `json:"total"`
	Correct     int                   `json:"correct"`
	Incorrect   int                   `json:"incorrect"`
	Percent     int                   `json:"percent"`
	Grade       domain.Grade          `json:"grade"`
	History     []domain.AnswerRecord `json:"history"`
	CompletedAt time.Time             `json:"completedAt"`
}

type topicSummaryResponse struct {
	Topic       domain.Topic `json:"topic"`
	Attempts    int          `json:"attempts"`
	AvgPercent  float64      `json:"avgPercent"`
	BestPercent int          `json:"bestPercent"`
}

// ListBySession handles GET /api/sessions/{id}/results?limit=N.
func (h *ResultsHandler) ListBySession(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(r)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	r = r.WithContext(ctxutil.WithSessionID(r.Context(), id))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			handleError(w, r, h.log, domain.NewValidationError("limit", "must be an integer"))
			return
		}
	}

	records, err := h.svc.ListBySession(r.Context(), history.ListInput{SessionID: id, Limit: limit})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]quizRecordResponse, len(records))
	for i, rec := range records {
		resp[i] = toQuizRecordResponse(rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": resp})
}

// Summary handles GET /api/results/summary.
func (h *ResultsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.Summary(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := make([]topicSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = topicSummaryResponse{
			Topic:       s.Topic,
			Attempts:    s.Attempts,
			AvgPercent:  math.Round(s.AvgPercent*10) / 10,
			BestPercent: s.BestPercent,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": resp})
}

func toQuizRecordResponse(rec domain.QuizRecord) quizRecordResponse {
	answers := rec.Result.History
	if answers == nil {
		answers = []domain.AnswerRecord{}
	}
	return quizRecordResponse{
		ID:          rec.ID.String(),
		SessionID:   rec.SessionID.String(),
		Topic:       rec.Topic,
		Total:       rec.Result.Total,
		Correct:     rec.Result.Correct,
		Incorrect:   rec.Result.Incorrect,
		Percent:     rec.Result.Percent(),
		Grade:       rec.Result.Grade(),
		History:     answers,
		CompletedAt: rec.CompletedAt,
	}
}

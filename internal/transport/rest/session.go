package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/service/session"
	"github.com/heartmarshall/myvocab-backend/pkg/ctxutil"
)

// sessionManager defines the minimal interface needed by SessionHandler.
type sessionManager interface {
	Create(topic string) (*session.Controller, error)
	Get(id uuid.UUID) (*session.Controller, error)
}

// SessionHandler exposes the learner session state machine.
type SessionHandler struct {
	sessions sessionManager
	validate *bodyValidator
	log      *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions sessionManager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		validate: newBodyValidator(),
		log:      logger.With("handler", "session"),
	}
}

type createSessionRequest struct {
	Topic string `json:"topic" validate:"omitempty,max=100"`
}

type selectTopicRequest struct {
	Topic string `json:"topic" validate:"required,max=100"`
}

type answerRequest struct {
	Choice *int `json:"choice" validate:"required,min=0"`
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	c, err := h.sessions.Create(req.Topic)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	h.respond(w, r, http.StatusCreated, c, c.Snapshot())
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(c *session.Controller) (session.Snapshot, error) {
		return c.Snapshot(), nil
	})
}

// SelectTopic handles POST /api/sessions/{id}/topic.
func (h *SessionHandler) SelectTopic(w http.ResponseWriter, r *http.Request) {
	var req selectTopicRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	h.withSession(w, r, func(c *session.Controller) (session.Snapshot, error) {
		return c.SelectTopic(req.Topic)
	})
}

// Refresh handles POST /api/sessions/{id}/refresh.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, (*session.Controller).Refresh)
}

// StartQuiz handles POST /api/sessions/{id}/quiz/start.
func (h *SessionHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, (*session.Controller).StartQuiz)
}

// Answer handles POST /api/sessions/{id}/quiz/answer.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, h.validate, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	h.withSession(w, r, func(c *session.Controller) (session.Snapshot, error) {
		return c.Answer(r.Context(), *req.Choice)
	})
}

// ExitQuiz handles POST /api/sessions/{id}/quiz/exit.
func (h *SessionHandler) ExitQuiz(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, (*session.Controller).ExitQuiz)
}

// Restart handles POST /api/sessions/{id}/restart.
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, (*session.Controller).Restart)
}

// Home handles POST /api/sessions/{id}/home.
func (h *SessionHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, (*session.Controller).Home)
}

// withSession resolves the {id} path parameter, runs op and writes the
// resulting snapshot.
func (h *SessionHandler) withSession(w http.ResponseWriter, r *http.Request, op func(c *session.Controller) (session.Snapshot, error)) {
	c, r, err := h.lookup(r)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	snap, err := op(c)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	h.respond(w, r, http.StatusOK, c, snap)
}

func (h *SessionHandler) lookup(r *http.Request) (*session.Controller, *http.Request, error) {
	id, err := parseSessionID(r)
	if err != nil {
		return nil, r, err
	}
	r = r.WithContext(ctxutil.WithSessionID(r.Context(), id))

	c, err := h.sessions.Get(id)
	if err != nil {
		return nil, r, err
	}
	return c, r, nil
}

// respond writes snap, or with ?wait=true the state after the in-flight
// fetch resolves.
func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, status int, c *session.Controller, snap session.Snapshot) {
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait && snap.Loading {
		awaited, err := c.Await(r.Context())
		if err != nil {
			// Client went away.
			return
		}
		snap = awaited
	}
	writeJSON(w, status, snap)
}

func parseSessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("session_id", "must be a UUID")
	}
	return id, nil
}

package rest

import (
	"net/http"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

type topicsResponse struct {
	Topics  []domain.Topic `json:"topics"`
	Default domain.Topic   `json:"default"`
}

// ListTopics handles GET /api/topics.
func ListTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, topicsResponse{
		Topics:  domain.Topics,
		Default: domain.DefaultTopic(),
	})
}

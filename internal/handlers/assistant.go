package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillsmatch/apiserver/internal/ai"
)

// AssistantHandler provides the chat and learning-path endpoints.
type AssistantHandler struct {
	assistant *ai.Assistant
}

func NewAssistantHandler(assistant *ai.Assistant) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// AssistantRouter registers assistant routes on the given router. All
// routes require authentication.
func AssistantRouter(r chi.Router, assistant *ai.Assistant, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAssistantHandler(assistant)

	r.Use(authMiddleware)
	r.Post("/chat", handler.Chat)
	r.Post("/learning-path", handler.LearningPath)
}

// Chat answers one assistant message.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	reply, err := h.assistant.Chat(r.Context(), actor, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// LearningPath generates an upskilling plan from the caller's skills
// profile.
func (h *AssistantHandler) LearningPath(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req LearningPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	path, err := h.assistant.LearningPath(r.Context(), actor, req.TargetRole)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, path)
}

type ChatRequest struct {
	Message string `json:"message"`
}

type LearningPathRequest struct {
	TargetRole string `json:"target_role"`
}

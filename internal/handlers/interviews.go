package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/types"
)

// InterviewHandler provides interview scheduling endpoints.
type InterviewHandler struct {
	interviewService *services.InterviewService
}

func NewInterviewHandler(interviewService *services.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

// InterviewRouter registers interview routes on the given router. All
// routes require authentication.
func InterviewRouter(r chi.Router, interviewService *services.InterviewService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewInterviewHandler(interviewService)

	r.Use(authMiddleware)
	r.Post("/", handler.Schedule)
	r.Get("/recruiter", handler.ListForRecruiter)
	r.Get("/mine", handler.ListMine)
	r.Delete("/stale", handler.PurgeStale)
	r.Route("/{interviewID}", func(r chi.Router) {
		r.Get("/", handler.GetInterview)
		r.Put("/", handler.Reschedule)
		r.Put("/status", handler.UpdateStatus)
	})
}

// Schedule books an interview round for an application.
func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ApplicationID < 1 {
		writeError(w, http.StatusBadRequest, "application_id is required")
		return
	}

	iv, err := h.interviewService.Schedule(r.Context(), actor, services.ScheduleInput{
		ApplicationID:   req.ApplicationID,
		InterviewerID:   req.InterviewerID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Mode:            req.Mode,
		Location:        req.Location,
		MeetingLink:     req.MeetingLink,
		Notes:           req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, iv)
}

// GetInterview returns one interview to its participants.
func (h *InterviewHandler) GetInterview(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "interviewID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	iv, err := h.interviewService.Get(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, iv)
}

// Reschedule updates the logistics of a booked round.
func (h *InterviewHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "interviewID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	iv, err := h.interviewService.Reschedule(r.Context(), actor, id, services.RescheduleInput{
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Mode:            req.Mode,
		Location:        req.Location,
		MeetingLink:     req.MeetingLink,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, iv)
}

// UpdateStatus records the interview outcome.
func (h *InterviewHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "interviewID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req InterviewStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	iv, err := h.interviewService.UpdateStatus(r.Context(), actor, id, req.Status, req.Notes, req.Feedback)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, iv)
}

// ListForRecruiter returns interviews across the caller's jobs.
func (h *InterviewHandler) ListForRecruiter(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	interviews, err := h.interviewService.ListForRecruiter(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interviews)
}

// ListMine returns the caller's own interviews.
func (h *InterviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	interviews, err := h.interviewService.ListForApplicant(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interviews)
}

// PurgeStale deletes interviews scheduled before the given cutoff.
// Admin only.
func (h *InterviewHandler) PurgeStale(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("before"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "before is required")
		return
	}
	cutoff, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid before timestamp")
		return
	}

	deleted, err := h.interviewService.PurgeStale(r.Context(), actor, cutoff)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PurgeResponse{Deleted: deleted})
}

type ScheduleRequest struct {
	ApplicationID   int       `json:"application_id"`
	InterviewerID   int       `json:"interviewer_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Mode            string    `json:"mode"`
	Location        string    `json:"location"`
	MeetingLink     string    `json:"meeting_link"`
	Notes           string    `json:"notes"`
}

type RescheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Mode            string    `json:"mode"`
	Location        string    `json:"location"`
	MeetingLink     string    `json:"meeting_link"`
}

type InterviewStatusRequest struct {
	Status   types.InterviewStatus    `json:"status"`
	Notes    string                   `json:"notes"`
	Feedback *types.InterviewFeedback `json:"feedback"`
}

type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

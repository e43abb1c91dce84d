package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/types"
)

// ApplicationHandler provides application lifecycle endpoints.
type ApplicationHandler struct {
	appService *services.ApplicationService
}

func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// ApplicationRouter registers application routes on the given router.
// All routes require authentication.
func ApplicationRouter(r chi.Router, appService *services.ApplicationService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewApplicationHandler(appService)

	r.Use(authMiddleware)
	r.Post("/", handler.Apply)
	r.Get("/mine", handler.ListMyApplications)
	r.Route("/{applicationID}", func(r chi.Router) {
		r.Get("/", handler.GetApplication)
		r.Put("/status", handler.UpdateStatus)
		r.Post("/withdraw", handler.Withdraw)
	})
}

// Apply submits an application to a job.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.JobID < 1 {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	app, err := h.appService.Apply(r.Context(), actor, req.JobID, req.CoverLetter, req.DocumentKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

// GetApplication returns one application to its applicant, the owning
// recruiter, or an admin.
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "applicationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := h.appService.Get(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

// ListMyApplications returns the caller's applications, newest first.
func (h *ApplicationHandler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	apps, err := h.appService.ListMine(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

// UpdateStatus moves an application along the lifecycle.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "applicationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	app, err := h.appService.UpdateStatus(r.Context(), actor, id, req.Status, req.Feedback)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

// Withdraw moves the caller's own application to withdrawn.
func (h *ApplicationHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "applicationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := h.appService.Withdraw(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

type ApplyRequest struct {
	JobID       int    `json:"job_id"`
	CoverLetter string `json:"cover_letter"`
	DocumentKey string `json:"document_key"`
}

type StatusUpdateRequest struct {
	Status   types.ApplicationStatus `json:"status"`
	Feedback string                  `json:"feedback"`
}

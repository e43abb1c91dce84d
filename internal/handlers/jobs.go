package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/types"
)

// JobHandler provides job posting endpoints.
type JobHandler struct {
	jobService *services.JobService
	appService *services.ApplicationService
}

func NewJobHandler(jobService *services.JobService, appService *services.ApplicationService) *JobHandler {
	return &JobHandler{jobService: jobService, appService: appService}
}

// JobRouter registers job routes on the given router. Browsing is
// public; everything else requires authentication.
func JobRouter(r chi.Router, jobService *services.JobService, appService *services.ApplicationService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewJobHandler(jobService, appService)

	r.Get("/", handler.ListJobs)
	r.With(authMiddleware).Post("/", handler.CreateJob)
	r.With(authMiddleware).Get("/mine", handler.ListMyJobs)
	r.Route("/{jobID}", func(r chi.Router) {
		r.Get("/", handler.GetJob)
		r.With(authMiddleware).Put("/", handler.UpdateJob)
		r.With(authMiddleware).Delete("/", handler.RetireJob)
		r.With(authMiddleware).Get("/applications", handler.ListJobApplications)
	})
}

// ListJobs returns a page of active postings matching the query
// filters.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseJobFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, total, err := h.jobService.ListActive(r.Context(), filter, offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JobListResponse{
		Items: jobs,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetJob returns one posting and counts the view.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.jobService.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// CreateJob publishes a new posting owned by the caller.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var job types.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.jobService.Create(r.Context(), actor, job)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// UpdateJob applies a partial edit to a posting.
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req JobUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.jobService.Update(r.Context(), actor, id, req.toUpdate())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// RetireJob deactivates a posting.
func (h *JobHandler) RetireJob(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.jobService.Retire(r.Context(), actor, id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMyJobs returns the caller's own postings.
func (h *JobHandler) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	jobs, err := h.jobService.ListMine(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// ListJobApplications returns a posting's applications to its owner,
// optionally filtered by status.
func (h *JobHandler) ListJobApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "jobID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := types.ApplicationStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	apps, err := h.appService.ListForJob(r.Context(), actor, id, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

// JobListResponse is the paginated job list payload.
type JobListResponse struct {
	Items []types.Job `json:"items"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int         `json:"total"`
}

// JobUpdateRequest carries the optional posting fields; absent fields
// leave the stored value unchanged.
type JobUpdateRequest struct {
	Title                *string   `json:"title"`
	Company              *string   `json:"company"`
	Location             *string   `json:"location"`
	Description          *string   `json:"description"`
	Requirements         *string   `json:"requirements"`
	Industry             *string   `json:"industry"`
	EmploymentType       *string   `json:"employment_type"`
	SalaryRangeStart     *int64    `json:"salary_range_start"`
	SalaryRangeEnd       *int64    `json:"salary_range_end"`
	Benefits             *string   `json:"benefits"`
	RequiredSkills       *[]string `json:"required_skills"`
	PreferredSkills      *[]string `json:"preferred_skills"`
	ExperienceLevel      *string   `json:"experience_level"`
	EducationRequirement *string   `json:"education_requirement"`
	RemoteAllowed        *bool     `json:"remote_work_allowed"`
	IsActive             *bool     `json:"is_active"`
}

func (req JobUpdateRequest) toUpdate() services.JobUpdate {
	return services.JobUpdate{
		Title:                req.Title,
		Company:              req.Company,
		Location:             req.Location,
		Description:          req.Description,
		Requirements:         req.Requirements,
		Industry:             req.Industry,
		EmploymentType:       req.EmploymentType,
		SalaryRangeStart:     req.SalaryRangeStart,
		SalaryRangeEnd:       req.SalaryRangeEnd,
		Benefits:             req.Benefits,
		RequiredSkills:       req.RequiredSkills,
		PreferredSkills:      req.PreferredSkills,
		ExperienceLevel:      req.ExperienceLevel,
		EducationRequirement: req.EducationRequirement,
		RemoteAllowed:        req.RemoteAllowed,
		IsActive:             req.IsActive,
	}
}

func parseJobFilter(r *http.Request) (types.JobFilter, error) {
	q := r.URL.Query()
	filter := types.JobFilter{
		Keyword:        strings.TrimSpace(q.Get("q")),
		Location:       strings.TrimSpace(q.Get("location")),
		EmploymentType: strings.TrimSpace(q.Get("employment_type")),
	}

	if raw := strings.TrimSpace(q.Get("remote")); raw != "" {
		remote, err := strconv.ParseBool(raw)
		if err != nil {
			return types.JobFilter{}, errInvalidQuery("remote")
		}
		filter.RemoteOnly = remote
	}
	if raw := strings.TrimSpace(q.Get("salary_min")); raw != "" {
		min, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || min < 0 {
			return types.JobFilter{}, errInvalidQuery("salary_min")
		}
		filter.SalaryMin = min
	}
	if raw := strings.TrimSpace(q.Get("salary_max")); raw != "" {
		max, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || max < 0 {
			return types.JobFilter{}, errInvalidQuery("salary_max")
		}
		filter.SalaryMax = max
	}

	return filter, nil
}

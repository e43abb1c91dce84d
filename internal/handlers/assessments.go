package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/types"
)

// AssessmentHandler provides skill-assessment endpoints.
type AssessmentHandler struct {
	assessmentService *services.AssessmentService
}

func NewAssessmentHandler(assessmentService *services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// AssessmentRouter registers assessment routes on the given router. All
// routes require authentication.
func AssessmentRouter(r chi.Router, assessmentService *services.AssessmentService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAssessmentHandler(assessmentService)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateAssessment)
	r.Get("/application/{applicationID}", handler.ListForApplication)
	r.Route("/{assessmentID}", func(r chi.Router) {
		r.Get("/", handler.GetAssessment)
		r.Post("/submit", handler.Submit)
	})
}

// CreateAssessment assigns a test to an application.
func (h *AssessmentHandler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AssessmentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ApplicationID < 1 {
		writeError(w, http.StatusBadRequest, "application_id is required")
		return
	}

	a, err := h.assessmentService.Create(r.Context(), actor, services.CreateInput{
		ApplicationID:    req.ApplicationID,
		TestType:         req.TestType,
		Questions:        req.Questions,
		SkillsTested:     req.SkillsTested,
		TimeLimitMinutes: req.TimeLimitMinutes,
		PassingScore:     req.PassingScore,
		Instructions:     req.Instructions,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// GetAssessment returns one assessment. Correct answers and test cases
// are stripped for the candidate while the test is pending.
func (h *AssessmentHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "assessmentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.assessmentService.Get(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitizeForViewer(a, actor))
}

// Submit records the applicant's answers and returns the scored
// assessment.
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "assessmentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AssessmentSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	a, err := h.assessmentService.Submit(r.Context(), actor, id, req.Answers, req.TimeTakenMinutes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// ListForApplication returns an application's assessments.
func (h *AssessmentHandler) ListForApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	applicationID, err := parseIDParam(r, "applicationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.assessmentService.ListForApplication(r.Context(), actor, applicationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	for i := range items {
		items[i] = sanitizeForViewer(items[i], actor)
	}
	writeJSON(w, http.StatusOK, items)
}

// sanitizeForViewer hides answer keys from the candidate while the
// assessment is still pending. Recruiters and admins see everything.
func sanitizeForViewer(a types.Assessment, viewer types.User) types.Assessment {
	if viewer.RoleName != types.RoleJobseeker || a.Status != types.AssessmentPending {
		return a
	}
	questions := make([]types.Question, len(a.Questions))
	for i, q := range a.Questions {
		q.CorrectAnswer = ""
		q.TestCases = nil
		questions[i] = q
	}
	a.Questions = questions
	return a
}

type AssessmentCreateRequest struct {
	ApplicationID    int              `json:"application_id"`
	TestType         string           `json:"test_type"`
	Questions        []types.Question `json:"questions"`
	SkillsTested     []string         `json:"skills_tested"`
	TimeLimitMinutes int              `json:"time_limit_minutes"`
	PassingScore     float64          `json:"passing_score"`
	Instructions     string           `json:"instructions"`
}

type AssessmentSubmitRequest struct {
	Answers          []string `json:"answers"`
	TimeTakenMinutes int      `json:"time_taken"`
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/types"
)

// UserHandler provides user management endpoints.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router. All routes
// require authentication.
func UserRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListUsers)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateProfile)
		r.Delete("/", handler.DeactivateUser)
	})
}

// ListUsers returns a page of accounts. Admin only.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, total, err := h.userService.List(r.Context(), actor, offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Items: users,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetUser returns one account's profile.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile applies a partial profile update to the caller's own
// account, or any account when the caller is an admin.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), actor, id, services.ProfileUpdate{
		FullName:        req.FullName,
		MobileNumber:    req.MobileNumber,
		Skills:          req.Skills,
		ResumeKey:       req.ResumeKey,
		ExperienceYears: req.ExperienceYears,
		CurrentPosition: req.CurrentPosition,
		CurrentCompany:  req.CurrentCompany,
		LinkedinURL:     req.LinkedinURL,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeactivateUser soft-deletes an account. Admin only.
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.Deactivate(r.Context(), actor, id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ProfileUpdateRequest carries the optional profile fields; absent
// fields leave the stored value unchanged.
type ProfileUpdateRequest struct {
	FullName        *string   `json:"full_name"`
	MobileNumber    *string   `json:"mobile_number"`
	Skills          *[]string `json:"skills"`
	ResumeKey       *string   `json:"resume_key"`
	ExperienceYears *int      `json:"experience_years"`
	CurrentPosition *string   `json:"current_position"`
	CurrentCompany  *string   `json:"current_company"`
	LinkedinURL     *string   `json:"linkedin_url"`
}

// UserListResponse is the paginated user list payload.
type UserListResponse struct {
	Items []types.User `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

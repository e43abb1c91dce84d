package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillsmatch/apiserver/internal/storage"
	"github.com/skillsmatch/apiserver/types"
)

const (
	maxUploadBytes     = 10 << 20
	formFieldFile      = "file"
	formFieldPurpose   = "purpose"
	defaultContentType = "application/octet-stream"
)

var allowedPurposes = map[string]bool{
	"resume":      true,
	"application": true,
}

// DocumentHandler streams uploaded documents to object storage.
type DocumentHandler struct {
	storage *storage.Storage
}

func NewDocumentHandler(st *storage.Storage) *DocumentHandler {
	return &DocumentHandler{storage: st}
}

// DocumentRouter registers document routes on the given router. All
// routes require authentication.
func DocumentRouter(r chi.Router, st *storage.Storage, authMiddleware func(http.Handler) http.Handler) {
	handler := NewDocumentHandler(st)

	r.Use(authMiddleware)
	r.Post("/", handler.Upload)
	r.Get("/*", handler.Download)
}

// Upload stores a resume or application document and returns its object
// key. Only the key is persisted on entities; the bytes live in the
// bucket.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	purpose := strings.TrimSpace(r.FormValue(formFieldPurpose))
	if purpose == "" {
		purpose = "resume"
	}
	if !allowedPurposes[purpose] {
		writeError(w, http.StatusBadRequest, "unknown purpose")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	key := fmt.Sprintf("%s/%d/%d%s", purpose, actor.ID, time.Now().UnixNano(), filepath.Ext(header.Filename))
	if err := h.storage.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{Key: key})
}

// Download streams a stored document. Jobseekers may fetch only their
// own uploads; recruiters and admins may fetch any, since document keys
// circulate on applications they review.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	key := strings.Trim(chi.URLParam(r, "*"), "/")
	parts := strings.SplitN(key, "/", 3)
	if len(parts) != 3 || !allowedPurposes[parts[0]] {
		writeError(w, http.StatusBadRequest, "invalid document key")
		return
	}
	if actor.RoleName == types.RoleJobseeker && parts[1] != strconv.Itoa(actor.ID) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	obj, err := h.storage.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", defaultContentType)
	if _, err := io.Copy(w, obj); err != nil {
		return
	}
}

type UploadResponse struct {
	Key string `json:"key"`
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/888Greys/rag-ai/internal/api"
	"github.com/888Greys/rag-ai/internal/api/middleware"
	"github.com/888Greys/rag-ai/internal/service"
)

type DocumentServiceInterface interface {
	Upload(ctx context.Context, owner, filename string, content []byte) (int, error)
	UploadShared(ctx context.Context, filename string, content []byte) (int, error)
	List(ctx context.Context, owner string) ([]service.DocumentFile, error)
	Delete(ctx context.Context, owner, path string) error
}

type FilesHandler struct {
	svc DocumentServiceInterface
}

func NewFilesHandler(svc DocumentServiceInterface) *FilesHandler {
	return &FilesHandler{svc: svc}
}

type UploadResponse struct {
	Path   string `json:"pathname"`
	Chunks int    `json:"chunks"`
}

// Upload handles POST /files/upload?filename=<name> with the raw file
// body as the request payload.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		api.Error(w, http.StatusBadRequest, "filename query parameter is required")
		return
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	chunks, err := h.svc.Upload(r.Context(), email, filename, content)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, UploadResponse{
		Path:   email + "/" + filename,
		Chunks: chunks,
	})
}

type UploadTextRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// UploadText handles POST /files/upload-text, storing a document in the
// shared namespace.
func (h *FilesHandler) UploadText(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UploadTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	chunks, err := h.svc.UploadShared(r.Context(), req.Filename, []byte(req.Content))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, UploadResponse{
		Path:   "shared/" + req.Filename,
		Chunks: chunks,
	})
}

// List handles GET /files/list.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	files, err := h.svc.List(r.Context(), email)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if files == nil {
		files = []service.DocumentFile{}
	}
	api.Success(w, http.StatusOK, files)
}

// Delete handles DELETE /files/delete?path=<path>.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserEmail(r.Context())
	if email == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		api.Error(w, http.StatusBadRequest, "path query parameter is required")
		return
	}

	if err := h.svc.Delete(r.Context(), email, path); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"deleted": path})
}

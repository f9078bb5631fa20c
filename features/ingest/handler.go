package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"studymate/backend/internal/loader"
	"studymate/backend/internal/middleware"
	"studymate/backend/internal/vector"
)

type Handler struct {
	service         *Service
	maxUploadSizeMB int64
}

func NewHandler(service *Service, maxUploadSizeMB int64) *Handler {
	return &Handler{service: service, maxUploadSizeMB: maxUploadSizeMB}
}

// Upload accepts a multipart study document and rebuilds the index from
// it. The format check runs on the filename before any content is
// read; the payload lands in a temp file that is removed on every exit
// path.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.maxUploadSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "File too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if _, err := loader.KindFromFilename(header.Filename); err != nil {
		h.writeError(r.Context(), w, "UNSUPPORTED_FORMAT", "Unsupported file type", http.StatusBadRequest)
		return
	}

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create temp file", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to save upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to write upload", http.StatusInternalServerError)
		return
	}

	if err := h.service.Ingest(r.Context(), tmp.Name(), header.Filename); err != nil {
		switch {
		case errors.Is(err, loader.ErrUnsupportedFormat):
			h.writeError(r.Context(), w, "UNSUPPORTED_FORMAT", "Unsupported file type", http.StatusBadRequest)
		case errors.Is(err, vector.ErrBusy):
			h.writeError(r.Context(), w, "BUSY", "An ingestion is already in progress", http.StatusConflict)
		default:
			slog.ErrorContext(r.Context(), "ingestion failed", "error", err, "filename", header.Filename)
			h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to process document", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": map[string]string{
			"message": fmt.Sprintf("%s processed successfully", header.Filename),
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

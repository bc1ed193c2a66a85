package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ImageUploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type UploadHandler struct {
	Uploader ImageUploader // nil when no bucket is configured
	MaxSize  int64
}

func (h *UploadHandler) Register(r *chi.Mux) {
	r.Post("/api/upload", h.upload)
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	if h.Uploader == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "upload storage not configured"})
		return
	}

	maxSize := h.MaxSize
	if maxSize <= 0 {
		maxSize = 5 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "no file uploaded"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "file must be an image"})
		return
	}
	if header.Size > maxSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "image must be smaller than 5MB"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error reading file"})
		return
	}

	ext := strings.TrimPrefix(path.Ext(header.Filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	key := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	url, err := h.Uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "error saving image"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}
